package permissions

import "testing"

func TestIsPathAncestorOrSelf(t *testing.T) {
	tests := []struct {
		base, target string
		want         bool
	}{
		{"/tmp", "/tmp", true},
		{"/tmp", "/tmp/a.txt", true},
		{"/tmp", "/tmp/a/b/c.txt", true},
		{"/tmp", "/tmpfoo", false},
		{"/tmp", "/etc/passwd", false},
		{"/a/b", "/a", false},
	}
	for _, tt := range tests {
		if got := isPathAncestorOrSelf(tt.base, tt.target); got != tt.want {
			t.Errorf("isPathAncestorOrSelf(%q, %q) = %v, want %v", tt.base, tt.target, got, tt.want)
		}
	}
}

func TestMatchPathAllowlist(t *testing.T) {
	set := map[Path]struct{}{"/tmp": {}, "/home/user": {}}

	if !matchPathAllowlist("/tmp/file.txt", set) {
		t.Error("expected /tmp/file.txt to match via /tmp entry")
	}
	if !matchPathAllowlist("/home/user/doc.txt", set) {
		t.Error("expected /home/user/doc.txt to match via /home/user entry")
	}
	if matchPathAllowlist("/etc/passwd", set) {
		t.Error("expected /etc/passwd not to match")
	}
}

func TestMatchPathBlocklist(t *testing.T) {
	// Denying /a/b also blocks a broader request at /a, since /a implies
	// access to /a/b.
	set := map[Path]struct{}{"/a/b": {}}

	if !matchPathBlocklist("/a", set) {
		t.Error("expected a request at /a to be blocked by a denial at /a/b")
	}
	if !matchPathBlocklist("/a/b", set) {
		t.Error("expected exact match to block")
	}
	if matchPathBlocklist("/a/b/c", set) {
		t.Error("a denial at /a/b should not block a narrower request under /a/b")
	}
	if matchPathBlocklist("/x", set) {
		t.Error("unrelated path should not be blocked")
	}
}

func TestPruneDescendants(t *testing.T) {
	set := map[Path]struct{}{"/tmp/a": {}, "/tmp/b": {}, "/var": {}}
	pruneDescendants(set, "/tmp")

	if _, ok := set["/tmp/a"]; ok {
		t.Error("expected /tmp/a to be pruned as a descendant of /tmp")
	}
	if _, ok := set["/tmp/b"]; ok {
		t.Error("expected /tmp/b to be pruned as a descendant of /tmp")
	}
	if _, ok := set["/var"]; !ok {
		t.Error("expected /var to survive, it is not a descendant of /tmp")
	}
}

func TestPruneAncestors(t *testing.T) {
	set := map[Path]struct{}{"/tmp": {}, "/var": {}}
	pruneAncestors(set, "/tmp/a/b")

	if _, ok := set["/tmp"]; ok {
		t.Error("expected /tmp to be pruned as an ancestor of /tmp/a/b")
	}
	if _, ok := set["/var"]; !ok {
		t.Error("expected /var to survive, it is not an ancestor of /tmp/a/b")
	}
}

func TestResolveFromCWD(t *testing.T) {
	resolved, err := resolveFromCWD("/already/absolute/../clean")
	if err != nil {
		t.Fatalf("resolveFromCWD: %v", err)
	}
	if resolved != "/already/clean" {
		t.Errorf("expected traversal folded away, got %q", resolved)
	}
}
