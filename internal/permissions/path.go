package permissions

import (
	"os"
	"path/filepath"
	"strings"
)

// resolveFromCWD normalizes p to an absolute, lexically-clean path by
// resolving it against the current working directory. This is purely
// lexical: no symlink resolution, no filesystem access beyond reading the
// cwd itself. Traversal segments (".", "..") are folded away.
func resolveFromCWD(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", &Error{Kind: InvalidArgument, Message: "cannot resolve path: " + err.Error()}
	}
	return filepath.Clean(filepath.Join(cwd, p)), nil
}

// isPathAncestorOrSelf reports whether base is base itself or a
// path-segment-wise ancestor of target. Both arguments must already be
// absolute and clean; this is a pure lexical comparison.
func isPathAncestorOrSelf(base, target string) bool {
	if base == target {
		return true
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// matchPathAllowlist implements the allowlist hit rule (§4.1): target P
// matches S iff some a in S is P or an ancestor of P. Granting /a
// authorizes everything under it.
func matchPathAllowlist[T ~string](target string, set map[T]struct{}) bool {
	for a := range set {
		if isPathAncestorOrSelf(string(a), target) {
			return true
		}
	}
	return false
}

// matchPathBlocklist implements the blocklist hit rule (§4.1): target P
// matches S iff some d in S is P or a descendant of P. Denying /a/b also
// invalidates a broader request at /a, since /a implies access to /a/b.
func matchPathBlocklist[T ~string](target string, set map[T]struct{}) bool {
	for d := range set {
		if isPathAncestorOrSelf(target, string(d)) {
			return true
		}
	}
	return false
}

// pruneDescendants removes every entry of set that is a strict descendant
// of base — the subsumption pruning a new grant at base triggers (§3): once
// base is granted, any narrower existing grant under it is redundant.
func pruneDescendants[T ~string](set map[T]struct{}, base string) {
	for entry := range set {
		if string(entry) != base && isPathAncestorOrSelf(base, string(entry)) {
			delete(set, entry)
		}
	}
}

// pruneAncestors removes every entry of set that is a strict ancestor of
// target — the dominance pruning a new denial at target triggers (§3): a
// denial at target must dominate any broader existing denial above it.
func pruneAncestors[T ~string](set map[T]struct{}, target string) {
	for entry := range set {
		if string(entry) != target && isPathAncestorOrSelf(string(entry), target) {
			delete(set, entry)
		}
	}
}
