package permissions

import "testing"

func TestCheckReadGrantedAndDenied(t *testing.T) {
	p, err := FromFlags(FlagsConfig{ReadAllowlist: []string{"/tmp"}})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}

	if err := p.CheckRead("/tmp/file.txt"); err != nil {
		t.Errorf("expected /tmp/file.txt to be granted, got %v", err)
	}

	err = p.CheckRead("/etc/passwd")
	if err == nil {
		t.Fatal("expected /etc/passwd to be denied (state Prompt never auto-succeeds a Check)")
	}
	if !IsPermissionDenied(err) {
		t.Errorf("expected PermissionDenied, got %v", err)
	}
}

func TestCheckNet(t *testing.T) {
	p, err := FromFlags(FlagsConfig{NetAllowlist: []string{"api.example.com"}})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}

	if err := p.CheckNet("api.example.com", 443); err != nil {
		t.Errorf("expected api.example.com to be granted, got %v", err)
	}
	if err := p.CheckNet("evil.com", 443); err == nil {
		t.Error("expected evil.com to be denied")
	}
}

func TestCheckEnvRunPluginHrtime(t *testing.T) {
	p := New()

	if err := p.CheckEnv(); err == nil {
		t.Error("expected env to be denied by default")
	}
	if err := p.CheckRun(); err == nil {
		t.Error("expected run to be denied by default")
	}
	if err := p.CheckPlugin("./plugin.wasm"); err == nil {
		t.Error("expected plugin to be denied by default")
	}
	if err := p.CheckHrtime(); err == nil {
		t.Error("expected hrtime to be denied by default")
	}

	granted := AllowAll()
	if err := granted.CheckEnv(); err != nil {
		t.Errorf("expected env granted, got %v", err)
	}
	if err := granted.CheckRun(); err != nil {
		t.Errorf("expected run granted, got %v", err)
	}
	if err := granted.CheckPlugin("./plugin.wasm"); err != nil {
		t.Errorf("expected plugin granted, got %v", err)
	}
	if err := granted.CheckHrtime(); err != nil {
		t.Errorf("expected hrtime granted, got %v", err)
	}
}

func TestCheckHrtimeErrorNamesRightFlag(t *testing.T) {
	p := New()
	err := p.CheckHrtime()
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); got == "" {
		t.Fatal("expected a non-empty error message")
	}
	msg := err.Error()
	if want := "--allow-hrtime"; !contains(msg, want) {
		t.Errorf("expected error to mention %q, got %q", want, msg)
	}
}

func TestCheckReadBlindAnonymizesPath(t *testing.T) {
	p := New()
	err := p.CheckReadBlind("/etc/secret", "config file")
	if err == nil {
		t.Fatal("expected denial")
	}
	msg := err.Error()
	if contains(msg, "/etc/secret") {
		t.Errorf("expected blind check to never mention the real path, got %q", msg)
	}
	if !contains(msg, "config file") {
		t.Errorf("expected blind check to mention the label, got %q", msg)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
