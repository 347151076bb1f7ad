package permissions

import "testing"

func TestRequestReadPromptsOnce(t *testing.T) {
	p := New()
	stub := NewStubPrompter(true)
	p.SetPrompter(stub)

	path := "/tmp/file.txt"
	state, err := p.RequestRead(&path)
	if err != nil {
		t.Fatalf("RequestRead: %v", err)
	}
	if state != Granted {
		t.Fatalf("expected Granted after a grant answer, got %v", state)
	}
	if len(stub.Messages) != 1 {
		t.Fatalf("expected exactly one prompt, got %d", len(stub.Messages))
	}

	// A second request for the same (now-granted) path must not prompt again.
	state, err = p.RequestRead(&path)
	if err != nil {
		t.Fatalf("RequestRead (cached): %v", err)
	}
	if state != Granted {
		t.Errorf("expected cached Granted, got %v", state)
	}
	if len(stub.Messages) != 1 {
		t.Errorf("expected no additional prompt for an already-granted path, got %d total", len(stub.Messages))
	}
}

func TestRequestReadDenySetsGlobalDenied(t *testing.T) {
	p := New()
	p.SetPrompter(NewStubPrompter(false))

	path := "/etc/passwd"
	state, err := p.RequestRead(&path)
	if err != nil {
		t.Fatalf("RequestRead: %v", err)
	}
	if state != Denied {
		t.Fatalf("expected Denied, got %v", state)
	}

	if err := p.CheckRead("/etc/passwd"); err == nil {
		t.Error("expected the denied path to remain denied on a later check")
	}
	if err := p.CheckRead("/etc/passwd/nested"); err == nil {
		t.Error("expected a path under the denied /etc/passwd to fail the check too, since it was never granted")
	}
}

func TestRequestReadUnboundedGrantsEverything(t *testing.T) {
	p := New()
	p.SetPrompter(NewStubPrompter(true))

	state, err := p.RequestRead(nil)
	if err != nil {
		t.Fatalf("RequestRead(nil): %v", err)
	}
	if state != Granted {
		t.Fatalf("expected Granted, got %v", state)
	}

	anywhere := "/anywhere/at/all"
	state, err = p.QueryRead(&anywhere)
	if err != nil {
		t.Fatalf("QueryRead: %v", err)
	}
	if state != Granted {
		t.Errorf("expected unbounded read grant to cover every path, got %v", state)
	}
}

func TestRequestGrantPrunesDescendants(t *testing.T) {
	p, err := FromFlags(FlagsConfig{ReadAllowlist: []string{"/tmp/a"}})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	p.SetPrompter(NewStubPrompter(true))

	broader := "/tmp"
	if _, err := p.RequestRead(&broader); err != nil {
		t.Fatalf("RequestRead: %v", err)
	}

	p.mu.RLock()
	_, stillThere := p.read.GrantedList["/tmp/a"]
	p.mu.RUnlock()
	if stillThere {
		t.Error("expected the narrower /tmp/a grant to be pruned once /tmp was granted")
	}
}

func TestRequestNetUsesOriginalURLAsKey(t *testing.T) {
	p := New()
	p.SetPrompter(NewStubPrompter(true))

	url := "https://api.example.com/v1/resource"
	state, err := p.RequestNet(&url)
	if err != nil {
		t.Fatalf("RequestNet: %v", err)
	}
	if state != Granted {
		t.Fatalf("expected Granted, got %v", state)
	}

	p.mu.RLock()
	_, stored := p.net.GrantedList[NetKey(url)]
	p.mu.RUnlock()
	if !stored {
		t.Error("expected the original URL string to be stored as the granted key")
	}
}

func TestRequestNetHostPort(t *testing.T) {
	p := New()
	p.SetPrompter(NewStubPrompter(true))

	state, err := p.RequestNetHostPort("0.0.0.0", 3000)
	if err != nil {
		t.Fatalf("RequestNetHostPort: %v", err)
	}
	if state != Granted {
		t.Fatalf("expected Granted, got %v", state)
	}
	if p.QueryNet("0.0.0.0", 3000) != Granted {
		t.Error("expected the bind address to be recorded as granted")
	}
}

func TestRequestEnvRunPluginHrtime(t *testing.T) {
	p := New()
	p.SetPrompter(NewStubPrompter(true))

	if state := p.RequestEnv(); state != Granted {
		t.Errorf("RequestEnv = %v, want Granted", state)
	}
	// Already resolved; a second call must not prompt again.
	if state := p.RequestEnv(); state != Granted {
		t.Errorf("RequestEnv (cached) = %v, want Granted", state)
	}

	p2 := New()
	p2.SetPrompter(NewStubPrompter(false, false))
	if state := p2.RequestRun(); state != Denied {
		t.Errorf("RequestRun = %v, want Denied", state)
	}
	if state := p2.RequestPlugin(); state != Denied {
		t.Errorf("RequestPlugin should prompt independently of run, got %v", state)
	}
}
