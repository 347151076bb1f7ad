package permissions

import "testing"

func childSpecFrom(p *Permissions) ChildSpec {
	return p.Snapshot()
}

func TestForkIdenticalSpecAlwaysSucceeds(t *testing.T) {
	p, err := FromFlags(FlagsConfig{ReadAllowlist: []string{"/tmp"}, AllowEnv: true})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}

	child, err := p.Fork(childSpecFrom(p))
	if err != nil {
		t.Fatalf("forking an identical spec should never escalate: %v", err)
	}
	if !p.Equal(child) {
		t.Error("a reflexive fork should produce an equal child")
	}
}

func TestForkNarrowerSpecSucceeds(t *testing.T) {
	p, err := FromFlags(FlagsConfig{ReadAllowlist: []string{"/tmp", "/var"}, AllowEnv: true})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}

	spec := p.Snapshot()
	delete(spec.Read.GrantedList, "/var")
	spec.Env = Prompt

	child, err := p.Fork(spec)
	if err != nil {
		t.Fatalf("a narrower child should never escalate: %v", err)
	}
	if child.QueryEnv() != Prompt {
		t.Error("expected the narrower env state to survive the fork")
	}
	if state, _ := child.QueryRead(ptr("/tmp/x")); state != Granted {
		t.Error("expected /tmp to remain granted in the child")
	}
}

func TestForkBroaderGlobalStateEscalates(t *testing.T) {
	p := New() // everything Prompt

	spec := p.Snapshot()
	spec.Env = Granted

	_, err := p.Fork(spec)
	if err == nil {
		t.Fatal("expected a fork granting env beyond a Prompt parent to fail")
	}
	if !IsPermissionDenied(err) {
		t.Errorf("expected PermissionDenied, got %v", err)
	}
}

func TestForkAddingGrantedPathEscalates(t *testing.T) {
	p, err := FromFlags(FlagsConfig{ReadAllowlist: []string{"/tmp"}})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}

	spec := p.Snapshot()
	spec.Read.GrantedList["/etc"] = struct{}{}

	_, err = p.Fork(spec)
	if err == nil {
		t.Fatal("expected a fork adding a grant outside the parent's allowlist to fail")
	}
}

func TestForkDroppingDenialEscalates(t *testing.T) {
	p := New()
	p.SetPrompter(NewStubPrompter(false))
	blocked := "/etc/passwd"
	if _, err := p.RequestRead(&blocked); err != nil {
		t.Fatalf("RequestRead: %v", err)
	}

	spec := p.Snapshot()
	delete(spec.Read.DeniedList, "/etc/passwd")

	_, err := p.Fork(spec)
	if err == nil {
		t.Fatal("expected a fork that drops a parent denial to fail")
	}
}

func TestForkEscalationErrorDoesNotRevealWhichFieldEscalated(t *testing.T) {
	p := New()
	spec := p.Snapshot()
	spec.Run = Granted

	_, err := p.Fork(spec)
	if err == nil {
		t.Fatal("expected escalation error")
	}
	if contains(err.Error(), "run") {
		t.Errorf("escalation error should not name the offending field, got %q", err.Error())
	}
}

func ptr(s string) *string { return &s }
