package permissions

import (
	"encoding/json"
	"testing"
)

func TestNewDefaultsToPrompt(t *testing.T) {
	p := New()
	if state, _ := p.QueryRead(nil); state != Prompt {
		t.Errorf("expected read to default to Prompt, got %v", state)
	}
	if p.QueryEnv() != Prompt {
		t.Errorf("expected env to default to Prompt, got %v", p.QueryEnv())
	}
	if p.QueryRun() != Prompt {
		t.Errorf("expected run to default to Prompt, got %v", p.QueryRun())
	}
	if p.QueryPlugin() != Prompt {
		t.Errorf("expected plugin to default to Prompt, got %v", p.QueryPlugin())
	}
	if p.QueryHrtime() != Prompt {
		t.Errorf("expected hrtime to default to Prompt, got %v", p.QueryHrtime())
	}
}

func TestAllowAllGrantsEverything(t *testing.T) {
	p := AllowAll()
	if state, _ := p.QueryRead(nil); state != Granted {
		t.Errorf("expected read Granted, got %v", state)
	}
	if state, _ := p.QueryWrite(nil); state != Granted {
		t.Errorf("expected write Granted, got %v", state)
	}
	if p.QueryNet("anything.example", 0) != Granted {
		t.Error("expected net Granted")
	}
	if p.QueryEnv() != Granted || p.QueryRun() != Granted || p.QueryPlugin() != Granted || p.QueryHrtime() != Granted {
		t.Error("expected env/run/plugin/hrtime all Granted")
	}
}

func TestFromFlagsAllowlist(t *testing.T) {
	cfg := FlagsConfig{
		ReadAllowlist: []string{"/tmp"},
		AllowEnv:      true,
	}
	p, err := FromFlags(cfg)
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	readable := "/tmp/file.txt"
	state, err := p.QueryRead(&readable)
	if err != nil {
		t.Fatalf("QueryRead: %v", err)
	}
	if state != Granted {
		t.Errorf("expected /tmp/file.txt Granted, got %v", state)
	}

	unrelated := "/etc/passwd"
	state, err = p.QueryRead(&unrelated)
	if err != nil {
		t.Fatalf("QueryRead: %v", err)
	}
	if state != Prompt {
		t.Errorf("expected /etc/passwd Prompt (not in allowlist), got %v", state)
	}

	if p.QueryEnv() != Granted {
		t.Error("expected env Granted from AllowEnv")
	}
	if state, _ := p.QueryWrite(nil); state != Prompt {
		t.Errorf("expected write to stay Prompt, got %v", state)
	}
}

func TestFromFlagsBareAllowIsUnbounded(t *testing.T) {
	p, err := FromFlags(FlagsConfig{AllowNet: true})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}
	if p.QueryNet("anyhost.example", 9999) != Granted {
		t.Error("expected bare --allow-net to grant every host")
	}
}

func TestPermissionsJSONRoundTrip(t *testing.T) {
	p, err := FromFlags(FlagsConfig{
		ReadAllowlist: []string{"/tmp"},
		NetAllowlist:  []string{"api.example.com"},
		AllowEnv:      true,
	})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}

	data, err := p.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	round := New()
	if err := round.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}

	if !p.Equal(round) {
		t.Errorf("round trip lost information: %s", data)
	}
}

func TestPermissionsJSONShape(t *testing.T) {
	p := AllowAll()
	data, err := p.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, field := range []string{"read", "write", "net", "env", "run", "plugin", "hrtime"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected top-level field %q in wire format", field)
		}
	}

	var readShape map[string]json.RawMessage
	if err := json.Unmarshal(raw["read"], &readShape); err != nil {
		t.Fatalf("Unmarshal read: %v", err)
	}
	for _, field := range []string{"global_state", "granted_list", "denied_list"} {
		if _, ok := readShape[field]; !ok {
			t.Errorf("expected read.%s in wire format", field)
		}
	}
}

func TestPermissionsUnmarshalRejectsUnknownFields(t *testing.T) {
	p := New()
	err := p.UnmarshalJSON([]byte(`{"read":{"global_state":"Granted","granted_list":[],"denied_list":[]},"bogus":true}`))
	if err == nil {
		t.Fatal("expected error for unknown top-level field")
	}
	if !IsInvalidArgument(err) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestGlobalPermissions(t *testing.T) {
	original := globalPermissions
	defer func() { globalPermissions = original }()

	globalPermissions = nil
	p := GetGlobal()
	if p == nil {
		t.Fatal("GetGlobal should lazily create a default Permissions")
	}
	if state, _ := p.QueryRead(nil); state != Prompt {
		t.Errorf("expected lazily-created default to be Prompt, got %v", state)
	}

	custom := AllowAll()
	SetGlobal(custom)
	if GetGlobal() != custom {
		t.Error("GetGlobal should return the instance passed to SetGlobal")
	}
}

func TestPermissionsEqual(t *testing.T) {
	a, _ := FromFlags(FlagsConfig{ReadAllowlist: []string{"/tmp"}})
	b, _ := FromFlags(FlagsConfig{ReadAllowlist: []string{"/tmp"}})
	if !a.Equal(b) {
		t.Error("expected equivalent Permissions built from the same flags to be Equal")
	}

	c, _ := FromFlags(FlagsConfig{ReadAllowlist: []string{"/var"}})
	if a.Equal(c) {
		t.Error("expected different allowlists to not be Equal")
	}
}
