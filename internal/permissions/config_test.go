package permissions

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindConfig(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := FindConfig(tmpDir); err == nil {
		t.Error("expected an error when no .douglessrc exists")
	}

	configPath := filepath.Join(tmpDir, ".douglessrc")
	if err := os.WriteFile(configPath, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	found, err := FindConfig(tmpDir)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if found != configPath {
		t.Errorf("FindConfig = %q, want %q", found, configPath)
	}
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".douglessrc")

	p, err := FromFlags(FlagsConfig{
		ReadAllowlist: []string{"/tmp"},
		NetAllowlist:  []string{"api.example.com"},
		AllowEnv:      true,
	})
	if err != nil {
		t.Fatalf("FromFlags: %v", err)
	}

	if err := SaveConfig(configPath, p); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !p.Equal(loaded) {
		t.Error("expected loaded config to be Equal to the saved Permissions")
	}
}

func TestSaveConfigEmptyPathUsesCWD(t *testing.T) {
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(originalWd)

	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	if err := SaveConfig("", AllowAll()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, ".douglessrc")); err != nil {
		t.Errorf("expected .douglessrc to be created in the current directory: %v", err)
	}
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".douglessrc")
	if err := os.WriteFile(configPath, []byte(`{"read":{"unknown_field":1}}`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected an error parsing a malformed config")
	}
}
