package permissions

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindConfig locates a .douglessrc starting in startDir.
func FindConfig(startDir string) (string, error) {
	configPath := filepath.Join(startDir, ".douglessrc")
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}
	return "", fmt.Errorf("no .douglessrc found in %s", startDir)
}

// LoadConfig reads and parses a .douglessrc into a Permissions value, using
// the same wire format (§6) Permissions.MarshalJSON produces — a
// .douglessrc is just a Permissions snapshot persisted to disk.
func LoadConfig(configPath string) (*Permissions, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	p := New()
	if err := p.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return p, nil
}

// SaveConfig writes p's current capability set to configPath as a
// .douglessrc, creating or overwriting the file. If configPath is empty,
// .douglessrc in the current directory is used.
func SaveConfig(configPath string, p *Permissions) error {
	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		configPath = filepath.Join(cwd, ".douglessrc")
	}

	data, err := p.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
