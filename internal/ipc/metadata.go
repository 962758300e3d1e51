package ipc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// InstallMetadata is the persisted record describing an installed build,
// written next to the install root as kerbin-info.json per the CLI's
// install/rebuild commands.
type InstallMetadata struct {
	Version       string    `json:"version"`
	ConfigPath    string    `json:"config_path"`
	InstallDate   time.Time `json:"install_date"`
	LastBuildDate time.Time `json:"last_build_date"`
}

// MetadataPath returns the kerbin-info.json path for an install root.
func MetadataPath(installRoot string) string {
	return filepath.Join(installRoot, "kerbin-info.json")
}

// LoadInstallMetadata reads the metadata record for installRoot. A
// missing file is reported as a plain error so callers (the `info`
// command) can distinguish "not installed" from other I/O failures.
func LoadInstallMetadata(installRoot string) (*InstallMetadata, error) {
	path := MetadataPath(installRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ipc: not installed: %w", err)
	}
	var m InstallMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("ipc: parse %s: %w", path, err)
	}
	return &m, nil
}

// Save writes m to installRoot's kerbin-info.json, creating the
// directory if needed.
func (m *InstallMetadata) Save(installRoot string) error {
	if err := os.MkdirAll(installRoot, 0o755); err != nil {
		return fmt.Errorf("ipc: create install root: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("ipc: encode metadata: %w", err)
	}
	return os.WriteFile(MetadataPath(installRoot), append(data, '\n'), 0o644)
}
