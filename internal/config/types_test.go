package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromFile_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "crucible.yaml")

	configYAML := `host: pve1.example.com
node: pve1
storage: nas
vm_storage: fast-lvm
bridge: vmbr0
vm_name: alpine-smoke
builder_command: /usr/local/bin/build_alpine_overlay.py
work_dir: /tmp/crucible
grace_period_seconds: 5
install_timeout_seconds: 1800
`

	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Host != "pve1.example.com" {
		t.Errorf("Expected host 'pve1.example.com', got %q", config.Host)
	}
	if config.Node != "pve1" {
		t.Errorf("Expected node 'pve1', got %q", config.Node)
	}
	if config.Storage != "nas" {
		t.Errorf("Expected storage 'nas', got %q", config.Storage)
	}
	if config.VMStorage != "fast-lvm" {
		t.Errorf("Expected vm_storage 'fast-lvm', got %q", config.VMStorage)
	}
	if config.VMName != "alpine-smoke" {
		t.Errorf("Expected vm_name 'alpine-smoke', got %q", config.VMName)
	}
	if config.GracePeriod() != 5*time.Second {
		t.Errorf("Expected grace period 5s, got %v", config.GracePeriod())
	}
	if config.InstallTimeout() != 30*time.Minute {
		t.Errorf("Expected install timeout 30m, got %v", config.InstallTimeout())
	}

	// Unset fields still pick up defaults.
	if config.MirrorURL == "" {
		t.Error("Expected mirror_url default to be filled")
	}
	if config.DownloadsURL == "" {
		t.Error("Expected downloads_url default to be filled")
	}
}

func TestLoadFromFile_EmptyPathReturnsDefaults(t *testing.T) {
	config, err := LoadFromFile("")
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Host != "pve" {
		t.Errorf("Expected default host 'pve', got %q", config.Host)
	}
	if config.Node != "pve" {
		t.Errorf("Expected default node 'pve', got %q", config.Node)
	}
	if config.Storage != "local" {
		t.Errorf("Expected default storage 'local', got %q", config.Storage)
	}
	if config.VMStorage != "local-lvm" {
		t.Errorf("Expected default vm_storage 'local-lvm', got %q", config.VMStorage)
	}
	if config.Bridge != "vmbr1" {
		t.Errorf("Expected default bridge 'vmbr1', got %q", config.Bridge)
	}
	if config.VMName != "alpine-headless-test" {
		t.Errorf("Expected default vm_name 'alpine-headless-test', got %q", config.VMName)
	}
	if config.BuilderCommand != "./build_alpine_overlay.py" {
		t.Errorf("Expected default builder_command, got %q", config.BuilderCommand)
	}
	if config.WorkDir != "." {
		t.Errorf("Expected default work_dir '.', got %q", config.WorkDir)
	}
	if config.VerifyTLS {
		t.Error("Expected verify_tls to default to false")
	}
	if config.GracePeriod() != 10*time.Second {
		t.Errorf("Expected default grace period 10s, got %v", config.GracePeriod())
	}
	if config.InstallTimeout() != 0 {
		t.Errorf("Expected default install timeout 0, got %v", config.InstallTimeout())
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("host: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
}

func TestConfig_Normalize(t *testing.T) {
	config := &Config{
		Host:   "  pve2  ",
		VMName: "  Alpine-Headless-Test  ",
	}
	config.Normalize()

	if config.Host != "pve2" {
		t.Errorf("Expected trimmed host 'pve2', got %q", config.Host)
	}
	if config.VMName != "alpine-headless-test" {
		t.Errorf("Expected lowercased vm_name, got %q", config.VMName)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.Host = "" },
			wantErr: true,
		},
		{
			name:    "empty node",
			mutate:  func(c *Config) { c.Node = "" },
			wantErr: true,
		},
		{
			name:    "empty storage",
			mutate:  func(c *Config) { c.Storage = "" },
			wantErr: true,
		},
		{
			name:    "vm name with underscore",
			mutate:  func(c *Config) { c.VMName = "alpine_headless" },
			wantErr: true,
		},
		{
			name:    "vm name with leading hyphen",
			mutate:  func(c *Config) { c.VMName = "-alpine" },
			wantErr: true,
		},
		{
			name:   "single character vm name",
			mutate: func(c *Config) { c.VMName = "a" },
		},
		{
			name:    "negative grace period",
			mutate:  func(c *Config) { c.GracePeriodSeconds = -1 },
			wantErr: true,
		},
		{
			name:    "negative install timeout",
			mutate:  func(c *Config) { c.InstallTimeoutSeconds = -30 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
