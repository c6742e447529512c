package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/crucible/internal/naming"
)

// Config represents the complete harness configuration. Every field has a
// default matching the reference homelab deployment, so an empty or missing
// file yields a working configuration.
type Config struct {
	Host            string `yaml:"host"`                       // Proxmox API host (port 8006)
	Node            string `yaml:"node"`                       // target node name
	Storage         string `yaml:"storage"`                    // ISO store (default: "local")
	VMStorage       string `yaml:"vm_storage"`                 // VM disk storage (default: "local-lvm")
	Bridge          string `yaml:"bridge"`                     // network bridge (default: "vmbr1")
	VMName          string `yaml:"vm_name"`                    // reserved test VM name
	CredentialsFile string `yaml:"credentials_file,omitempty"` // API token file (default: ~/.proxmox/api.ini)
	BuilderCommand  string `yaml:"builder_command"`            // overlay builder executable
	WorkDir         string `yaml:"work_dir"`                   // local artifact directory
	MirrorURL       string `yaml:"mirror_url"`                 // Alpine release mirror
	DownloadsURL    string `yaml:"downloads_url"`              // release discovery page
	VerifyTLS       bool   `yaml:"verify_tls"`                 // homelab nodes use self-signed certificates

	// GracePeriodSeconds is the fixed sleep between starting the VM and
	// watching for the installer to power it off.
	GracePeriodSeconds int `yaml:"grace_period_seconds"`

	// InstallTimeoutSeconds bounds the wait for the installer to power the
	// VM off. 0 means wait indefinitely, matching an unattended installer
	// of unknown duration.
	InstallTimeoutSeconds int `yaml:"install_timeout_seconds"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize sanitizes user input and fills defaults.
// This is called automatically by LoadFromFile before validation.
func (c *Config) Normalize() {
	c.Host = strings.TrimSpace(c.Host)
	c.Node = strings.TrimSpace(c.Node)
	c.VMName = strings.ToLower(strings.TrimSpace(c.VMName))

	if c.Host == "" {
		c.Host = "pve"
	}
	if c.Node == "" {
		c.Node = "pve"
	}
	if c.Storage == "" {
		c.Storage = "local"
	}
	if c.VMStorage == "" {
		c.VMStorage = "local-lvm"
	}
	if c.Bridge == "" {
		c.Bridge = "vmbr1"
	}
	if c.VMName == "" {
		c.VMName = "alpine-headless-test"
	}
	if c.BuilderCommand == "" {
		c.BuilderCommand = "./build_alpine_overlay.py"
	}
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.MirrorURL == "" {
		c.MirrorURL = naming.DefaultMirrorURL
	}
	if c.DownloadsURL == "" {
		c.DownloadsURL = naming.DefaultDownloadsURL
	}
	if c.GracePeriodSeconds == 0 {
		c.GracePeriodSeconds = 10
	}
}

// Validate checks the configuration for errors. Does not validate remote
// resources (storages, bridges) - only config structure.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Node == "" {
		return fmt.Errorf("node is required")
	}
	if c.Storage == "" {
		return fmt.Errorf("storage is required")
	}
	if c.VMStorage == "" {
		return fmt.Errorf("vm_storage is required")
	}
	if c.Bridge == "" {
		return fmt.Errorf("bridge is required")
	}

	// Proxmox VM names must be DNS names: start and end with alphanumeric,
	// hyphens in between, no underscores.
	namePattern := `^[a-z0-9][a-z0-9-]*[a-z0-9]$`
	if len(c.VMName) == 1 {
		namePattern = `^[a-z0-9]$`
	}
	matched, err := regexp.MatchString(namePattern, c.VMName)
	if err != nil {
		return fmt.Errorf("vm_name validation error: %w", err)
	}
	if !matched {
		return fmt.Errorf("vm_name must be a DNS name (alphanumeric and hyphens), got %q", c.VMName)
	}

	if c.BuilderCommand == "" {
		return fmt.Errorf("builder_command is required")
	}
	if c.GracePeriodSeconds < 0 {
		return fmt.Errorf("grace_period_seconds must be >= 0, got %d", c.GracePeriodSeconds)
	}
	if c.InstallTimeoutSeconds < 0 {
		return fmt.Errorf("install_timeout_seconds must be >= 0, got %d", c.InstallTimeoutSeconds)
	}

	return nil
}

// GracePeriod returns the post-start sleep as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodSeconds) * time.Second
}

// InstallTimeout returns the bound on the wait for installer shutdown.
// Zero means no bound.
func (c *Config) InstallTimeout() time.Duration {
	return time.Duration(c.InstallTimeoutSeconds) * time.Second
}

// LoadFromFile loads a harness configuration from a YAML file. An empty
// path returns the default configuration.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.Normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
