package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const (
	credentialsSection = "default"
	tokenIDKey         = "TokenId"
	secretKey          = "Secret"
)

// Credentials holds the Proxmox API token identity read from the
// credentials file. The token is sent on every request as
// "Authorization: PVEAPIToken <TokenID>=<Secret>".
type Credentials struct {
	TokenID string
	Secret  string
}

// DefaultCredentialsPath returns the conventional credentials file
// location, ~/.proxmox/api.ini.
func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".proxmox", "api.ini"), nil
}

// LoadCredentials reads the API token from an INI file. An empty path uses
// DefaultCredentialsPath. A missing file or missing key is an error - the
// harness cannot reach the API without a token.
func LoadCredentials(path string) (*Credentials, error) {
	if path == "" {
		p, err := DefaultCredentialsPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	section, err := file.GetSection(credentialsSection)
	if err != nil {
		return nil, fmt.Errorf("credentials file %s has no [%s] section", path, credentialsSection)
	}

	for _, key := range []string{tokenIDKey, secretKey} {
		if !section.HasKey(key) {
			return nil, fmt.Errorf("credentials file %s is missing %s", path, key)
		}
	}

	creds := &Credentials{
		TokenID: section.Key(tokenIDKey).String(),
		Secret:  section.Key(secretKey).String(),
	}
	if creds.TokenID == "" || creds.Secret == "" {
		return nil, fmt.Errorf("credentials file %s has an empty %s or %s", path, tokenIDKey, secretKey)
	}

	return creds, nil
}
