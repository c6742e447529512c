package output

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/crucible/internal/proxmox"
)

// YAMLFormatter formats listings as YAML.
type YAMLFormatter struct{}

// FormatISOList formats an ISO storage listing as a YAML sequence.
func (f *YAMLFormatter) FormatISOList(contents []proxmox.StorageContent) (string, error) {
	if len(contents) == 0 {
		return "", nil
	}

	data, err := yaml.Marshal(contents)
	if err != nil {
		return "", fmt.Errorf("failed to marshal listing to YAML: %w", err)
	}

	return string(data), nil
}
