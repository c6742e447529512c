package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/crucible/internal/proxmox"
)

// JSONFormatter formats listings as JSON.
type JSONFormatter struct{}

// FormatISOList formats an ISO storage listing as a JSON array.
func (f *JSONFormatter) FormatISOList(contents []proxmox.StorageContent) (string, error) {
	if len(contents) == 0 {
		return "[]\n", nil
	}

	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal listing to JSON: %w", err)
	}

	return string(data) + "\n", nil
}
