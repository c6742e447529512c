// Package output renders ISO storage listings for the CLI in table,
// YAML, or JSON form.
package output

import (
	"fmt"

	"github.com/jbweber/crucible/internal/proxmox"
)

// Format selects how a listing is rendered.
type Format string

// The supported output formats. Table is the human-facing default;
// YAML and JSON serve scripted consumers.
const (
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
)

// Formatter renders the contents of an ISO storage.
type Formatter interface {
	FormatISOList(contents []proxmox.StorageContent) (string, error)
}

// Options selects the format and its rendering knobs.
type Options struct {
	Format Format

	// NoHeaders omits the header row in table output.
	NoHeaders bool
}

// NewFormatter returns the Formatter for the requested format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat rejects format strings NewFormatter would not accept.
// Called before any remote work so a typo fails fast.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}
