package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jbweber/crucible/internal/proxmox"
)

// TableFormatter formats listings as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// FormatISOList formats an ISO storage listing as a table.
func (f *TableFormatter) FormatISOList(contents []proxmox.StorageContent) (string, error) {
	if len(contents) == 0 {
		return "No ISOs found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	// Write header unless NoHeaders is set
	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tSIZE\tVOLID")
	}

	// Write each ISO as a row
	for _, c := range contents {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", isoName(c.VolID), formatSize(c.Size), c.VolID)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// isoName extracts the file name from a volume identifier like
// "local:iso/alpine-standard-3.22.1-x86_64.iso".
func isoName(volID string) string {
	if i := strings.LastIndex(volID, "/"); i >= 0 {
		return volID[i+1:]
	}
	return volID
}

// formatSize formats a byte count as a human-readable size string.
// Examples: "512 B", "42.0 MiB", "1.2 GiB"
func formatSize(size int64) string {
	const (
		mib = 1 << 20
		gib = 1 << 30
	)

	switch {
	case size >= gib:
		return fmt.Sprintf("%.1f GiB", float64(size)/gib)
	case size >= mib:
		return fmt.Sprintf("%.1f MiB", float64(size)/mib)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
