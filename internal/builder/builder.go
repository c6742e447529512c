// Package builder runs the external overlay builder and validates the
// payload ISO it produces.
//
// The builder is any executable honoring the contract of
// build_alpine_overlay.py: invoked as
//
//	<command> --hostname <name> --iso <path>
//
// it writes an apkovl overlay tarball and an ISO 9660 image wrapping it
// to the given path, exiting non-zero on failure. Its output streams
// through to the harness console.
package builder

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/kdomanski/iso9660"

	"github.com/jbweber/crucible/internal/naming"
)

// Builder invokes one overlay builder executable.
type Builder struct {
	command string
}

// New creates a Builder running the given command.
func New(command string) *Builder {
	return &Builder{command: command}
}

// Build runs the overlay builder for hostname, producing the payload ISO
// at isoPath, and verifies the result is an ISO image carrying an apkovl
// tarball.
func (b *Builder) Build(ctx context.Context, hostname, isoPath string) error {
	log.Printf("Running overlay builder: %s --hostname %s --iso %s", b.command, hostname, isoPath)

	cmd := exec.CommandContext(ctx, b.command, "--hostname", hostname, "--iso", isoPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("overlay builder %s failed: %w", b.command, err)
	}

	if err := VerifyArtifact(isoPath); err != nil {
		return fmt.Errorf("overlay builder %s produced a bad artifact: %w", b.command, err)
	}
	return nil
}

// VerifyArtifact checks that path is a readable ISO 9660 image carrying
// the overlay tarball at its root. Alpine silently ignores an overlay it
// cannot find, so a bad artifact would boot into an unconfigured system
// instead of failing loudly.
func VerifyArtifact(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open overlay ISO: %w", err)
	}
	defer f.Close()

	img, err := iso9660.OpenImage(f)
	if err != nil {
		return fmt.Errorf("failed to read overlay ISO %s: %w", path, err)
	}

	root, err := img.RootDir()
	if err != nil {
		return fmt.Errorf("failed to read overlay ISO %s root: %w", path, err)
	}
	children, err := root.GetChildren()
	if err != nil {
		return fmt.Errorf("failed to list overlay ISO %s contents: %w", path, err)
	}

	for _, child := range children {
		// ISO 9660 identifiers may come back uppercased or carry a
		// ";1" version suffix depending on the tool that wrote them.
		name := child.Name()
		if i := strings.IndexByte(name, ';'); i >= 0 {
			name = name[:i]
		}
		if !child.IsDir() && strings.EqualFold(name, naming.OverlayTarball) {
			return nil
		}
	}
	return fmt.Errorf("overlay ISO %s does not contain %s", path, naming.OverlayTarball)
}
