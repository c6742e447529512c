package harness

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jbweber/crucible/internal/builder"
	"github.com/jbweber/crucible/internal/config"
	"github.com/jbweber/crucible/internal/image"
	"github.com/jbweber/crucible/internal/naming"
	"github.com/jbweber/crucible/internal/proxmox"
	"github.com/jbweber/crucible/internal/vm"
)

// imageManager defines the image operations the harness needs.
//
// In production, this is satisfied by *image.Manager.
// In tests, this is satisfied by mock implementations.
type imageManager interface {
	// EnsureAvailable makes the latest release ISO available in the store
	EnsureAvailable(ctx context.Context) (*image.Info, error)

	// Upload streams a local ISO into the store
	Upload(ctx context.Context, path string) error

	// DeleteFromStore removes an ISO from the store by file name
	DeleteFromStore(ctx context.Context, filename string) error
}

// vmManager defines the VM operations the harness needs.
//
// In production, this is satisfied by *vm.Manager.
// In tests, this is satisfied by mock implementations.
type vmManager interface {
	// Create provisions the test VM and returns its VMID
	Create(ctx context.Context, name, bootISO, overlayISO string) (int, error)

	// Start powers a VM on
	Start(ctx context.Context, vmid int) error

	// WaitForShutdown blocks until a VM powers off
	WaitForShutdown(ctx context.Context, vmid int) error

	// Delete removes a VM by name
	Delete(ctx context.Context, name string) error
}

// overlayBuilder defines the overlay build operation the harness needs.
//
// In production, this is satisfied by *builder.Builder.
type overlayBuilder interface {
	// Build produces the overlay ISO for a hostname
	Build(ctx context.Context, hostname, isoPath string) error
}

// Runner executes provisioning rounds against one Proxmox node.
type Runner struct {
	id  uuid.UUID
	cfg *config.Config

	images  imageManager
	vms     vmManager
	builder overlayBuilder

	gracePeriod    time.Duration
	installTimeout time.Duration
}

// New wires a Runner from the configuration and an API client.
func New(cfg *config.Config, client *proxmox.Client) *Runner {
	source := image.NewSource(cfg.DownloadsURL, cfg.MirrorURL, nil)

	return &Runner{
		id:             uuid.New(),
		cfg:            cfg,
		images:         image.NewManager(client, source, cfg.Storage, cfg.WorkDir),
		vms:            vm.NewManager(client, cfg.Storage, cfg.VMStorage, cfg.Bridge),
		builder:        builder.New(cfg.BuilderCommand),
		gracePeriod:    cfg.GracePeriod(),
		installTimeout: cfg.InstallTimeout(),
	}
}

// Run executes one full provisioning round: reset leftover state, build
// the overlay, make the installer ISO available, upload the overlay,
// create and start the VM, wait out the unattended install, and boot the
// installed system.
func (r *Runner) Run(ctx context.Context) error {
	log.Printf("Starting test run %s for VM %s", r.id, r.cfg.VMName)

	if err := r.Cleanup(ctx); err != nil {
		return err
	}

	overlayPath := filepath.Join(r.cfg.WorkDir, naming.OverlayISO)
	if err := r.builder.Build(ctx, r.cfg.VMName, overlayPath); err != nil {
		return err
	}

	info, err := r.images.EnsureAvailable(ctx)
	if err != nil {
		return err
	}

	if err := r.images.Upload(ctx, overlayPath); err != nil {
		return err
	}

	vmid, err := r.vms.Create(ctx, r.cfg.VMName, info.ISOName, naming.OverlayISO)
	if err != nil {
		return err
	}

	if err := r.vms.Start(ctx, vmid); err != nil {
		return err
	}

	// Give the installer a moment to come up before watching for the
	// power-off that marks a finished install.
	log.Printf("Install running, watching for power-off after %s grace period...", r.gracePeriod)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.gracePeriod):
	}

	if err := r.waitForInstall(ctx, vmid); err != nil {
		return err
	}

	// The installed system boots from disk now that it exists; the boot
	// order tried the disk first all along.
	if err := r.vms.Start(ctx, vmid); err != nil {
		return err
	}

	log.Printf("Test run %s complete: VM %s (VMID %d) is up", r.id, r.cfg.VMName, vmid)
	return nil
}

// waitForInstall waits for the installer to power the VM off, bounded by
// install_timeout_seconds when it is set.
func (r *Runner) waitForInstall(ctx context.Context, vmid int) error {
	if r.installTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.installTimeout)
		defer cancel()
	}
	return r.vms.WaitForShutdown(ctx, vmid)
}

// Cleanup resets every artifact a previous run may have left behind: the
// local overlay tarball and ISO, the test VM, and the overlay ISO in the
// store. The release ISO stays in the store as a cache.
func (r *Runner) Cleanup(ctx context.Context) error {
	log.Printf("Cleaning up artifacts from previous runs...")

	for _, name := range []string{naming.OverlayTarball, naming.OverlayISO} {
		path := filepath.Join(r.cfg.WorkDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	if err := r.vms.Delete(ctx, r.cfg.VMName); err != nil {
		return err
	}

	return r.images.DeleteFromStore(ctx, naming.OverlayISO)
}
