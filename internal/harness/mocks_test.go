package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jbweber/crucible/internal/config"
	"github.com/jbweber/crucible/internal/image"
)

// eventLog records calls across the mock components in arrival order, so
// tests can assert the pipeline sequence.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// mockImageManager is a mock implementation of the imageManager interface for testing.
type mockImageManager struct {
	log *eventLog

	// Configurable behavior
	ensureAvailableFunc func() (*image.Info, error)
	uploadFunc          func(path string) error
	deleteFromStoreFunc func(filename string) error
}

// newMockImageManager creates a new mock image manager with default behavior.
func newMockImageManager(log *eventLog) *mockImageManager {
	m := &mockImageManager{log: log}

	// Default: the latest release is 3.22.1 and is made available
	m.ensureAvailableFunc = func() (*image.Info, error) {
		return &image.Info{
			Version: "3.22.1",
			ISOName: "alpine-standard-3.22.1-x86_64.iso",
		}, nil
	}

	// Default: uploads succeed
	m.uploadFunc = func(path string) error {
		return nil
	}

	// Default: store deletes succeed
	m.deleteFromStoreFunc = func(filename string) error {
		return nil
	}

	return m
}

func (m *mockImageManager) EnsureAvailable(ctx context.Context) (*image.Info, error) {
	m.log.add("images.EnsureAvailable")
	return m.ensureAvailableFunc()
}

func (m *mockImageManager) Upload(ctx context.Context, path string) error {
	m.log.add("images.Upload %s", filepath.Base(path))
	return m.uploadFunc(path)
}

func (m *mockImageManager) DeleteFromStore(ctx context.Context, filename string) error {
	m.log.add("images.DeleteFromStore %s", filename)
	return m.deleteFromStoreFunc(filename)
}

// mockVMManager is a mock implementation of the vmManager interface for testing.
type mockVMManager struct {
	log *eventLog

	// Configurable behavior
	createFunc          func(name, bootISO, overlayISO string) (int, error)
	startFunc           func(vmid int) error
	waitForShutdownFunc func(ctx context.Context, vmid int) error
	deleteFunc          func(name string) error
}

// newMockVMManager creates a new mock VM manager with default behavior.
func newMockVMManager(log *eventLog) *mockVMManager {
	m := &mockVMManager{log: log}

	// Default: creation assigns VMID 108
	m.createFunc = func(name, bootISO, overlayISO string) (int, error) {
		return 108, nil
	}

	// Default: starts succeed
	m.startFunc = func(vmid int) error {
		return nil
	}

	// Default: the install finishes immediately
	m.waitForShutdownFunc = func(ctx context.Context, vmid int) error {
		return nil
	}

	// Default: deletes succeed
	m.deleteFunc = func(name string) error {
		return nil
	}

	return m
}

func (m *mockVMManager) Create(ctx context.Context, name, bootISO, overlayISO string) (int, error) {
	m.log.add("vms.Create %s %s %s", name, bootISO, overlayISO)
	return m.createFunc(name, bootISO, overlayISO)
}

func (m *mockVMManager) Start(ctx context.Context, vmid int) error {
	m.log.add("vms.Start %d", vmid)
	return m.startFunc(vmid)
}

func (m *mockVMManager) WaitForShutdown(ctx context.Context, vmid int) error {
	m.log.add("vms.WaitForShutdown %d", vmid)
	return m.waitForShutdownFunc(ctx, vmid)
}

func (m *mockVMManager) Delete(ctx context.Context, name string) error {
	m.log.add("vms.Delete %s", name)
	return m.deleteFunc(name)
}

// mockBuilder is a mock implementation of the overlayBuilder interface for testing.
type mockBuilder struct {
	log *eventLog

	// Configurable behavior
	buildFunc func(hostname, isoPath string) error
}

// newMockBuilder creates a new mock builder with default behavior.
func newMockBuilder(log *eventLog) *mockBuilder {
	m := &mockBuilder{log: log}

	// Default: builds succeed
	m.buildFunc = func(hostname, isoPath string) error {
		return nil
	}

	return m
}

func (m *mockBuilder) Build(ctx context.Context, hostname, isoPath string) error {
	m.log.add("builder.Build %s %s", hostname, filepath.Base(isoPath))
	return m.buildFunc(hostname, isoPath)
}

// testRunner bundles a Runner with the mocks behind it.
type testRunner struct {
	runner *Runner
	log    *eventLog
	images *mockImageManager
	vms    *mockVMManager
	build  *mockBuilder
}

// newTestRunner builds a Runner over mock components sharing one event log.
func newTestRunner(t *testing.T) *testRunner {
	t.Helper()

	cfg := config.Default()
	cfg.WorkDir = t.TempDir()

	log := &eventLog{}
	images := newMockImageManager(log)
	vms := newMockVMManager(log)
	build := newMockBuilder(log)

	return &testRunner{
		runner: &Runner{
			id:          uuid.New(),
			cfg:         cfg,
			images:      images,
			vms:         vms,
			builder:     build,
			gracePeriod: time.Millisecond,
		},
		log:    log,
		images: images,
		vms:    vms,
		build:  build,
	}
}
