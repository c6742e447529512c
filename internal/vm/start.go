package vm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jbweber/crucible/internal/proxmox"
)

// Start powers a VM on and waits for the start task to finish.
func (m *Manager) Start(ctx context.Context, vmid int) error {
	log.Printf("Starting VMID %d...", vmid)

	resp, err := m.client.Post(ctx, fmt.Sprintf("nodes/%s/qemu/%d/status/start", m.client.Node(), vmid), nil)
	if err != nil {
		return fmt.Errorf("failed to start VMID %d: %w", vmid, err)
	}

	var upid string
	if err := json.Unmarshal(resp, &upid); err != nil {
		return fmt.Errorf("failed to decode start task for VMID %d: %w", vmid, err)
	}
	log.Printf("Started VMID %d. Task: %s", vmid, upid)

	if _, err := m.client.WaitForTask(ctx, upid, 0, 0); err != nil {
		return fmt.Errorf("failed waiting for VMID %d start: %w", vmid, err)
	}
	return nil
}

// WaitForShutdown polls a VM until it reports the stopped state. It has
// no timeout of its own: an unattended install takes as long as it
// takes. Bound the wait through the context deadline instead.
func (m *Manager) WaitForShutdown(ctx context.Context, vmid int) error {
	log.Printf("Waiting for VMID %d to power off...", vmid)

	for {
		data, err := m.client.Get(ctx, fmt.Sprintf("nodes/%s/qemu/%d/status/current", m.client.Node(), vmid), nil)
		if err != nil {
			return fmt.Errorf("failed to get status of VMID %d: %w", vmid, err)
		}

		var status proxmox.VMStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return fmt.Errorf("failed to decode status of VMID %d: %w", vmid, err)
		}

		if status.Status == proxmox.StatusStopped {
			log.Printf("VMID %d has powered off.", vmid)
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for VMID %d shutdown cancelled: %w", vmid, ctx.Err())
		case <-time.After(m.pollInterval):
		}
	}
}
