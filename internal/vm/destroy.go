package vm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// Delete removes the VM with the given name and waits for the removal
// task to finish. A name with no VM behind it is not an error, so the
// harness can clean up unconditionally before a run.
func (m *Manager) Delete(ctx context.Context, name string) error {
	vmid, found, err := m.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		log.Printf("No VM found with name %s, skipping delete.", name)
		return nil
	}
	log.Printf("Found VMID %d for VM name %s", vmid, name)

	log.Printf("Deleting VM %s with VMID %d...", name, vmid)
	resp, err := m.client.Delete(ctx, fmt.Sprintf("nodes/%s/qemu/%d", m.client.Node(), vmid), nil)
	if err != nil {
		return fmt.Errorf("failed to delete VM %s: %w", name, err)
	}

	var upid string
	if err := json.Unmarshal(resp, &upid); err != nil {
		return fmt.Errorf("failed to decode delete task for VM %s: %w", name, err)
	}
	log.Printf("Deleted VM %s. Task: %s", name, upid)

	if _, err := m.client.WaitForTask(ctx, upid, 0, 0); err != nil {
		return fmt.Errorf("failed waiting for VM %s deletion: %w", name, err)
	}
	return nil
}
