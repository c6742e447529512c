package vm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jbweber/crucible/internal/proxmox"
)

// List returns the VMs on the node.
func (m *Manager) List(ctx context.Context) ([]proxmox.VMSummary, error) {
	data, err := m.client.Get(ctx, fmt.Sprintf("nodes/%s/qemu", m.client.Node()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list VMs: %w", err)
	}

	var vms []proxmox.VMSummary
	if err := json.Unmarshal(data, &vms); err != nil {
		return nil, fmt.Errorf("failed to decode VM list: %w", err)
	}
	return vms, nil
}

// FindByName returns the VMID of the VM with the given name. Matching is
// exact; the boolean reports whether a VM was found.
func (m *Manager) FindByName(ctx context.Context, name string) (int, bool, error) {
	vms, err := m.List(ctx)
	if err != nil {
		return 0, false, err
	}

	for _, vm := range vms {
		if vm.Name == name {
			return vm.VMID, true, nil
		}
	}
	return 0, false, nil
}
