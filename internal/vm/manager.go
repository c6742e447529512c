package vm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DefaultStatusPollInterval is the sleep between VM power state checks
// while waiting for a VM to shut down.
const DefaultStatusPollInterval = 5 * time.Second

// Manager performs VM lifecycle operations on a single Proxmox node.
type Manager struct {
	client apiClient

	storage      string        // ISO storage backing CD-ROM attachments
	vmStorage    string        // storage backing the root disk
	bridge       string        // bridge for the virtio NIC
	pollInterval time.Duration // power state poll cadence
}

// NewManager creates a new VM manager. CD-ROMs attach from storage, the
// root disk is allocated on vmStorage, and net0 bridges onto bridge.
func NewManager(client apiClient, storage, vmStorage, bridge string) *Manager {
	return &Manager{
		client:       client,
		storage:      storage,
		vmStorage:    vmStorage,
		bridge:       bridge,
		pollInterval: DefaultStatusPollInterval,
	}
}

// NextVMID asks the cluster for the next free VMID.
func (m *Manager) NextVMID(ctx context.Context) (int, error) {
	data, err := m.client.Get(ctx, "cluster/nextid", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get next VMID: %w", err)
	}

	// The API returns the ID as a JSON string.
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("failed to decode next VMID: %w", err)
	}
	vmid, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse next VMID %q: %w", s, err)
	}
	return vmid, nil
}
