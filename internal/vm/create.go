package vm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/jbweber/crucible/internal/naming"
)

// Create provisions a VM under the next free VMID with the harness
// install profile: one core, 2 GiB of memory, a 16 GiB SCSI root disk,
// the installer ISO on ide0 and the overlay ISO on ide2. It waits for
// the creation task to finish and returns the VMID.
//
// The boot order places the disk before the installer CD-ROM, so the
// first boot falls through to ide0 while the disk is still empty and
// later boots come up from the installed system.
func (m *Manager) Create(ctx context.Context, name, bootISO, overlayISO string) (int, error) {
	vmid, err := m.NextVMID(ctx)
	if err != nil {
		return 0, err
	}

	data := url.Values{}
	data.Set("vmid", strconv.Itoa(vmid))
	data.Set("name", name)
	data.Set("ostype", "l26")
	data.Set("cores", "1")
	data.Set("memory", "2048")
	data.Set("net0", fmt.Sprintf("virtio,bridge=%s", m.bridge))
	// Root disk on SCSI with the virtio-scsi controller.
	data.Set("scsihw", "virtio-scsi-pci")
	data.Set("scsi0", fmt.Sprintf("%s:16", m.vmStorage))
	// Installer ISO on ide0, overlay payload on ide2.
	data.Set("ide0", naming.CDROM(m.storage, bootISO))
	data.Set("ide2", naming.CDROM(m.storage, overlayISO))
	data.Set("bootdisk", "scsi0")
	data.Set("boot", "order=scsi0;ide0")
	// Enable the guest agent device for when the installed system runs one.
	data.Set("agent", "1")

	resp, err := m.client.Post(ctx, fmt.Sprintf("nodes/%s/qemu", m.client.Node()), data)
	if err != nil {
		return 0, fmt.Errorf("failed to create VM %s: %w", name, err)
	}

	var upid string
	if err := json.Unmarshal(resp, &upid); err != nil {
		return 0, fmt.Errorf("failed to decode create task for VM %s: %w", name, err)
	}
	log.Printf("Created VM %s with VMID %d. Task: %s", name, vmid, upid)

	if _, err := m.client.WaitForTask(ctx, upid, 0, 0); err != nil {
		return 0, fmt.Errorf("failed waiting for VM %s creation: %w", name, err)
	}
	return vmid, nil
}
