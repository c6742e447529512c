// Package harness orchestrates the end-to-end Alpine install test.
//
// One run provisions a throwaway VM on a Proxmox node, boots the Alpine
// installer with an overlay carrying the unattended answer file, waits
// for the install to power the VM off, and boots the installed system.
// Every run starts by resetting whatever a previous run left behind, so
// the harness can run repeatedly against the same node.
//
// The run sequence is:
//  1. Cleanup: remove local artifacts, the test VM, and the overlay ISO
//     from the store (the release ISO stays cached)
//  2. Build the overlay ISO for the configured hostname
//  3. Ensure the latest Alpine release ISO is in the store
//  4. Upload the overlay ISO
//  5. Create the VM and start it
//  6. Wait for the installer to power the VM off
//  7. Start the VM again to boot the installed system
//
// A nil error from Run means the installed system was started; the VM is
// left running for inspection.
package harness
