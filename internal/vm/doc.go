// Package vm provides VM lifecycle operations for the test harness.
//
// All operations run against a single Proxmox node through the API
// client and work with the one throwaway VM the harness owns.
//
// The main operations are:
//   - Create: provision a VM with the harness install profile
//   - Start: power a VM on
//   - WaitForShutdown: block until the installer powers the VM off
//   - Delete: remove a VM by name
//
// Task Handling:
//
// Every operation that starts a server-side task (create, start, delete)
// waits for that task to reach its terminal state before returning, so a
// nil error means the VM really is in the requested state.
//
// Context Support:
//
// All operations accept a context.Context. WaitForShutdown has no
// timeout of its own; bound it through the context deadline when the
// install duration should be limited.
package vm
