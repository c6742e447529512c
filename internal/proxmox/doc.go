// Package proxmox provides an authenticated client for the Proxmox VE
// HTTP API.
//
// This package wraps net/http to provide:
//   - Token authentication (PVEAPIToken header on every request)
//   - The {"data": ...} response envelope unwrap
//   - Typed errors for failed requests and failed or abandoned tasks
//   - Task polling until a terminal state
//
// The Client issues exactly one HTTP request per call and never retries;
// failures propagate immediately to the caller as *APIError.
//
// Requests:
//
// Paths are given relative to the api2/json root and responses are returned
// as raw JSON for the caller to decode:
//
//	client, err := proxmox.NewClient(proxmox.ClientConfig{
//	    Host:    "pve",
//	    Node:    "pve",
//	    TokenID: creds.TokenID,
//	    Secret:  creds.Secret,
//	})
//	if err != nil {
//	    return err
//	}
//
//	data, err := client.Get(ctx, "nodes/pve/qemu", nil)
//	if err != nil {
//	    return err
//	}
//
//	var vms []proxmox.VMSummary
//	if err := json.Unmarshal(data, &vms); err != nil {
//	    return err
//	}
//
// Tasks:
//
// State-changing calls return a UPID task identifier. WaitForTask polls the
// task status endpoint until the task stops, then inspects its exit status:
//
//	upid := strings.Trim(string(data), `"`)
//	if _, err := client.WaitForTask(ctx, upid, 0, 0); err != nil {
//	    return err
//	}
//
// A timeout abandons the wait on the client side only; the remote task may
// still be running.
//
// Consumer-Side Interfaces:
//
// This package does not define interfaces. Consumers (internal/vm,
// internal/image) define their own client interfaces specifying only the
// operations they need; *proxmox.Client satisfies them implicitly.
package proxmox
