package proxmox

// Proxmox reports task and VM state as plain strings. These are the two
// values the harness cares about.
const (
	// StatusRunning indicates a task or VM that has not reached a
	// terminal state.
	StatusRunning = "running"

	// StatusStopped indicates a finished task or a powered-off VM.
	StatusStopped = "stopped"
)

// TaskStatus is the state of an asynchronous node task
// (nodes/{node}/tasks/{upid}/status).
type TaskStatus struct {
	// Status is "running" until the task reaches "stopped".
	Status string `json:"status"`

	// ExitStatus is set once the task stops. "OK", "success", or an empty
	// string indicate success; any other value is the failure reason.
	ExitStatus string `json:"exitstatus"`
}

// VMStatus is the current power state of a VM
// (nodes/{node}/qemu/{vmid}/status/current).
type VMStatus struct {
	Status string `json:"status"`
}

// VMSummary is one row of the node VM listing (nodes/{node}/qemu).
type VMSummary struct {
	// VMID is the numeric identifier assigned by the server at creation.
	VMID int `json:"vmid"`

	// Name is the human-readable name supplied at creation. It is the
	// only stable lookup key across harness runs.
	Name string `json:"name"`

	Status string `json:"status"`
}

// StorageContent is one entry of a storage content listing
// (nodes/{node}/storage/{storage}/content).
type StorageContent struct {
	// VolID identifies the volume, e.g. "local:iso/alpine-standard-3.22.1-x86_64.iso".
	VolID string `json:"volid"`

	// Size is the volume size in bytes.
	Size int64 `json:"size"`

	// Content is the content type, e.g. "iso".
	Content string `json:"content"`
}

// VersionInfo describes the API server version (GET version).
type VersionInfo struct {
	Version string `json:"version"`
	Release string `json:"release"`
	RepoID  string `json:"repoid"`
}
