package vm

import (
	"context"
	"encoding/json"
	"net/url"
	"time"
)

// apiClient defines the Proxmox API operations needed for VM lifecycle
// management.
//
// In production, this is satisfied by *proxmox.Client.
// In tests, this is satisfied by mock implementations.
type apiClient interface {
	// Node returns the node name requests are scoped to
	Node() string

	// Get issues a GET request and returns the response data
	Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error)

	// Post issues a form-encoded POST request and returns the response data
	Post(ctx context.Context, path string, data url.Values) (json.RawMessage, error)

	// Delete issues a DELETE request and returns the response data
	Delete(ctx context.Context, path string, params url.Values) (json.RawMessage, error)

	// WaitForTask polls a task until it reaches its terminal state
	WaitForTask(ctx context.Context, upid string, pollInterval, timeout time.Duration) (string, error)
}
