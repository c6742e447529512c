package vm

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"
)

const testUPID = "UPID:pve:00004321:00FEDCBA:68A84A00:qmcreate:108:root@pam!crucible:"

// postCall records one Post invocation.
type postCall struct {
	path string
	data url.Values
}

// mockAPIClient is a mock implementation of the apiClient interface for testing.
type mockAPIClient struct {
	mu sync.Mutex

	// Configurable behavior
	getFunc         func(path string, params url.Values) (json.RawMessage, error)
	postFunc        func(path string, data url.Values) (json.RawMessage, error)
	deleteFunc      func(path string, params url.Values) (json.RawMessage, error)
	waitForTaskFunc func(upid string) (string, error)

	// Call tracking
	getCalls         []string
	postCalls        []postCall
	deleteCalls      []string
	waitForTaskCalls []string
}

// newMockAPIClient creates a new mock client with default behavior.
func newMockAPIClient() *mockAPIClient {
	m := &mockAPIClient{}

	// Default: next free VMID is 108, the VM list is empty, and VMs
	// report the running state
	m.getFunc = func(path string, params url.Values) (json.RawMessage, error) {
		switch {
		case path == "cluster/nextid":
			return json.RawMessage(`"108"`), nil
		case strings.HasSuffix(path, "/status/current"):
			return json.RawMessage(`{"status":"running"}`), nil
		default:
			return json.RawMessage(`[]`), nil
		}
	}

	// Default: posts start a task
	m.postFunc = func(path string, data url.Values) (json.RawMessage, error) {
		return json.RawMessage(`"` + testUPID + `"`), nil
	}

	// Default: deletes start a task
	m.deleteFunc = func(path string, params url.Values) (json.RawMessage, error) {
		return json.RawMessage(`"` + testUPID + `"`), nil
	}

	// Default: tasks finish successfully
	m.waitForTaskFunc = func(upid string) (string, error) {
		return "OK", nil
	}

	return m
}

func (m *mockAPIClient) Node() string {
	return "pve"
}

func (m *mockAPIClient) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	m.mu.Lock()
	m.getCalls = append(m.getCalls, path)
	m.mu.Unlock()
	return m.getFunc(path, params)
}

func (m *mockAPIClient) Post(ctx context.Context, path string, data url.Values) (json.RawMessage, error) {
	m.mu.Lock()
	m.postCalls = append(m.postCalls, postCall{path: path, data: data})
	m.mu.Unlock()
	return m.postFunc(path, data)
}

func (m *mockAPIClient) Delete(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	m.mu.Lock()
	m.deleteCalls = append(m.deleteCalls, path)
	m.mu.Unlock()
	return m.deleteFunc(path, params)
}

func (m *mockAPIClient) WaitForTask(ctx context.Context, upid string, pollInterval, timeout time.Duration) (string, error) {
	m.mu.Lock()
	m.waitForTaskCalls = append(m.waitForTaskCalls, upid)
	m.mu.Unlock()
	return m.waitForTaskFunc(upid)
}
