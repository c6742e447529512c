package image

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"sync"
	"time"
)

const testUPID = "UPID:pve:00001234:00ABCDEF:68A84A00:imgdel:local:root@pam!crucible:"

// multipartCall records one PostMultipart invocation, including the
// streamed file body.
type multipartCall struct {
	path      string
	fields    map[string]string
	fileField string
	fileName  string
	body      []byte
}

// mockAPIClient is a mock implementation of the APIClient interface for testing.
type mockAPIClient struct {
	mu sync.Mutex

	// Configurable behavior
	getFunc           func(path string, params url.Values) (json.RawMessage, error)
	deleteFunc        func(path string, params url.Values) (json.RawMessage, error)
	postMultipartFunc func(call multipartCall) (json.RawMessage, error)
	waitForTaskFunc   func(upid string) (string, error)

	// Call tracking
	getCalls           []string
	deleteCalls        []string
	postMultipartCalls []multipartCall
	waitForTaskCalls   []string
}

// newMockAPIClient creates a new mock client with default behavior.
func newMockAPIClient() *mockAPIClient {
	m := &mockAPIClient{}

	// Default: storage listing is empty
	m.getFunc = func(path string, params url.Values) (json.RawMessage, error) {
		return json.RawMessage(`[]`), nil
	}

	// Default: delete returns a task
	m.deleteFunc = func(path string, params url.Values) (json.RawMessage, error) {
		return json.RawMessage(`"` + testUPID + `"`), nil
	}

	// Default: upload is accepted
	m.postMultipartFunc = func(call multipartCall) (json.RawMessage, error) {
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

func (m *mockAPIClient) Delete(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	m.mu.Lock()
	m.deleteCalls = append(m.deleteCalls, path)
	m.mu.Unlock()
	return m.deleteFunc(path, params)
}

func (m *mockAPIClient) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader) (json.RawMessage, error) {
	body, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	call := multipartCall{
		path:      path,
		fields:    fields,
		fileField: fileField,
		fileName:  fileName,
		body:      body,
	}

	m.mu.Lock()
	m.postMultipartCalls = append(m.postMultipartCalls, call)
	m.mu.Unlock()
	return m.postMultipartFunc(call)
}

func (m *mockAPIClient) WaitForTask(ctx context.Context, upid string, pollInterval, timeout time.Duration) (string, error) {
	m.mu.Lock()
	m.waitForTaskCalls = append(m.waitForTaskCalls, upid)
	m.mu.Unlock()
	return m.waitForTaskFunc(upid)
}
