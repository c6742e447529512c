package proxmox

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

const (
	// DefaultTaskPollInterval is the fixed sleep between task status
	// checks. No backoff.
	DefaultTaskPollInterval = 2 * time.Second

	// DefaultTaskTimeout is how long WaitForTask waits before giving up.
	DefaultTaskTimeout = 10 * time.Minute
)

// TaskFailedError reports a task that reached its terminal state with an
// unsuccessful exit status.
type TaskFailedError struct {
	UPID       string
	ExitStatus string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %s failed: %s", e.UPID, e.ExitStatus)
}

// TaskTimeoutError reports that the client stopped waiting for a task. The
// remote task may still be running; the wait is abandoned, not cancelled.
type TaskTimeoutError struct {
	UPID    string
	Timeout time.Duration
}

func (e *TaskTimeoutError) Error() string {
	return fmt.Sprintf("task %s did not finish within %s", e.UPID, e.Timeout)
}

// WaitForTask polls a task until it reaches the stopped state and returns
// its exit status. "OK", "success", and empty exit statuses are success;
// anything else fails with *TaskFailedError. If the task does not stop
// within timeout the wait fails with *TaskTimeoutError. Zero pollInterval
// and timeout select the defaults.
//
// The terminal-state check runs before the timeout check, so a task
// observed stopped after the deadline still returns its result.
func (c *Client) WaitForTask(ctx context.Context, upid string, pollInterval, timeout time.Duration) (string, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultTaskPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}

	start := time.Now()
	for {
		data, err := c.Get(ctx, fmt.Sprintf("nodes/%s/tasks/%s/status", c.node, upid), nil)
		if err != nil {
			return "", fmt.Errorf("failed to get status of task %s: %w", upid, err)
		}

		var status TaskStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return "", fmt.Errorf("failed to decode status of task %s: %w", upid, err)
		}

		if status.Status == StatusStopped {
			log.Printf("Task %s finished: %s", upid, status.ExitStatus)
			if !taskSucceeded(status.ExitStatus) {
				return "", &TaskFailedError{UPID: upid, ExitStatus: status.ExitStatus}
			}
			return status.ExitStatus, nil
		}

		if time.Since(start) > timeout {
			return "", &TaskTimeoutError{UPID: upid, Timeout: timeout}
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("wait for task %s cancelled: %w", upid, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func taskSucceeded(exitStatus string) bool {
	switch exitStatus {
	case "", "OK", "success":
		return true
	}
	return false
}
