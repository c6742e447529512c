package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jbweber/crucible/internal/proxmox"
)

// APIClient is the interface for Proxmox API operations.
// This allows for dependency injection and testing.
//
// In production, this is satisfied by *proxmox.Client.
type APIClient interface {
	Node() string
	Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error)
	Delete(ctx context.Context, path string, params url.Values) (json.RawMessage, error)
	PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader) (json.RawMessage, error)
	WaitForTask(ctx context.Context, upid string, pollInterval, timeout time.Duration) (string, error)
}

// Manager moves installer images between three places: the Alpine
// mirror, a local work directory, and the Proxmox ISO storage.
type Manager struct {
	client  APIClient
	source  *Source
	storage string
	dir     string

	httpClient *http.Client
}

// NewManager creates a new image manager. Local copies are kept under dir
// and uploads go to the named storage.
func NewManager(client APIClient, source *Source, storage, dir string) *Manager {
	return &Manager{
		client:     client,
		source:     source,
		storage:    storage,
		dir:        dir,
		httpClient: http.DefaultClient,
	}
}

// EnsureAvailable makes the latest Alpine release ISO available in the
// ISO storage and returns its description. When the release is already
// present in the store nothing is transferred.
func (m *Manager) EnsureAvailable(ctx context.Context) (*Info, error) {
	info, err := m.source.Latest(ctx)
	if err != nil {
		return nil, err
	}

	present, err := m.PresentInStore(ctx, info.ISOName)
	if err != nil {
		return nil, err
	}
	if present {
		log.Printf("Latest ISO %s already present in storage %s", info.ISOName, m.storage)
		return info, nil
	}

	log.Printf("Latest ISO not found in storage %s, fetching it...", m.storage)
	path, err := m.Fetch(ctx, info)
	if err != nil {
		return nil, err
	}

	if err := m.Upload(ctx, path); err != nil {
		return nil, err
	}
	return info, nil
}

// List returns the ISO contents of the storage.
func (m *Manager) List(ctx context.Context) ([]proxmox.StorageContent, error) {
	return m.listContents(ctx)
}

// PresentInStore reports whether an ISO with the given file name exists
// in the storage. Matching is by volume ID suffix, the file name portion
// of "storage:iso/filename".
func (m *Manager) PresentInStore(ctx context.Context, filename string) (bool, error) {
	contents, err := m.listContents(ctx)
	if err != nil {
		return false, err
	}
	for _, c := range contents {
		if strings.HasSuffix(c.VolID, filename) {
			return true, nil
		}
	}
	return false, nil
}

// DeleteFromStore removes an ISO from the storage by file name and waits
// for the removal task to finish. A missing ISO is not an error.
func (m *Manager) DeleteFromStore(ctx context.Context, filename string) error {
	contents, err := m.listContents(ctx)
	if err != nil {
		return err
	}

	var volID string
	for _, c := range contents {
		if strings.HasSuffix(c.VolID, filename) {
			volID = c.VolID
			break
		}
	}
	if volID == "" {
		log.Printf("No ISO found with name %s, skipping delete.", filename)
		return nil
	}

	log.Printf("Deleting ISO %s...", filename)
	data, err := m.client.Delete(ctx, fmt.Sprintf("nodes/%s/storage/%s/content/%s", m.client.Node(), m.storage, volID), nil)
	if err != nil {
		return fmt.Errorf("failed to delete ISO %s: %w", filename, err)
	}

	var upid string
	if err := json.Unmarshal(data, &upid); err != nil {
		return fmt.Errorf("failed to decode delete task for %s: %w", filename, err)
	}
	log.Printf("Deleted ISO %s. Task: %s", filename, upid)

	if _, err := m.client.WaitForTask(ctx, upid, 0, 0); err != nil {
		return fmt.Errorf("failed waiting for ISO delete: %w", err)
	}
	return nil
}

// UploadError reports an upload the server rejected, preserving the
// response body for diagnosis.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: status %d: %s", e.Status, e.Body)
}

// Upload streams a local ISO into the storage as content type "iso". The
// file is sent as a single multipart request without being loaded into
// memory.
func (m *Manager) Upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open ISO for upload: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	fields := map[string]string{"content": "iso"}

	_, err = m.client.PostMultipart(ctx, fmt.Sprintf("nodes/%s/storage/%s/upload", m.client.Node(), m.storage), fields, "filename", name, f)
	if err != nil {
		var apiErr *proxmox.APIError
		if errors.As(err, &apiErr) {
			return &UploadError{Status: apiErr.StatusCode, Body: apiErr.Body}
		}
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}

	log.Printf("Uploaded %s to storage %s", name, m.storage)
	return nil
}

func (m *Manager) listContents(ctx context.Context) ([]proxmox.StorageContent, error) {
	params := url.Values{}
	params.Set("content", "iso")

	data, err := m.client.Get(ctx, fmt.Sprintf("nodes/%s/storage/%s/content", m.client.Node(), m.storage), params)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage %s: %w", m.storage, err)
	}

	var contents []proxmox.StorageContent
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("failed to decode storage %s contents: %w", m.storage, err)
	}
	return contents, nil
}
