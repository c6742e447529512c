package proxmox

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// APIError is returned for any non-2xx response from the management API.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Body is the response body, usually a short JSON error message.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed: status %d: %s", e.StatusCode, e.Body)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Host is the Proxmox API host. The API is reached at
	// https://{host}:8006/api2/json.
	Host string

	// Node is the node name used for node-scoped request paths.
	Node string

	// TokenID and Secret form the API token sent as
	// "Authorization: PVEAPIToken {TokenID}={Secret}".
	TokenID string
	Secret  string

	// VerifyTLS enables certificate verification. Homelab nodes usually
	// present self-signed certificates, so this defaults to off.
	VerifyTLS bool

	// BaseURL overrides the https://{host}:8006/api2/json convention when
	// set. Used by tests and nonstandard proxies.
	BaseURL string
}

// Client is an authenticated client for the Proxmox VE HTTP API. Each
// method issues exactly one request; there are no retries at this layer.
type Client struct {
	base       string
	node       string
	auth       string
	httpClient *http.Client
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Host == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Node == "" {
		return nil, fmt.Errorf("node is required")
	}
	if cfg.TokenID == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("api token id and secret are required")
	}

	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s:8006/api2/json", cfg.Host)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.VerifyTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	// No client-level timeout: task polls are short, but ISO uploads can
	// legitimately take many minutes. Callers bound requests via context.
	return &Client{
		base:       strings.TrimRight(base, "/"),
		node:       cfg.Node,
		auth:       fmt.Sprintf("PVEAPIToken %s=%s", cfg.TokenID, cfg.Secret),
		httpClient: &http.Client{Transport: transport},
	}, nil
}

// Node returns the node name requests are scoped to.
func (c *Client) Node() string {
	return c.node
}

// Get issues a GET request and returns the unwrapped data payload.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, path, params, nil, "")
}

// Post issues a form-encoded POST request and returns the unwrapped data
// payload.
func (c *Client) Post(ctx context.Context, path string, data url.Values) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPost, path, nil,
		strings.NewReader(data.Encode()), "application/x-www-form-urlencoded")
}

// Delete issues a DELETE request and returns the unwrapped data payload.
func (c *Client) Delete(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodDelete, path, params, nil, "")
}

// PostMultipart issues a multipart/form-data POST streaming file as the
// fileField part, with fields sent as ordinary form values. The file is
// piped through the request body, never buffered whole in memory.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader) (json.RawMessage, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			for k, v := range fields {
				if err := mw.WriteField(k, v); err != nil {
					return err
				}
			}
			// CreateFormFile sets Content-Type: application/octet-stream
			// on the part, which the upload endpoint expects.
			part, err := mw.CreateFormFile(fileField, fileName)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, file); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	return c.doRequest(ctx, http.MethodPost, path, nil, pr, mw.FormDataContentType())
}

// Version fetches the API server version. Used as a connectivity probe.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	data, err := c.Get(ctx, "version", nil)
	if err != nil {
		return nil, err
	}

	var info VersionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode version info: %w", err)
	}
	return &info, nil
}

// doRequest issues one HTTP request with the auth header attached, checks
// for a 2xx status, and unwraps the {"data": ...} envelope.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (json.RawMessage, error) {
	reqURL := fmt.Sprintf("%s/%s", c.base, strings.TrimPrefix(path, "/"))
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.auth)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	return envelope.Data, nil
}
