package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/jbweber/crucible/internal/naming"
)

// isoPattern matches standard x86_64 installer ISO names in the Alpine
// downloads page and captures the release version.
var isoPattern = regexp.MustCompile(`alpine-standard-([0-9.]+)-x86_64\.iso`)

// Info describes one released Alpine installer image.
type Info struct {
	// Version is the full release version, e.g. "3.22.1".
	Version string

	// ISOName is the release ISO file name.
	ISOName string

	// URL is the mirror URL the ISO is downloaded from.
	URL string

	// ChecksumURL is the URL of the SHA-256 sidecar file.
	ChecksumURL string
}

// DiscoveryError indicates the downloads page could not be used to
// determine the latest release.
type DiscoveryError struct {
	URL    string
	Reason string
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to determine latest Alpine release from %s: %s", e.URL, e.Reason)
}

// Source discovers the latest released Alpine image by scanning the
// downloads page. The first successful discovery is cached for the
// lifetime of the Source, so one harness run works against a single
// release even if a new one is published mid-run.
type Source struct {
	downloadsURL string
	mirrorURL    string
	httpClient   *http.Client

	cached *Info
}

// NewSource creates a Source that scans downloadsURL and builds download
// URLs against mirrorURL. A nil httpClient selects http.DefaultClient.
func NewSource(downloadsURL, mirrorURL string, httpClient *http.Client) *Source {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Source{
		downloadsURL: downloadsURL,
		mirrorURL:    mirrorURL,
		httpClient:   httpClient,
	}
}

// Latest returns the most recent Alpine release advertised on the
// downloads page. The first ISO name found wins, matching the page
// layout where the current release is listed first.
func (s *Source) Latest(ctx context.Context) (*Info, error) {
	if s.cached != nil {
		return s.cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.downloadsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build downloads request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch downloads page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &DiscoveryError{URL: s.downloadsURL, Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read downloads page: %w", err)
	}

	m := isoPattern.FindSubmatch(body)
	if m == nil {
		return nil, &DiscoveryError{URL: s.downloadsURL, Reason: "no standard x86_64 ISO listed"}
	}

	version := string(m[1])
	isoName := naming.ISOName(version)
	downloadURL := naming.DownloadURL(s.mirrorURL, isoName, version)

	s.cached = &Info{
		Version:     version,
		ISOName:     isoName,
		URL:         downloadURL,
		ChecksumURL: naming.ChecksumURL(downloadURL),
	}
	return s.cached, nil
}
