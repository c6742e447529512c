package image

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ChecksumError reports a SHA-256 mismatch between a downloaded ISO and
// the published checksum.
type ChecksumError struct {
	Path string
	Want string
	Got  string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: want %s, got %s", e.Path, e.Want, e.Got)
}

// Fetch ensures a verified local copy of the release ISO under the work
// directory and returns its path.
//
// A pre-existing file is re-hashed and reused when it matches the
// published checksum; on mismatch it is removed and downloaded again.
func (m *Manager) Fetch(ctx context.Context, info *Info) (string, error) {
	want, err := m.fetchChecksum(ctx, info.ChecksumURL)
	if err != nil {
		return "", err
	}

	path := filepath.Join(m.dir, info.ISOName)

	ok, err := verifyFile(path, want)
	if err != nil {
		return "", err
	}
	if ok {
		log.Printf("%s already exists and matches the published checksum, skipping download.", info.ISOName)
		return path, nil
	}

	if err := m.download(ctx, info.URL, path, want); err != nil {
		return "", err
	}
	return path, nil
}

// fetchChecksum retrieves the published SHA-256 digest for a release ISO.
// The sidecar file holds the hex digest followed by the file name.
func (m *Manager) fetchChecksum(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build checksum request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch checksum: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch checksum: unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read checksum: %w", err)
	}

	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return "", fmt.Errorf("checksum file %s is empty", url)
	}
	return fields[0], nil
}

// verifyFile reports whether path exists and hashes to want. A file that
// fails verification is removed so the caller downloads a fresh copy.
func verifyFile(path, want string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open existing ISO: %w", err)
	}
	defer f.Close()

	digest := sha256.New()
	buf := make([]byte, 8192)
	if _, err := io.CopyBuffer(digest, f, buf); err != nil {
		return false, fmt.Errorf("failed to hash existing ISO: %w", err)
	}

	got := hex.EncodeToString(digest.Sum(nil))
	if got != want {
		log.Printf("Existing %s does not match the published checksum, re-downloading.", filepath.Base(path))
		if err := os.Remove(path); err != nil {
			return false, fmt.Errorf("failed to remove stale ISO: %w", err)
		}
		return false, nil
	}

	log.Printf("Existing %s checksum matches the published value.", filepath.Base(path))
	return true, nil
}

// download streams the ISO to path, hashing it in transit. Data goes to a
// temporary file first and is renamed into place only after the digest
// matches.
func (m *Manager) download(ctx context.Context, url, path, want string) error {
	log.Printf("Downloading ISO from %s...", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download ISO: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download ISO: unexpected status %d from %s", resp.StatusCode, url)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	digest := sha256.New()
	_, err = io.Copy(io.MultiWriter(f, digest), resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}

	if got := hex.EncodeToString(digest.Sum(nil)); got != want {
		os.Remove(tmp)
		return &ChecksumError{Path: path, Want: want, Got: got}
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", tmp, err)
	}

	log.Printf("Downloaded %s", filepath.Base(path))
	return nil
}
