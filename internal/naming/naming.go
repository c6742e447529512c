// Package naming provides naming conventions for the artifacts the test
// harness works with: Alpine installer ISO names, the mirror URLs they are
// fetched from, and Proxmox volume identifiers.
//
// These rules are fixed by the Alpine release layout and the Proxmox
// storage API and are shared across all commands.
package naming

import (
	"fmt"
	"strings"
)

const (
	// OverlayTarball is the apkovl tarball produced by the overlay builder.
	OverlayTarball = "alpine.apkovl.tar.gz"

	// OverlayISO is the payload ISO derived from the overlay tarball and
	// attached to the test VM as a secondary CD-ROM.
	OverlayISO = "headless_test_apkovl.iso"

	// DefaultMirrorURL is the Alpine CDN releases are downloaded from.
	DefaultMirrorURL = "https://dl-cdn.alpinelinux.org/alpine"

	// DefaultDownloadsURL is the listing page scanned to discover the
	// latest published release.
	DefaultDownloadsURL = "https://www.alpinelinux.org/downloads/"
)

// ISOName returns the standard installer ISO filename for a release version.
// Format: alpine-standard-{version}-x86_64.iso
//
// Example: version 3.22.1 → alpine-standard-3.22.1-x86_64.iso
func ISOName(version string) string {
	return fmt.Sprintf("alpine-standard-%s-x86_64.iso", version)
}

// DownloadURL returns the mirror URL for an installer ISO. Release
// directories on the mirror are keyed by the major.minor branch, not the
// full patch version.
//
// Example: (mirror, alpine-standard-3.22.1-x86_64.iso, 3.22.1) →
// {mirror}/v3.22/releases/x86_64/alpine-standard-3.22.1-x86_64.iso
func DownloadURL(mirror, isoName, version string) string {
	return fmt.Sprintf("%s/v%s/releases/x86_64/%s",
		strings.TrimRight(mirror, "/"), BranchVersion(version), isoName)
}

// ChecksumURL returns the URL of the SHA-256 companion file published next
// to a release ISO.
// Format: {downloadURL}.sha256
func ChecksumURL(downloadURL string) string {
	return downloadURL + ".sha256"
}

// BranchVersion reduces a full release version to its major.minor branch.
//
// Example: 3.22.1 → 3.22
func BranchVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ".")
}

// VolID returns the Proxmox volume identifier for an ISO in a storage.
// Format: {storage}:iso/{filename}
//
// Example: (local, alpine-standard-3.22.1-x86_64.iso) →
// local:iso/alpine-standard-3.22.1-x86_64.iso
func VolID(storage, filename string) string {
	return fmt.Sprintf("%s:iso/%s", storage, filename)
}

// CDROM returns the Proxmox drive specification attaching an ISO as a
// CD-ROM device.
// Format: {storage}:iso/{filename},media=cdrom
func CDROM(storage, filename string) string {
	return fmt.Sprintf("%s,media=cdrom", VolID(storage, filename))
}
