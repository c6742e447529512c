// Package image manages Alpine installer images for the test harness.
//
// The harness boots its VM from the latest released Alpine "standard"
// ISO. This package discovers that release, keeps a verified local copy
// in a work directory, and mirrors it into the Proxmox ISO storage:
//
//	src := image.NewSource(naming.DefaultDownloadsURL, naming.DefaultMirrorURL, nil)
//	mgr := image.NewManager(client, src, "local", ".")
//	info, err := mgr.EnsureAvailable(ctx)
//
// EnsureAvailable is idempotent: when the release ISO is already present
// in the store nothing is transferred, and a verified local copy is
// reused instead of being downloaded again.
//
// # Verification
//
// Every ISO is checked against the SHA-256 sidecar published next to the
// release. Pre-existing local files are re-hashed before reuse and
// removed on mismatch; fresh downloads are hashed in transit and only
// renamed into place once the digest matches, so an interrupted transfer
// never leaves a plausible-looking ISO behind.
package image
