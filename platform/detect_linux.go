//go:build linux

package platform

// detectBackend returns the Linux bubblewrap backend.
func detectBackend() Backend {
	return NewBwrap()
}
