//go:build darwin

package platform

// detectBackend returns the macOS Seatbelt backend.
func detectBackend() Backend {
	return NewSeatbelt()
}
