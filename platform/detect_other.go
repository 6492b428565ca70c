//go:build !darwin && !linux

package platform

// detectBackend returns the unsupported backend stub for operating systems
// without a sandbox wrapper.
func detectBackend() Backend {
	return &unsupported{}
}
