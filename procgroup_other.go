//go:build !darwin && !linux

package shellbox

import (
	"errors"
	"os/exec"
)

func setupProcessGroup(_ *exec.Cmd) {}

// killProcessGroup reports that group semantics do not exist here; the
// caller falls back to killing the direct child.
func killProcessGroup(_ int) error {
	return errors.ErrUnsupported
}
