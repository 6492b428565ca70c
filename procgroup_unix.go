//go:build darwin || linux

package shellbox

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setupProcessGroup configures cmd to run in its own session via Setsid.
// A fresh session (rather than just a fresh process group) means SIGKILL to
// the group reaches descendants, and orphaned grandchildren cannot keep the
// controlling terminal.
func setupProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setpgid = false
	cmd.SysProcAttr.Pgid = 0
}

// killProcessGroup sends SIGKILL to the process group led by pid.
// A group that is already gone is treated as success.
func killProcessGroup(pid int) error {
	// Guard: kill(-1) signals ALL user processes; kill(0) signals the
	// caller's own group. Both are catastrophic and must never happen.
	if pid <= 1 {
		return os.ErrProcessDone
	}
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		// ESRCH means the group no longer exists.
		if errors.Is(err, unix.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}
