package platform

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/shellbox-dev/shellbox/sandbox"
)

// bwrapBinary is the name of the bubblewrap front-end probed on PATH.
const bwrapBinary = "bwrap"

// Bwrap is the Linux backend. It wraps commands with bubblewrap, binding a
// minimal read-only view of the system plus read-write mounts for the
// workspace, the temp directory, and the policy's allow-write paths. Unlike
// Seatbelt there is no deny-rule layering: anything not bound into the mount
// namespace simply does not exist for the command, which subsumes DenyRead
// and DenyWrite for unbound paths.
type Bwrap struct{}

// NewBwrap returns the Linux bubblewrap backend.
func NewBwrap() *Bwrap {
	return &Bwrap{}
}

func (b *Bwrap) Name() string { return "linux-bwrap" }

// Available reports whether the bwrap binary is installed. bwrap is not part
// of a base Linux system, so absence is common and callers must fall back.
func (b *Bwrap) Available() bool {
	_, err := exec.LookPath(bwrapBinary)
	return err == nil
}

func (b *Bwrap) CheckDependencies() *DependencyCheck {
	check := &DependencyCheck{}
	if _, err := exec.LookPath(bwrapBinary); err != nil {
		check.Errors = append(check.Errors,
			fmt.Sprintf("bwrap not found on PATH: %v", err))
	}
	return check
}

// Build assembles the bwrap argument vector, or nil when bwrap is missing.
func (b *Bwrap) Build(command, workspaceRoot string, policy *sandbox.Policy) *Invocation {
	if !b.Available() {
		return nil
	}

	args := make([]string, 0, 32)

	// Read-only view of the core system directories.
	args = append(args,
		"--ro-bind", "/usr", "/usr",
		"--ro-bind", "/lib", "/lib",
		"--ro-bind", "/bin", "/bin",
		"--ro-bind", "/etc", "/etc",
		"--proc", "/proc",
		"--dev", "/dev",
	)

	// Some distributions keep the dynamic loader under /lib64.
	if _, err := os.Stat("/lib64"); err == nil {
		args = append(args, "--ro-bind", "/lib64", "/lib64")
	}

	// Writable workspace and temp area.
	args = append(args,
		"--bind", workspaceRoot, workspaceRoot,
		"--bind", "/tmp", "/tmp",
	)

	// Extra writable paths from the policy. Entries that do not exist on
	// disk are skipped: bwrap refuses to start when a bind source is
	// missing, and a nonexistent path needs no protection anyway.
	for _, p := range policy.AllowWrite {
		expanded := sandbox.ExpandHome(p)
		if _, err := os.Stat(expanded); err == nil {
			args = append(args, "--bind", expanded, expanded)
		}
	}

	if !policy.AllowNetwork {
		args = append(args, "--unshare-net")
	}

	args = append(args, "sh", "-c", command)

	return &Invocation{Program: bwrapBinary, Args: args}
}
