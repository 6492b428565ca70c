// Package platform translates a sandbox policy into an OS-specific wrapper
// invocation.
//
// Each supported operating system provides a Backend: macOS wraps commands
// with sandbox-exec and a generated Seatbelt (SBPL) profile, Linux wraps
// them with bubblewrap (bwrap) bind mounts and namespace flags. Other
// systems get an Unsupported backend that never sandboxes. Invocation
// building is pure string assembly and works on any OS; only Detect and the
// availability probes are platform-dependent.
package platform

import (
	"fmt"

	"github.com/shellbox-dev/shellbox/sandbox"
)

// Invocation is a fully assembled sandbox-wrapper command line. The wrapped
// shell command is already embedded in Args (as a trailing `sh -c <command>`
// triple), so callers exec Program with Args as-is.
type Invocation struct {
	// Program is the wrapper binary to execute (e.g. "sandbox-exec", "bwrap").
	Program string

	// Args are the arguments passed to Program, excluding the program name.
	Args []string
}

// Backend builds sandbox invocations for one operating system.
type Backend interface {
	// Name returns a human-readable identifier for this backend
	// (e.g. "darwin-seatbelt", "linux-bwrap").
	Name() string

	// Available reports whether the backend's wrapper mechanism is
	// functional on the current system.
	Available() bool

	// CheckDependencies inspects the system for the wrapper binary and
	// reports anything missing or degraded.
	CheckDependencies() *DependencyCheck

	// Build assembles the wrapper invocation for a shell command executed
	// under the given policy, rooted at workspaceRoot. It returns nil when
	// the backend cannot sandbox on this system; the caller must then fall
	// back to a plain shell.
	Build(command, workspaceRoot string, policy *sandbox.Policy) *Invocation
}

// DependencyCheck holds the result of a backend dependency probe.
type DependencyCheck struct {
	// Errors lists critical missing dependencies that prevent sandboxing.
	Errors []string

	// Warnings lists non-critical issues that may degrade functionality.
	Warnings []string
}

// OK returns true if no critical dependency errors were found.
func (d *DependencyCheck) OK() bool {
	return len(d.Errors) == 0
}

func (d *DependencyCheck) String() string {
	return fmt.Sprintf("errors=%d warnings=%d", len(d.Errors), len(d.Warnings))
}

// Detect returns the Backend for the current operating system.
func Detect() Backend {
	return detectBackend()
}
