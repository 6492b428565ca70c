package platform

import (
	"fmt"
	"os"
	"strings"

	"github.com/shellbox-dev/shellbox/sandbox"
)

// SandboxExecPath is the location of the macOS sandbox-exec binary. It is a
// var (not a const) so tests can point it at a nonexistent path to simulate
// a missing wrapper.
var SandboxExecPath = "/usr/bin/sandbox-exec"

// Seatbelt is the macOS backend. It generates an SBPL (Sandbox Profile
// Language) profile from the policy and wraps the command with sandbox-exec.
// sandbox-exec ships with every macOS installation, so the backend reports
// itself available whenever the binary is present.
type Seatbelt struct{}

// NewSeatbelt returns the macOS Seatbelt backend.
func NewSeatbelt() *Seatbelt {
	return &Seatbelt{}
}

func (s *Seatbelt) Name() string { return "darwin-seatbelt" }

func (s *Seatbelt) Available() bool {
	_, err := os.Stat(SandboxExecPath)
	return err == nil
}

func (s *Seatbelt) CheckDependencies() *DependencyCheck {
	check := &DependencyCheck{}
	if _, err := os.Stat(SandboxExecPath); err != nil {
		check.Errors = append(check.Errors,
			fmt.Sprintf("sandbox-exec not found at %s: %v", SandboxExecPath, err))
	}
	return check
}

// Build wraps command in a sandbox-exec invocation carrying an inline SBPL
// profile: sandbox-exec -p <profile> sh -c <command>.
func (s *Seatbelt) Build(command, workspaceRoot string, policy *sandbox.Policy) *Invocation {
	profile := seatbeltProfile(workspaceRoot, policy)
	return &Invocation{
		Program: SandboxExecPath,
		Args:    []string{"-p", profile, "sh", "-c", command},
	}
}

// seatbeltProfile generates the SBPL profile text. SBPL is a deny-everything
// policy language: rule order matters, and for overlapping rules the last
// match wins. The profile therefore emits deny-write rules after all
// allow-write rules so that DenyWrite always beats AllowWrite.
func seatbeltProfile(workspaceRoot string, policy *sandbox.Policy) string {
	b := &profileBuilder{}

	b.line("(version 1)")
	b.line("(deny default)")

	// The wrapped shell needs to fork and exec, and tools routinely
	// signal their own children and probe sysctl values.
	b.line("(allow process-exec)")
	b.line("(allow process-fork)")
	b.line("(allow signal (target self))")
	b.line("(allow sysctl-read)")

	// Reads: allow everything, then carve out the sensitive paths.
	b.line("(allow file-read*)")
	for _, p := range policy.DenyRead {
		b.linef("(deny file-read* (subpath \"%s\"))", escapeSBPL(sandbox.ExpandHome(p)))
	}

	// Writes: deny everything, then open the workspace, the temp area, and
	// the configured extras. DenyWrite entries come last so they win.
	b.line("(deny file-write*)")
	b.linef("(allow file-write* (subpath \"%s\"))", escapeSBPL(workspaceRoot))
	b.line(`(allow file-write* (subpath "/tmp"))`)
	b.line(`(allow file-write* (subpath "/private/tmp"))`)
	for _, p := range policy.AllowWrite {
		b.linef("(allow file-write* (subpath \"%s\"))", escapeSBPL(sandbox.ExpandHome(p)))
	}
	for _, p := range policy.DenyWrite {
		b.linef("(deny file-write* (subpath \"%s\"))", escapeSBPL(sandbox.ExpandHome(p)))
	}

	if policy.AllowNetwork {
		b.line("(allow network*)")
	} else {
		b.line("(deny network*)")
	}

	return b.String()
}

// profileBuilder accumulates SBPL profile lines.
type profileBuilder struct {
	buf strings.Builder
}

func (b *profileBuilder) line(s string) {
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
}

func (b *profileBuilder) linef(format string, args ...any) {
	fmt.Fprintf(&b.buf, format, args...)
	b.buf.WriteByte('\n')
}

func (b *profileBuilder) String() string {
	return strings.TrimRight(b.buf.String(), "\n")
}

// escapeSBPL escapes a path for use inside an SBPL double-quoted string
// literal. Backslashes and quotes must be escaped, and control characters
// stripped, so that attacker-influenced path strings cannot inject profile
// rules.
func escapeSBPL(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
