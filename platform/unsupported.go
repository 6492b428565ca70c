package platform

import "github.com/shellbox-dev/shellbox/sandbox"

// unsupportedName is the name returned by the unsupported backend stub.
const unsupportedName = "unsupported"

// unsupported is the backend for operating systems without an OS-level
// sandbox wrapper. It never builds an invocation, so every command falls
// back to a plain shell with sandboxed=false.
type unsupported struct{}

func (u *unsupported) Name() string { return unsupportedName }

func (u *unsupported) Available() bool { return false }

func (u *unsupported) CheckDependencies() *DependencyCheck {
	return &DependencyCheck{
		Errors: []string{"no sandbox wrapper available on this operating system"},
	}
}

func (u *unsupported) Build(_, _ string, _ *sandbox.Policy) *Invocation {
	return nil
}

// NewUnsupported returns a Backend that never sandboxes. Useful in tests and
// on platforms without wrapper support.
func NewUnsupported() Backend {
	return &unsupported{}
}
