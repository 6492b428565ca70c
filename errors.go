package shellbox

import (
	"errors"

	"github.com/shellbox-dev/shellbox/internal/pathutil"
)

// Sentinel errors returned by the shellbox package.
var (
	// ErrConfigInvalid indicates the provided configuration failed validation.
	ErrConfigInvalid = errors.New("shellbox: invalid configuration")

	// ErrSpawn indicates the plain shell could not be spawned. Sandbox
	// wrapper spawn failures are recovered internally by falling back to a
	// plain shell and never surface as errors.
	ErrSpawn = errors.New("shellbox: failed to spawn command")
)

// Precondition errors from the workspace validator, re-exported so callers
// can match them without importing internal packages.
var (
	// ErrOutsideWorkspace indicates the working directory resolves outside
	// the workspace root.
	ErrOutsideWorkspace = pathutil.ErrOutsideWorkspace

	// ErrWorkdirNotFound indicates the workspace root or working directory
	// does not exist.
	ErrWorkdirNotFound = pathutil.ErrNotFound
)
