package shellbox

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/shellbox-dev/shellbox/platform"
)

// Backend constructs the sandbox invocation for one platform.
// It is an alias for platform.Backend.
type Backend = platform.Backend

// DependencyCheck holds the result of a platform dependency check.
// It is an alias for platform.DependencyCheck.
type DependencyCheck = platform.DependencyCheck

const (
	// defaultTimeout applies when RunCommandArgs.TimeoutMS is zero or negative.
	defaultTimeout = 2 * time.Minute

	// maxTimeout caps any requested timeout.
	maxTimeout = 10 * time.Minute

	// defaultPollInterval is how often the execution loop re-checks
	// exit, timeout, and cancellation.
	defaultPollInterval = 50 * time.Millisecond

	// defaultDrainTimeout bounds the wait for each output pipe after the
	// command has been reaped. Orphaned descendants can hold the write end
	// open indefinitely; past this deadline the read end is force-closed.
	defaultDrainTimeout = 3 * time.Second

	// defaultMaxOutputBytes limits captured stdout/stderr (each).
	defaultMaxOutputBytes = 10 * 1024 * 1024

	defaultShell = "/bin/sh"
)

// WorkdirValidator resolves a requested working directory against a
// workspace root and returns the absolute path to use, or an error when the
// path escapes the workspace or does not exist.
type WorkdirValidator func(workspaceRoot, workdir string) (string, error)

// Config holds the configuration for an Engine.
type Config struct {
	// PolicyPath is the sandbox policy file location. Empty means
	// sandbox.DefaultPath(). The policy is re-read on every Run, so edits
	// take effect without restarting.
	PolicyPath string

	// DefaultTimeout applies when a run request carries no timeout.
	DefaultTimeout time.Duration

	// MaxTimeout caps requested timeouts.
	MaxTimeout time.Duration

	// PollInterval is the execution loop's check interval.
	PollInterval time.Duration

	// DrainTimeout bounds the post-exit wait for each output pipe.
	DrainTimeout time.Duration

	// Shell is the interpreter commands are passed to via -c.
	// If empty, /bin/sh is used.
	Shell string

	// MaxOutputBytes limits the size of captured stdout and stderr, each.
	// 0 means no limit. Defaults to 10 MB when created via DefaultConfig();
	// set explicitly to 0 to disable the limit.
	MaxOutputBytes int

	// ExtraAllowWrite lists directories granted write access in addition to
	// what the policy file allows, for ephemeral per-engine locations like
	// session scratch directories.
	ExtraAllowWrite []string

	// Registry is the cancel registry Run registers tokens in.
	// If nil, the engine creates its own.
	Registry *CancelRegistry

	// Backend overrides platform detection, mainly for tests.
	// If nil, platform.Detect() is used.
	Backend Backend

	// Validator overrides working-directory resolution, mainly for tests.
	Validator WorkdirValidator

	// Logger is the structured logger for operational messages such as
	// sandbox fallback warnings and kill diagnostics.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the standard timeouts and limits.
func DefaultConfig() *Config {
	return &Config{
		DefaultTimeout: defaultTimeout,
		MaxTimeout:     maxTimeout,
		PollInterval:   defaultPollInterval,
		DrainTimeout:   defaultDrainTimeout,
		Shell:          defaultShell,
		MaxOutputBytes: defaultMaxOutputBytes,
	}
}

// Validate checks the configuration for invalid values. It returns an error
// wrapping ErrConfigInvalid describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if c.DefaultTimeout < 0 {
		errs = append(errs, "DefaultTimeout: must be >= 0")
	}
	if c.MaxTimeout < 0 {
		errs = append(errs, "MaxTimeout: must be >= 0")
	}
	if c.MaxTimeout > 0 && c.DefaultTimeout > c.MaxTimeout {
		errs = append(errs, "DefaultTimeout: must not exceed MaxTimeout")
	}
	if c.PollInterval < 0 {
		errs = append(errs, "PollInterval: must be >= 0")
	}
	if c.DrainTimeout < 0 {
		errs = append(errs, "DrainTimeout: must be >= 0")
	}
	if c.MaxOutputBytes < 0 {
		errs = append(errs, "MaxOutputBytes: must be >= 0")
	}
	if c.Shell != "" && !filepath.IsAbs(c.Shell) {
		errs = append(errs, fmt.Sprintf("Shell: %q must be an absolute path", c.Shell))
	}
	for i, dir := range c.ExtraAllowWrite {
		if dir == "" {
			errs = append(errs, fmt.Sprintf("ExtraAllowWrite[%d]: must not be empty", i))
			continue
		}
		if strings.ContainsRune(dir, 0) {
			errs = append(errs, fmt.Sprintf("ExtraAllowWrite[%d]: must not contain null bytes", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// clampTimeout maps a requested millisecond timeout onto the configured
// default and maximum.
func (c *Config) clampTimeout(timeoutMS int64) time.Duration {
	d := time.Duration(timeoutMS) * time.Millisecond
	if d <= 0 {
		d = c.DefaultTimeout
	}
	if c.MaxTimeout > 0 && d > c.MaxTimeout {
		d = c.MaxTimeout
	}
	return d
}
