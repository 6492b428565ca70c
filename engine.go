package shellbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shellbox-dev/shellbox/internal/pathutil"
	"github.com/shellbox-dev/shellbox/platform"
	"github.com/shellbox-dev/shellbox/sandbox"
)

// Engine executes shell commands inside the OS sandbox, with per-command
// timeouts and out-of-band cancellation. An Engine is safe for concurrent
// use by multiple goroutines.
type Engine struct {
	cfg      *Config
	backend  Backend
	registry *CancelRegistry
	validate WorkdirValidator
	logger   *slog.Logger
}

// NewEngine validates cfg and returns a ready Engine. A nil cfg means
// DefaultConfig(). Unset fields are filled with defaults; the caller's
// Config is not modified.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := *cfg
	if c.DefaultTimeout == 0 {
		c.DefaultTimeout = defaultTimeout
	}
	if c.MaxTimeout == 0 {
		c.MaxTimeout = maxTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = defaultDrainTimeout
	}
	if c.Shell == "" {
		c.Shell = defaultShell
	}
	if c.PolicyPath == "" {
		c.PolicyPath = sandbox.DefaultPath()
	}

	e := &Engine{
		cfg:      &c,
		backend:  c.Backend,
		registry: c.Registry,
		validate: c.Validator,
		logger:   c.Logger,
	}
	if e.backend == nil {
		e.backend = platform.Detect()
	}
	if e.registry == nil {
		e.registry = NewCancelRegistry()
	}
	if e.validate == nil {
		e.validate = pathutil.EnsureInsideWorkspace
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// Registry returns the cancel registry the engine registers run tokens in.
func (e *Engine) Registry() *CancelRegistry {
	return e.registry
}

// Backend returns the sandbox backend in use.
func (e *Engine) Backend() Backend {
	return e.backend
}

// CheckDependencies probes the platform backend for missing dependencies.
func (e *Engine) CheckDependencies() *DependencyCheck {
	return e.backend.CheckDependencies()
}

// Cancel flags the command registered under key for termination and reports
// whether such a command was registered. The command itself observes the
// flag on its next poll and exits with Cancelled set.
func (e *Engine) Cancel(key string) bool {
	return e.registry.Cancel(key)
}

// Run executes args.Command via the shell, confined to args.WorkspaceRoot.
//
// The returned error covers failures to start: an invalid request, a working
// directory outside the workspace, or a shell that could not be spawned.
// Everything after a successful spawn is reported in the result, never as an
// error: non-zero exit codes, timeouts, and cancellations.
func (e *Engine) Run(ctx context.Context, args RunCommandArgs) (*RunCommandResult, error) {
	if args.WorkspaceRoot == "" {
		return nil, fmt.Errorf("%w: workspace root must not be empty", ErrConfigInvalid)
	}
	if args.Command == "" {
		return nil, fmt.Errorf("%w: command must not be empty", ErrConfigInvalid)
	}

	var token *CancelToken
	if args.CancelToken != "" {
		token = e.registry.Register(args.CancelToken)
		defer e.registry.Remove(args.CancelToken)
	}

	return e.execute(ctx, args, token)
}

// policy loads the sandbox policy for a run. ExtraAllowWrite directories are
// appended to a clone so the on-disk policy is never mutated.
func (e *Engine) policy() *sandbox.Policy {
	p := sandbox.LoadFrom(e.cfg.PolicyPath)
	if len(e.cfg.ExtraAllowWrite) == 0 {
		return p
	}
	p = p.Clone()
	p.AllowWrite = append(p.AllowWrite, e.cfg.ExtraAllowWrite...)
	return p
}
