package shellbox

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/shellbox-dev/shellbox/platform"
)

// execute runs one validated request end to end: resolve the working
// directory, build the sandbox invocation, spawn, supervise, and drain.
func (e *Engine) execute(ctx context.Context, args RunCommandArgs, token *CancelToken) (*RunCommandResult, error) {
	dir, err := e.validate(args.WorkspaceRoot, args.Workdir)
	if err != nil {
		return nil, err
	}

	timeout := e.cfg.clampTimeout(args.TimeoutMS)

	c, err := e.spawn(args.Command, args.WorkspaceRoot, dir)
	if err != nil {
		return nil, err
	}

	timedOut, cancelled, waitErr := e.supervise(ctx, c, timeout, token)

	if timedOut || cancelled {
		e.kill(c)
		waitErr = <-c.waitCh
	}

	stdout := c.stdout.wait(e.cfg.DrainTimeout)
	stderr := c.stderr.wait(e.cfg.DrainTimeout)

	res := &RunCommandResult{
		Stdout:    stdout,
		Stderr:    stderr,
		ExitCode:  exitCode(waitErr, timedOut || cancelled),
		TimedOut:  timedOut,
		Cancelled: cancelled,
		Sandboxed: c.sandboxed,
		Truncated: c.stdout.truncated() || c.stderr.truncated(),
	}
	return res, nil
}

// spawn starts the command, sandboxed when the policy enables it and the
// platform supports it. A sandbox wrapper that fails to start is logged and
// the command is retried as a plain shell; a plain shell that fails to start
// is a hard error.
func (e *Engine) spawn(command, workspaceRoot, dir string) (*child, error) {
	var inv *platform.Invocation
	if p := e.policy(); p.Enabled && e.backend.Available() {
		inv = e.backend.Build(command, workspaceRoot, p)
	}

	if inv != nil {
		c, err := e.startChild(inv, command, dir, true)
		if err == nil {
			return c, nil
		}
		e.logger.Warn("sandbox wrapper failed to start, falling back to plain shell",
			"backend", e.backend.Name(), "error", err)
	}
	return e.startChild(nil, command, dir, false)
}

// supervise polls the running child until it exits, the timeout elapses, or
// a cancel arrives, checking strictly in that order each tick. A command
// that exits in the same tick a timeout or cancel fires is reported as a
// normal exit.
func (e *Engine) supervise(ctx context.Context, c *child, timeout time.Duration, token *CancelToken) (timedOut, cancelled bool, waitErr error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case waitErr = <-c.waitCh:
			return false, false, waitErr
		default:
		}
		if !time.Now().Before(deadline) {
			return true, false, nil
		}
		if token != nil && token.Cancelled() {
			return false, true, nil
		}
		if ctx.Err() != nil {
			return false, true, nil
		}
		<-ticker.C
	}
}

// kill terminates the child's whole session: SIGKILL to the process group,
// then a direct Process.Kill regardless. The direct kill covers platforms
// without group semantics and children that left the group; killing an
// already-dead process is an expected race, not a fault.
func (e *Engine) kill(c *child) {
	if c.cmd.Process == nil {
		return
	}
	pid := c.cmd.Process.Pid
	err := killProcessGroup(pid)
	if err != nil && !errors.Is(err, os.ErrProcessDone) && !errors.Is(err, errors.ErrUnsupported) {
		e.logger.Warn("process group kill failed", "pid", pid, "error", err)
	}
	_ = c.cmd.Process.Kill()
}

// exitCode extracts the result exit code from a Wait error. Killed commands
// (timeout or cancel) and signal deaths report the -1 sentinel.
func exitCode(waitErr error, killed bool) int {
	if killed {
		return exitCodeSentinel
	}
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode()
	}
	return exitCodeSentinel
}
