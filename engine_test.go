package shellbox

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/shellbox-dev/shellbox/platform"
	"github.com/shellbox-dev/shellbox/sandbox"
)

// testEngine returns an engine wired for fast, hermetic tests: no sandbox
// wrapper, a throwaway policy path, and a short poll interval.
func testEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	cfg := DefaultConfig()
	cfg.PolicyPath = filepath.Join(t.TempDir(), "policy.json")
	cfg.PollInterval = 10 * time.Millisecond
	if mutate != nil {
		mutate(cfg)
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func mustRun(t *testing.T, e *Engine, args RunCommandArgs) *RunCommandResult {
	t.Helper()
	res, err := e.Run(context.Background(), args)
	if err != nil {
		t.Fatalf("Run(%q): %v", args.Command, err)
	}
	return res
}

func TestRunCapturesStdout(t *testing.T) {
	e := testEngine(t, nil)
	res := mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "echo hello",
	})

	if res.Stdout != "hello\n" {
		t.Fatalf("Stdout = %q, want %q", res.Stdout, "hello\n")
	}
	if res.Stderr != "" {
		t.Fatalf("Stderr = %q, want empty", res.Stderr)
	}
	if res.ExitCode != 0 || res.TimedOut || res.Cancelled {
		t.Fatalf("result = %+v, want clean exit", res)
	}
}

func TestRunCapturesStderr(t *testing.T) {
	e := testEngine(t, nil)
	res := mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "echo oops >&2",
	})

	if res.Stderr != "oops\n" {
		t.Fatalf("Stderr = %q, want %q", res.Stderr, "oops\n")
	}
	if res.Stdout != "" {
		t.Fatalf("Stdout = %q, want empty", res.Stdout)
	}
}

func TestRunReportsExitCodeNotError(t *testing.T) {
	e := testEngine(t, nil)
	res := mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "exit 42",
	})

	if res.ExitCode != 42 {
		t.Fatalf("ExitCode = %d, want 42", res.ExitCode)
	}
	if res.TimedOut || res.Cancelled {
		t.Fatalf("result = %+v, want plain non-zero exit", res)
	}
}

func TestRunDefaultWorkdirIsWorkspaceRoot(t *testing.T) {
	e := testEngine(t, nil)
	ws := t.TempDir()
	res := mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: ws,
		Command:       "pwd",
	})

	got := strings.TrimSpace(res.Stdout)
	want, err := filepath.EvalSymlinks(ws)
	if err != nil {
		t.Fatal(err)
	}
	if resolved, err := filepath.EvalSymlinks(got); err == nil {
		got = resolved
	}
	if got != want {
		t.Fatalf("pwd = %q, want %q", got, want)
	}
}

func TestRunRelativeWorkdir(t *testing.T) {
	e := testEngine(t, nil)
	ws := t.TempDir()
	res := mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: ws,
		Command:       "mkdir -p sub && echo made",
	})
	if res.ExitCode != 0 {
		t.Fatalf("setup command failed: %+v", res)
	}

	res = mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: ws,
		Command:       "basename \"$PWD\"",
		Workdir:       "sub",
	})
	if strings.TrimSpace(res.Stdout) != "sub" {
		t.Fatalf("Stdout = %q, want %q", res.Stdout, "sub\n")
	}
}

func TestRunRejectsWorkdirOutsideWorkspace(t *testing.T) {
	e := testEngine(t, nil)
	_, err := e.Run(context.Background(), RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "echo should not run",
		Workdir:       "/",
	})

	if !errors.Is(err, ErrOutsideWorkspace) {
		t.Fatalf("err = %v, want ErrOutsideWorkspace", err)
	}
}

func TestRunRejectsMissingWorkdir(t *testing.T) {
	e := testEngine(t, nil)
	_, err := e.Run(context.Background(), RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "echo should not run",
		Workdir:       "does-not-exist",
	})

	if !errors.Is(err, ErrWorkdirNotFound) {
		t.Fatalf("err = %v, want ErrWorkdirNotFound", err)
	}
}

func TestRunRejectsEmptyArgs(t *testing.T) {
	e := testEngine(t, nil)
	ctx := context.Background()

	if _, err := e.Run(ctx, RunCommandArgs{Command: "echo hi"}); err == nil {
		t.Fatal("empty workspace root accepted")
	}
	if _, err := e.Run(ctx, RunCommandArgs{WorkspaceRoot: t.TempDir()}); err == nil {
		t.Fatal("empty command accepted")
	}
}

func TestRunTimeout(t *testing.T) {
	e := testEngine(t, nil)

	start := time.Now()
	res := mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "sleep 60",
		TimeoutMS:     300,
	})
	elapsed := time.Since(start)

	if !res.TimedOut {
		t.Fatalf("TimedOut = false, result %+v", res)
	}
	if res.Cancelled {
		t.Fatal("Cancelled = true on a timeout")
	}
	if res.ExitCode != -1 {
		t.Fatalf("ExitCode = %d, want -1", res.ExitCode)
	}
	if elapsed > 5*time.Second {
		t.Fatalf("timed-out run took %v, want prompt return", elapsed)
	}
}

func TestRunCancelViaRegistry(t *testing.T) {
	e := testEngine(t, nil)

	ws := t.TempDir()
	type outcome struct {
		res *RunCommandResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.Run(context.Background(), RunCommandArgs{
			WorkspaceRoot: ws,
			Command:       "sleep 60",
			TimeoutMS:     30_000,
			CancelToken:   "run-1",
		})
		done <- outcome{res, err}
	}()

	// Wait for the token to be registered, then cancel.
	deadline := time.Now().Add(5 * time.Second)
	for !e.Cancel("run-1") {
		if time.Now().After(deadline) {
			t.Fatal("token never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case out := <-done:
		if out.err != nil {
			t.Fatalf("Run: %v", out.err)
		}
		res := out.res
		if !res.Cancelled {
			t.Fatalf("Cancelled = false, result %+v", res)
		}
		if res.TimedOut {
			t.Fatal("TimedOut = true on a cancellation")
		}
		if res.ExitCode != -1 {
			t.Fatalf("ExitCode = %d, want -1", res.ExitCode)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("cancelled run never returned")
	}
}

func TestRunCancelUnknownKey(t *testing.T) {
	e := testEngine(t, nil)
	if e.Cancel("never-registered") {
		t.Fatal("Cancel returned true for an unknown key")
	}
}

func TestRunTokenRemovedAfterRun(t *testing.T) {
	e := testEngine(t, nil)
	mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "true",
		CancelToken:   "run-done",
	})

	if e.Cancel("run-done") {
		t.Fatal("token still registered after the run finished")
	}
}

func TestRunContextCancellation(t *testing.T) {
	e := testEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	res, err := e.Run(ctx, RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "sleep 60",
		TimeoutMS:     30_000,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Cancelled {
		t.Fatalf("Cancelled = false, result %+v", res)
	}
}

func TestRunOrphanDoesNotBlockReturn(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("relies on process sessions")
	}
	e := testEngine(t, nil)

	start := time.Now()
	res := mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "echo ok; sleep 300 &",
	})
	elapsed := time.Since(start)

	if !strings.Contains(res.Stdout, "ok") {
		t.Fatalf("Stdout = %q, want it to contain %q", res.Stdout, "ok")
	}
	// The background child inherits the pipe; the drain timeout bounds the
	// wait for it.
	if elapsed > 10*time.Second {
		t.Fatalf("run with orphan took %v", elapsed)
	}
}

func TestRunTruncatesLargeOutput(t *testing.T) {
	e := testEngine(t, func(c *Config) {
		c.MaxOutputBytes = 1024
	})

	res := mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "i=0; while [ $i -lt 1000 ]; do echo 0123456789abcdef; i=$((i+1)); done",
	})

	if !res.Truncated {
		t.Fatal("Truncated = false for oversized output")
	}
	if len(res.Stdout) > 1024 {
		t.Fatalf("Stdout length = %d, want <= 1024", len(res.Stdout))
	}
}

func TestRunUnsandboxedWhenPolicyDisabled(t *testing.T) {
	e := testEngine(t, func(c *Config) {
		c.PolicyPath = writePolicy(t, &sandbox.Policy{Enabled: false})
	})
	res := mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "true",
	})

	if res.Sandboxed {
		t.Fatal("Sandboxed = true with sandboxing disabled by policy")
	}
	if res.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0", res.ExitCode)
	}
}

// staticBackend always reports available and builds a fixed invocation.
type staticBackend struct {
	inv *platform.Invocation
}

func (b *staticBackend) Name() string    { return "static" }
func (b *staticBackend) Available() bool { return true }

func (b *staticBackend) CheckDependencies() *platform.DependencyCheck {
	return &platform.DependencyCheck{}
}
func (b *staticBackend) Build(_, _ string, _ *sandbox.Policy) *platform.Invocation {
	return b.inv
}

func TestRunFallsBackWhenWrapperFailsToSpawn(t *testing.T) {
	e := testEngine(t, func(c *Config) {
		c.Backend = &staticBackend{inv: &platform.Invocation{
			Program: "/nonexistent/sandbox-wrapper",
			Args:    []string{"sh", "-c", "echo wrapped"},
		}}
	})

	res := mustRun(t, e, RunCommandArgs{
		WorkspaceRoot: t.TempDir(),
		Command:       "echo plain",
	})

	if res.Sandboxed {
		t.Fatal("Sandboxed = true after the wrapper failed to spawn")
	}
	if res.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Stdout != "plain\n" {
		t.Fatalf("Stdout = %q, want %q", res.Stdout, "plain\n")
	}
}

func TestEnginePolicyAppendsExtraAllowWrite(t *testing.T) {
	e := testEngine(t, func(c *Config) {
		c.ExtraAllowWrite = []string{"/tmp/scratch"}
	})

	for i := 0; i < 2; i++ {
		p := e.policy()
		n := 0
		for _, dir := range p.AllowWrite {
			if dir == "/tmp/scratch" {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("call %d: scratch dir appears %d times in AllowWrite %v", i, n, p.AllowWrite)
		}
	}
}

// writePolicy persists p to a throwaway file and returns its path.
func writePolicy(t *testing.T, p *sandbox.Policy) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.json")
	if err := sandbox.SaveTo(path, p); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	return path
}

func TestExitCode(t *testing.T) {
	if got := exitCode(nil, false); got != 0 {
		t.Fatalf("exitCode(nil, false) = %d, want 0", got)
	}
	if got := exitCode(nil, true); got != -1 {
		t.Fatalf("exitCode(nil, true) = %d, want -1", got)
	}
	if got := exitCode(errors.New("wait: no child processes"), false); got != -1 {
		t.Fatalf("exitCode(non-exit error, false) = %d, want -1", got)
	}
}
