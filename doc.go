// Package shellbox executes shell commands inside an OS-enforced sandbox
// with wall-clock timeouts, asynchronous cancellation, and reliable process
// reaping.
//
// Commands run under macOS Seatbelt (sandbox-exec) or Linux bubblewrap
// (bwrap) according to a per-user JSON policy; when no wrapper is available
// the engine transparently falls back to a plain shell and reports
// Sandboxed=false on the result. Every command starts in its own process
// group so that timeout and cancellation kill the command's descendants,
// not just the immediate child, and output pipes are drained with a bounded
// timeout so an orphaned grandchild holding a pipe open can never hang the
// caller.
//
// Basic usage:
//
//	engine, err := shellbox.NewEngine(shellbox.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.Run(ctx, shellbox.RunCommandArgs{
//	    WorkspaceRoot: "/path/to/workspace",
//	    Command:       "make test",
//	})
//
// Non-zero exit codes, timeouts, and cancellations are reported as fields
// on RunCommandResult, never as errors: callers need stdout, stderr, and
// the exit code even when the command failed.
package shellbox
