package shellbox

// exitCodeSentinel is reported when the command did not exit normally
// (killed on timeout or cancellation).
const exitCodeSentinel = -1

// RunCommandArgs describes a single command invocation. The JSON tags are
// the wire form used by frontends and by the CLI.
type RunCommandArgs struct {
	// WorkspaceRoot is the directory the command is confined to. The
	// working directory must resolve inside it, and the sandbox grants
	// write access to it.
	WorkspaceRoot string `json:"workspaceRoot"`

	// Command is the shell command text, executed via sh -c.
	Command string `json:"command"`

	// Workdir is the working directory, relative to WorkspaceRoot or
	// absolute-but-inside-it. Empty means the workspace root itself.
	Workdir string `json:"workdir,omitempty"`

	// TimeoutMS is the wall-clock timeout in milliseconds. Zero or negative
	// means the engine default; values above the engine maximum are clamped.
	TimeoutMS int64 `json:"timeoutMs,omitempty"`

	// CancelToken is an opaque key under which a cancel token is registered
	// for the duration of this invocation, letting an independent
	// Engine.Cancel call terminate the command early. Empty disables
	// cancellation.
	CancelToken string `json:"cancelToken,omitempty"`
}

// RunCommandResult is the outcome of a command invocation. Non-zero exit
// codes, timeouts, and cancellations are all reported here rather than as
// errors. At most one of TimedOut and Cancelled is true.
type RunCommandResult struct {
	// Stdout is the captured standard output, best effort: output still
	// buffered in a pipe held open by an orphaned descendant past the drain
	// timeout is discarded.
	Stdout string `json:"stdout"`

	// Stderr is the captured standard error, with the same best-effort
	// semantics as Stdout.
	Stderr string `json:"stderr"`

	// ExitCode is the process exit code, or -1 when the command did not
	// exit normally (timeout, cancellation, or death by signal).
	ExitCode int `json:"exitCode"`

	// TimedOut reports that the command was killed when the timeout elapsed.
	TimedOut bool `json:"timedOut"`

	// Cancelled reports that the command was killed by a cancel request.
	Cancelled bool `json:"cancelled"`

	// Sandboxed reports whether the command actually ran inside the OS
	// sandbox wrapper. False means sandboxing was disabled by policy,
	// unsupported on this platform, or the wrapper failed to spawn and the
	// engine fell back to a plain shell.
	Sandboxed bool `json:"sandboxed"`

	// Truncated reports that stdout or stderr exceeded the configured
	// output limit and was cut off.
	Truncated bool `json:"truncated,omitempty"`
}
