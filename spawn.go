package shellbox

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/shellbox-dev/shellbox/internal/envutil"
	"github.com/shellbox-dev/shellbox/platform"
)

// child is a started command together with the pipe readers capturing its
// output and the channel its Wait result arrives on.
type child struct {
	cmd       *exec.Cmd
	stdout    *pipeReader
	stderr    *pipeReader
	sandboxed bool

	// waitCh receives the single cmd.Wait result. Buffered so the waiter
	// goroutine never blocks; the execution loop polls it with a
	// non-blocking receive.
	waitCh chan error
}

// startChild spawns the given invocation (or a plain `shell -c command` when
// inv is nil) in dir, in its own session, with stdout and stderr wired to
// engine-owned pipes. The returned child has already started; the caller is
// responsible for reaping it.
func (e *Engine) startChild(inv *platform.Invocation, command, dir string, sandboxed bool) (*child, error) {
	var cmd *exec.Cmd
	if inv != nil {
		cmd = exec.Command(inv.Program, inv.Args...)
	} else {
		cmd = exec.Command(e.cfg.Shell, "-c", command)
	}
	cmd.Dir = dir
	cmd.Env = childEnv(os.Environ(), sandboxed)

	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrSpawn, err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, fmt.Errorf("%w: stderr pipe: %v", ErrSpawn, err)
	}
	cmd.Stdout = outW
	cmd.Stderr = errW

	setupProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		outR.Close()
		outW.Close()
		errR.Close()
		errW.Close()
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	// The child holds its own copies of the write ends; closing ours lets
	// the readers see EOF once every writer in the tree is gone.
	outW.Close()
	errW.Close()

	c := &child{
		cmd:       cmd,
		stdout:    startPipeReader(outR, e.cfg.MaxOutputBytes),
		stderr:    startPipeReader(errR, e.cfg.MaxOutputBytes),
		sandboxed: sandboxed,
		waitCh:    make(chan error, 1),
	}
	go func() {
		c.waitCh <- cmd.Wait()
	}()
	return c, nil
}

// childEnv derives the child environment from base. PATH gains the user's
// ~/.local/bin. Under the macOS sandbox wrapper, DYLD_ and LD_ injection
// variables are stripped so they cannot subvert the wrapper binary itself.
func childEnv(base []string, sandboxed bool) []string {
	env := base
	for _, kv := range env {
		if len(kv) >= 5 && kv[:5] == "PATH=" {
			env = envutil.SetEnv(env, "PATH", envutil.PathWithUserDirs(kv[5:]))
			break
		}
	}
	if sandboxed {
		env = envutil.RemoveEnvPrefix(env, "DYLD_")
		env = envutil.RemoveEnvPrefix(env, "LD_")
	}
	return env
}
