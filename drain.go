package shellbox

import (
	"bytes"
	"io"
	"os"
	"time"
)

// limitedWriter wraps a bytes.Buffer and stops writing after limit bytes.
// overflow records whether any byte was actually discarded; output that
// exactly fills the limit is not an overflow.
type limitedWriter struct {
	buf      *bytes.Buffer
	limit    int
	overflow bool
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		w.overflow = true
		return len(p), nil // discard but report success
	}
	if len(p) <= remaining {
		return w.buf.Write(p)
	}
	// Write only what fits, but report full length to avoid io.ErrShortWrite.
	w.overflow = true
	_, err := w.buf.Write(p[:remaining])
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// pipeReader owns one end of an output pipe and the goroutine copying it
// into a bounded buffer.
type pipeReader struct {
	r    *os.File
	buf  bytes.Buffer
	lw   *limitedWriter // nil when unlimited
	done chan struct{}
}

// startPipeReader begins copying r into an in-memory buffer capped at
// maxBytes (0 means unlimited). The copy runs until the pipe reaches EOF or
// r is closed out from under it.
func startPipeReader(r *os.File, maxBytes int) *pipeReader {
	p := &pipeReader{r: r, done: make(chan struct{})}
	var w io.Writer = &p.buf
	if maxBytes > 0 {
		p.lw = &limitedWriter{buf: &p.buf, limit: maxBytes}
		w = p.lw
	}
	go func() {
		defer close(p.done)
		// Errors here (including ErrClosed after a forced close) just end
		// the copy; whatever was buffered so far is the result.
		_, _ = io.Copy(w, r)
	}()
	return p
}

// wait blocks until the copy goroutine finishes or timeout elapses, then
// returns the captured output. On timeout the pipe is force-closed, which
// unblocks the pending read; output an orphaned descendant might still
// produce is discarded. wait always closes the read end before returning.
func (p *pipeReader) wait(timeout time.Duration) string {
	select {
	case <-p.done:
	case <-time.After(timeout):
		// An orphan inherited the write end and is keeping the pipe open.
		// Closing the read end makes the blocked io.Copy return.
		_ = p.r.Close()
		<-p.done
	}
	_ = p.r.Close()
	return p.buf.String()
}

// truncated reports whether any output was actually discarded. Only valid
// after wait has returned.
func (p *pipeReader) truncated() bool {
	return p.lw != nil && p.lw.overflow
}
