package shellbox

import (
	"sync"
	"sync/atomic"
)

// CancelToken is a one-way flag shared between a running command and the
// code that may want to stop it. Once cancelled it stays cancelled.
type CancelToken struct {
	flag atomic.Bool
}

// NewCancelToken returns a token in the not-cancelled state.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel sets the flag. Safe to call multiple times and from any goroutine.
func (t *CancelToken) Cancel() {
	t.flag.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool {
	return t.flag.Load()
}

// CancelRegistry maps opaque string keys to cancel tokens so that a cancel
// request arriving on a separate code path (a CLI signal handler, an RPC)
// can reach the execution loop watching the token.
//
// The registry imposes no lifecycle beyond Register/Remove: callers register
// a token before starting a command and remove it when the command finishes,
// regardless of outcome.
type CancelRegistry struct {
	mu     sync.Mutex
	tokens map[string]*CancelToken
}

// NewCancelRegistry returns an empty registry.
func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{tokens: make(map[string]*CancelToken)}
}

// Register creates a fresh token under key and returns it. Registering a key
// that is already present replaces the previous token; the old token is
// orphaned, not cancelled.
func (r *CancelRegistry) Register(key string) *CancelToken {
	t := NewCancelToken()
	r.mu.Lock()
	r.tokens[key] = t
	r.mu.Unlock()
	return t
}

// Cancel flags the token registered under key and reports whether such a
// token existed. Cancelling an unknown key is not an error.
func (r *CancelRegistry) Cancel(key string) bool {
	r.mu.Lock()
	t, ok := r.tokens[key]
	r.mu.Unlock()
	if ok {
		t.Cancel()
	}
	return ok
}

// Remove drops the token registered under key, if any. The token itself is
// unaffected, so a goroutine still holding it observes its final state.
func (r *CancelRegistry) Remove(key string) {
	r.mu.Lock()
	delete(r.tokens, key)
	r.mu.Unlock()
}

// Len reports the number of registered tokens.
func (r *CancelRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
