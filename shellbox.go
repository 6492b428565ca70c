package shellbox

import "context"

// Run executes a single command with the default configuration. Callers that
// run more than one command, or need cancellation across goroutines, should
// create an Engine and reuse it.
func Run(ctx context.Context, args RunCommandArgs) (*RunCommandResult, error) {
	e, err := NewEngine(nil)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, args)
}
