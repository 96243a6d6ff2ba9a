package httpapi

import (
	"context"
)

// serverBaseCtx is a process-level context that shutdown cancels so
// in-flight generations stop with the listener. Defaults to Background.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context derived from the request context that is
// additionally canceled when base ends. Request values and deadlines are
// preserved. The returned cancel func must be called when the handler ends.
func joinContexts(req, base context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req)
	stop := context.AfterFunc(base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
