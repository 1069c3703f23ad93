package async

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/utils/errutil"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

// Runner executes handlers in background goroutines and keeps track of them
// so that callers can wait for in-flight work on shutdown.
type Runner struct {
	wg sync.WaitGroup
}

var defaultRunner = &Runner{}

// Dispatch executes a handler function asynchronously with the default runner
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	defaultRunner.Dispatch(ctx, handler)
}

// Wait blocks until every handler started by Dispatch has returned
func Wait() {
	defaultRunner.Wait()
}

// Dispatch executes a handler function asynchronously in a new goroutine.
// The handler gets a background context carrying the caller's logger, so it
// outlives the request or scan cycle that triggered it.
func (r *Runner) Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if v := recover(); v != nil {
				errutil.Handle(bgCtx, goerr.New("panic in async handler", goerr.V("panic", v)), "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}

// Wait blocks until every handler dispatched by r has returned
func (r *Runner) Wait() {
	r.wg.Wait()
}
