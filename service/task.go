package service

import (
	"context"
	"fmt"

	"github.com/plumstack/ostack-console/infra"
)

// TaskRunner schedules detached background work. The triggering request
// never waits on it and never sees its failures.
type TaskRunner interface {
	Run(name string, fn func(ctx context.Context))
}

// GoTaskRunner runs each task on its own goroutine. Panics are recovered and
// logged so a broken poller cannot take the process down.
type GoTaskRunner struct {
	Logger *infra.LoggerClient
}

func (r *GoTaskRunner) Run(name string, fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.Logger.ErrorWithContextf(context.Background(),
					fmt.Errorf("%v", rec), "task %s panicked", name)
			}
		}()
		fn(context.Background())
	}()
}

// SyncTaskRunner runs tasks inline on the calling goroutine. Test use only.
type SyncTaskRunner struct{}

func (r *SyncTaskRunner) Run(name string, fn func(ctx context.Context)) {
	fn(context.Background())
}
