package videogen

import (
	"context"
	"sync"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
)

// Supervisor runs detached background tasks on a context decoupled from the
// request that spawned them, so a task keeps running after the response has
// been sent. Tasks are tracked: the owner can wait for all of them on
// shutdown and cancel the remainder when the grace period runs out.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger infra.Logger
}

func NewSupervisor(logger infra.Logger) *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{ctx: ctx, cancel: cancel, logger: logger}
}

// Go starts fn as a tracked background task. The returned channel closes when
// the task finishes, whatever the outcome. Panics are contained so one bad
// task cannot take the process down.
func (s *Supervisor) Go(name string, fn func(ctx context.Context)) <-chan struct{} {
	done := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Interface("panic", r).Str("task", name).Msg("supervisor: task panicked")
			}
		}()
		fn(s.ctx)
	}()
	return done
}

// Wait blocks until every tracked task has finished or ctx expires.
func (s *Supervisor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel signals every running task to stop.
func (s *Supervisor) Cancel() {
	s.cancel()
}
