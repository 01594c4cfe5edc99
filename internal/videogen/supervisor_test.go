package videogen

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSupervisorTracksTaskCompletion(t *testing.T) {
	sup := NewSupervisor(zerolog.New(io.Discard))

	ran := false
	done := sup.Go("test", func(ctx context.Context) {
		ran = true
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("task did not finish")
	}
	if !ran {
		t.Fatalf("task did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sup.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestSupervisorTaskOutlivesCallerContext(t *testing.T) {
	sup := NewSupervisor(zerolog.New(io.Discard))

	reqCtx, cancelReq := context.WithCancel(context.Background())
	cancelReq() // the originating request is already gone

	observed := make(chan error, 1)
	done := sup.Go("detached", func(ctx context.Context) {
		observed <- ctx.Err()
	})
	<-done

	if err := <-observed; err != nil {
		t.Fatalf("task context inherited request cancellation: %v", err)
	}
	_ = reqCtx
}

func TestSupervisorCancelStopsTasks(t *testing.T) {
	sup := NewSupervisor(zerolog.New(io.Discard))

	done := sup.Go("blocked", func(ctx context.Context) {
		<-ctx.Done()
	})

	sup.Cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("task did not stop after cancel")
	}
}

func TestSupervisorContainsPanics(t *testing.T) {
	sup := NewSupervisor(zerolog.New(io.Discard))

	done := sup.Go("panics", func(ctx context.Context) {
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("panicking task never reported done")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sup.Wait(ctx); err != nil {
		t.Fatalf("wait after panic: %v", err)
	}
}

func TestSupervisorWaitTimesOut(t *testing.T) {
	sup := NewSupervisor(zerolog.New(io.Discard))

	sup.Go("stuck", func(ctx context.Context) {
		<-ctx.Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sup.Wait(ctx); err == nil {
		t.Fatalf("expected wait to time out while task is running")
	}
	sup.Cancel()
}
