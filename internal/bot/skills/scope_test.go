package skills

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestScope_RunsOneActionAtATime(t *testing.T) {
	var s Scope

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if s.Idle() {
		t.Fatalf("scope must report busy while an action runs")
	}
	if err := s.Run(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Run: got %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if !s.Idle() {
		t.Fatalf("scope must be idle after the action returns")
	}
}

func TestScope_InterruptCancelsInFlightAction(t *testing.T) {
	var s Scope

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background(), func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	}()
	<-started

	s.Interrupt()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("interrupt did not cancel the action")
	}
}

func TestScope_InterruptWhileIdleIsNoop(t *testing.T) {
	var s Scope
	s.Interrupt()
	if err := s.Run(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Run after idle interrupt: %v", err)
	}
}
