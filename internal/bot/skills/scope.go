package skills

import (
	"context"
	"errors"
	"sync"
)

var ErrBusy = errors.New("scope busy")

// Scope runs one action at a time to completion or interruption. The
// in-flight action sees Interrupt as context cancellation. Busy doubles as
// the agent idle check for the goal manager.
type Scope struct {
	mu     sync.Mutex
	busy   bool
	cancel context.CancelFunc
}

func (s *Scope) Run(ctx context.Context, fn func(context.Context) error) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.busy = true
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()
	return fn(runCtx)
}

// Interrupt cancels the in-flight action, if any.
func (s *Scope) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Scope) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Idle satisfies the goal manager's agent facade.
func (s *Scope) Idle() bool { return !s.Busy() }
