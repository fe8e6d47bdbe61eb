package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Scope owns the background tasks launched on behalf of one login screen.
// Close cancels the scope's context and waits for every task to return;
// Go refuses new tasks once Close has started.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu     sync.Mutex
	closed bool
}

// NewScope creates a scope whose tasks run under a child of parent.
func NewScope(parent context.Context) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context returns the scope's context. It is done once Close is called.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Go runs fn in a new goroutine. It reports false if the scope is closed.
func (s *Scope) Go(fn func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.group.Go(func() error {
		fn(s.ctx)
		return nil
	})
	return true
}

// Wait blocks until every task launched so far has returned.
func (s *Scope) Wait() {
	_ = s.group.Wait()
}

// Close cancels the scope and waits for its tasks. Safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.Wait()
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
