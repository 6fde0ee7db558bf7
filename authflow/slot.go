package authflow

import (
	"sync"

	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
)

// Status is the state of a Slot.
type Status int

const (
	Idle Status = iota
	AwaitingCallback
)

// Slot holds at most one outstanding request. Begin moves Idle to
// AwaitingCallback; Resolve and Abandon move it back. A second Begin while a
// request is outstanding is rejected rather than queued.
type Slot[T any] struct {
	mu      sync.Mutex
	pending *T
}

func (s *Slot[T]) Begin(p *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return sdkerrors.ErrRequestInProgress
	}
	s.pending = p
	return nil
}

// Resolve takes the outstanding request if match accepts it. Only one caller
// can ever take a given request.
func (s *Slot[T]) Resolve(match func(*T) bool) (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || !match(s.pending) {
		return nil, false
	}
	p := s.pending
	s.pending = nil
	return p, true
}

// Abandon clears p if it is still the outstanding request.
func (s *Slot[T]) Abandon(p *T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != p {
		return false
	}
	s.pending = nil
	return true
}

func (s *Slot[T]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return Idle
	}
	return AwaitingCallback
}

// Clear drops the outstanding request, if any, and returns it.
func (s *Slot[T]) Clear() (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pending
	s.pending = nil
	return p, p != nil
}
