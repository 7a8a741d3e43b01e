/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package params

import "sync"

// Store guards a live parameter value. Readers get a copy, so a snapshot
// taken by Load is never changed by a later Update.
type Store[T any] struct {
	mu  sync.Mutex
	cur T
}

// NewStore returns a store holding initial.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{cur: initial}
}

// Load returns a copy of the current value.
func (s *Store[T]) Load() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Update runs fn on the live value under the lock.
func (s *Store[T]) Update(fn func(cur *T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cur)
}

// With runs fn on the live value under the lock and returns its result.
// It lets callers derive cached state from the value atomically.
func With[T, R any](s *Store[T], fn func(cur *T) R) R {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.cur)
}
