package selection

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoOptions is returned when building a selector over an empty set.
var ErrNoOptions = errors.New("selector needs at least one option")

// Selector is a single-choice state machine over a fixed candidate set.
// Exactly one option is active at any instant; selecting the active
// option again is a no-op.
type Selector struct {
	mu       sync.RWMutex
	options  []string
	current  string
	observer func(previous, current string)
}

// NewSelector creates a selector with the first option active.
func NewSelector(options []string) (*Selector, error) {
	if len(options) == 0 {
		return nil, ErrNoOptions
	}

	owned := make([]string, len(options))
	copy(owned, options)
	return &Selector{
		options: owned,
		current: owned[0],
	}, nil
}

// SetObserver registers the callback fired on every effective transition.
func (s *Selector) SetObserver(observer func(previous, current string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

// Select activates value. Unknown values are rejected; re-selecting the
// active value returns nil without firing the observer.
func (s *Selector) Select(value string) error {
	s.mu.Lock()

	if !s.hasOption(value) {
		s.mu.Unlock()
		return fmt.Errorf("unknown option: %s", value)
	}
	if value == s.current {
		s.mu.Unlock()
		return nil
	}

	previous := s.current
	s.current = value
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(previous, value)
	}
	return nil
}

// Current returns the active option.
func (s *Selector) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Options returns the candidate set in declaration order.
func (s *Selector) Options() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.options))
	copy(out, s.options)
	return out
}

// hasOption reports membership; callers hold the lock.
func (s *Selector) hasOption(value string) bool {
	for _, option := range s.options {
		if option == value {
			return true
		}
	}
	return false
}
