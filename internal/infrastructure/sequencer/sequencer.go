// Package sequencer serializes in-process work on the same resource id.
//
// It narrows contention before the store-level conditional update; it is not
// what keeps stock correct across several API instances.
package sequencer

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

type Sequencer struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Sequencer {
	return &Sequencer{entries: make(map[string]*entry)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (s *Sequencer) Lock(key string) func() {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		s.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(s.entries, key)
		}
		s.mu.Unlock()
	}
}

// Do runs fn while holding key.
func (s *Sequencer) Do(key string, fn func() error) error {
	unlock := s.Lock(key)
	defer unlock()
	return fn()
}

func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
