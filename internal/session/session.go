// Package session persists anonymous visitor state between requests.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrNotFound is returned by a Store when no session exists for an ID.
var ErrNotFound = errors.New("session not found")

// Session is one visitor's state. It is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	id       string
	values   map[string][]uint
	modified bool
}

// New returns an empty session with the given ID.
func New(id string) *Session {
	return &Session{id: id, values: make(map[string][]uint)}
}

// ID returns the session identifier stored in the visitor's cookie.
func (s *Session) ID() string { return s.id }

// Get returns a copy of the IDs stored under key.
func (s *Session) Get(key string) ([]uint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return slices.Clone(v), ok
}

// Set replaces the IDs stored under key and marks the session modified.
func (s *Session) Set(key string, ids []uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = slices.Clone(ids)
	s.modified = true
}

// Modified reports whether Set was called since the session was loaded.
func (s *Session) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

func (s *Session) snapshot() map[string][]uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]uint, len(s.values))
	for k, v := range s.values {
		out[k] = slices.Clone(v)
	}
	return out
}

func (s *Session) markSaved() {
	s.mu.Lock()
	s.modified = false
	s.mu.Unlock()
}

// Store loads and saves sessions.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}
