package twofa

import (
	"sync"
	"time"

	"web-gateway/internal/domain"
)

// storeEntry wraps a pending two-factor session with its deadline.
type storeEntry struct {
	session   domain.TwoFactorSession
	expiresAt time.Time
}

// Store tracks login attempts awaiting their second factor, keyed by the
// backend-issued session id. Entries are transient and expire after the
// configured TTL. Implements domain.TwoFactorSessions.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*storeEntry
	ttl     time.Duration
}

// NewStore creates a pending-session store with the specified TTL.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		entries: make(map[string]*storeEntry),
		ttl:     ttl,
	}
	go s.cleanupLoop()
	return s
}

// Put records a pending two-factor session.
func (s *Store) Put(session domain.TwoFactorSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[session.ID] = &storeEntry{
		session:   session,
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Get retrieves a pending session by id.
func (s *Store) Get(id string) (*domain.TwoFactorSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := s.entries[id]
	if !found || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return &entry.session, true
}

// Delete destroys a pending session (on completion or logout).
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
}

// cleanup removes expired entries.
func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// cleanupLoop runs periodic cleanup of expired entries.
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanup()
	}
}
