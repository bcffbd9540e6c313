package session

import (
	"fmt"
	"sync"
)

// Persister keeps the credential across process restarts.
// Implemented by storage.Store.
type Persister interface {
	LoadCredential() (string, bool, error)
	SaveCredential(value string) error
	DeleteCredential() error
}

// Store holds the current bearer credential. Reads are served from memory,
// writes go through to the Persister before the in-memory value changes.
type Store struct {
	persister Persister

	mu    sync.RWMutex
	token string
	set   bool
}

// Open creates a Store primed with whatever the persister already holds.
func Open(p Persister) (*Store, error) {
	token, ok, err := p.LoadCredential()
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	return &Store{persister: p, token: token, set: ok && token != ""}, nil
}

// Token returns the current credential and whether one is present.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.set
}

// SetToken stores value as the current credential. An empty value is
// treated as a logout.
func (s *Store) SetToken(value string) error {
	if value == "" {
		return s.ClearToken()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.SaveCredential(value); err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	s.token = value
	s.set = true
	return nil
}

// ClearToken removes the credential.
func (s *Store) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The in-memory value is dropped even if the persister fails so the
	// running process never keeps using a revoked token.
	s.token = ""
	s.set = false
	if err := s.persister.DeleteCredential(); err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}

// MemoryPersister keeps the credential in process memory only.
type MemoryPersister struct {
	mu    sync.Mutex
	value string
	ok    bool
}

// NewMemoryPersister returns a MemoryPersister, optionally pre-seeded.
func NewMemoryPersister(initial string) *MemoryPersister {
	return &MemoryPersister{value: initial, ok: initial != ""}
}

func (m *MemoryPersister) LoadCredential() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.ok, nil
}

func (m *MemoryPersister) SaveCredential(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.ok = value, true
	return nil
}

func (m *MemoryPersister) DeleteCredential() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.ok = "", false
	return nil
}
