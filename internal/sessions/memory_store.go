package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/thereayou/secure-profile/internal/models"
)

type memoryEntry struct {
	session   models.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Expired entries are dropped
// lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) live(id string) (memoryEntry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := e.session
	return &sess, nil
}

func (s *MemoryStore) Set(_ context.Context, id string, sess *models.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{session: *sess, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, id string, sess *models.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.live(id); !ok {
		return ErrSessionNotFound
	}
	s.entries[id] = memoryEntry{session: *sess, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return ErrSessionNotFound
	}
	e.expiresAt = s.now().Add(ttl)
	s.entries[id] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}
