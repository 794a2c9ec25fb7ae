package inmemory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veritas-health/medresearch/internal/session"
	"github.com/veritas-health/medresearch/models"
)

type Store struct {
	sessions map[string]*Session
	ttl      time.Duration
	mu       sync.RWMutex
}

func NewInMemorySessionStore(ttl time.Duration) session.Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{sessions: make(map[string]*Session), ttl: ttl}
}

func (store *Store) Ensure(id string) (session.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.evictExpired()
	if id != "" {
		if sess, ok := store.sessions[id]; ok {
			sess.touch(store.ttl)
			return sess, nil
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	sess := &Session{id: id, expiresAt: time.Now().Add(store.ttl)}
	store.sessions[id] = sess
	return sess, nil
}

func (store *Store) Get(id string) (session.Session, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	sess, ok := store.sessions[id]
	if !ok || sess.expired() {
		return nil, nil
	}
	return sess, nil
}

// evictExpired runs under the store lock.
func (store *Store) evictExpired() {
	for id, sess := range store.sessions {
		if sess.expired() {
			delete(store.sessions, id)
		}
	}
}

type Session struct {
	id        string
	expiresAt time.Time
	history   []models.Exchange
	mu        sync.RWMutex
}

func (s *Session) ID() string { return s.id }

func (s *Session) Append(exchange models.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, exchange)
	return nil
}

func (s *Session) History() ([]models.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Exchange, len(s.history))
	copy(out, s.history)
	return out, nil
}

func (s *Session) expired() bool { return time.Now().After(s.expiresAt) }

func (s *Session) touch(ttl time.Duration) { s.expiresAt = time.Now().Add(ttl) }
