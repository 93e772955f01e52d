package conversation

import "sync"

// Store keeps the active sessions keyed by user. Implementations must be safe
// for concurrent use across users; the turns of a single user arrive one at a
// time.
type Store interface {
	Get(userID int64) (*Session, bool)
	Put(session *Session)
	Clear(userID int64)
}

type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: map[int64]*Session{}}
}

func (s *InMemoryStore) Get(userID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

func (s *InMemoryStore) Put(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = session
}

func (s *InMemoryStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
