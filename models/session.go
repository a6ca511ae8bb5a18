// Package models holds the server-side state attached to connected viewers.
package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one connected viewer. The covering engine itself is stateless;
// the session only tracks per-viewer bookkeeping used for logs and metrics.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mutex      sync.Mutex
	projection string
	lastSeq    uint64
	frames     uint64
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
	}
}

// TouchFrame records a handled viewport frame and its sequence number.
func (s *Session) TouchFrame(seq uint64, projection string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.lastSeq = seq
	s.projection = projection
	s.frames++
}

func (s *Session) LastSeq() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.lastSeq
}

func (s *Session) Frames() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.frames
}

func (s *Session) Projection() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.projection
}

// SessionStore indexes the live viewer sessions.
type SessionStore struct {
	mutex    sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func (s *SessionStore) Add(session *Session) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.sessions == nil {
		s.sessions = make(map[uuid.UUID]*Session)
	}
	s.sessions[session.ID] = session
}

func (s *SessionStore) Remove(id uuid.UUID) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.sessions, id)
}

func (s *SessionStore) Get(id uuid.UUID) (*Session, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.sessions)
}
