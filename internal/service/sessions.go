package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/dialogue"
)

// ErrUnknownConversation is returned for conversation IDs with no session.
var ErrUnknownConversation = errors.New("unknown conversation")

// session is one conversation's state plus the lock serializing its turns
type session struct {
	mu       sync.Mutex
	state    *dialogue.State
	lastSeen time.Time
}

// SessionStore keeps dialogue states in memory, keyed by conversation ID
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	machine  *dialogue.Machine
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store whose idle sessions expire after ttl.
// A zero ttl keeps sessions forever.
func NewSessionStore(machine *dialogue.Machine, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		machine:  machine,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create opens a new conversation and returns its ID.
func (s *SessionStore) Create() string {
	id := uuid.NewString()
	s.getOrCreate(id)
	return id
}

// getOrCreate returns the session for id, starting one if needed.
func (s *SessionStore) getOrCreate(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{state: s.machine.NewState(id)}
		s.sessions[id] = sess
	}
	sess.lastSeen = s.now()
	return sess
}

// get returns the session for id.
func (s *SessionStore) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if ok {
		sess.lastSeen = s.now()
	}
	return sess, ok
}

// Sweep removes sessions idle for longer than the ttl and returns how many
// were removed.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
