package memory

import (
	"context"
	"sync"
	"time"

	"gitquiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore. A single
// mutex makes create-or-return atomic per identity, mirroring the guarded
// insert the Postgres store relies on.
type SessionStore struct {
	mu             sync.RWMutex
	sessions       map[string]domain.Session
	openByIdentity map[string]string // identity -> open session id
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:       make(map[string]domain.Session),
		openByIdentity: make(map[string]string),
	}
}

func (s *SessionStore) GetOrCreate(_ context.Context, candidate domain.Session) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.openByIdentity[candidate.Identity]; ok {
		return s.sessions[id], nil
	}
	// The finished check lives inside the critical section so a finish
	// committing after the caller's policy check cannot reopen the identity.
	for _, session := range s.sessions {
		if session.Identity == candidate.Identity && session.Finished() {
			return domain.Session{}, domain.ErrAlreadyCompleted
		}
	}
	s.sessions[candidate.ID] = candidate
	s.openByIdentity[candidate.Identity] = candidate.ID
	return candidate, nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) HasFinished(_ context.Context, identity string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.Identity == identity && session.Finished() {
			return true, nil
		}
	}
	return false, nil
}

func (s *SessionStore) Finish(_ context.Context, id string, finishedAt time.Time, totalElapsed time.Duration, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if session.Finished() {
		return domain.ErrSessionFinished
	}
	session.FinishedAt = &finishedAt
	session.TotalElapsed = totalElapsed
	session.Score = score
	s.sessions[id] = session
	delete(s.openByIdentity, session.Identity)
	return nil
}

func (s *SessionStore) ListFinished(_ context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	finished := make([]domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if session.Finished() {
			finished = append(finished, session)
		}
	}
	return finished, nil
}
