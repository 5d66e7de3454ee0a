package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/fairlabor/pobot/errors"
	"github.com/fairlabor/pobot/message"
	"github.com/fairlabor/pobot/session"
)

// InMemoryStore implements session storage using in-memory storage.
// Suitable for tests and single-process deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewInMemoryStore creates a new in-memory session store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*session.Session),
	}
}

// Save saves a session to the store
func (s *InMemoryStore) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session record cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Load loads a session from the store
func (s *InMemoryStore) Load(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("session %s: %w", id, errors.ErrNotFound)
	}
	return sess.Clone(), nil
}

// Delete removes a session and all of its child records
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return fmt.Errorf("session %s: %w", id, errors.ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// List returns all session IDs in the store
func (s *InMemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// Count returns the number of sessions in the store
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// Exists checks if a session exists in the store
func (s *InMemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.sessions[id]
	return exists, nil
}

// AppendMessage adds a message to the session's ordered log
func (s *InMemoryStore) AppendMessage(ctx context.Context, sessionID string, msg *message.Message) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[sessionID]
	if !exists {
		return fmt.Errorf("session %s: %w", sessionID, errors.ErrNotFound)
	}
	sess.AppendMessage(message.Clone(msg))
	return nil
}

// AddBuyerCompany records a resolved buyer, deduplicated by name
func (s *InMemoryStore) AddBuyerCompany(ctx context.Context, sessionID, name string) error {
	if name == "" {
		return fmt.Errorf("buyer company name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[sessionID]
	if !exists {
		return fmt.Errorf("session %s: %w", sessionID, errors.ErrNotFound)
	}
	sess.AddBuyerCompany(name)
	return nil
}

// AddReport appends a violation report to the session
func (s *InMemoryStore) AddReport(ctx context.Context, sessionID string, report *session.ViolationReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[sessionID]
	if !exists {
		return fmt.Errorf("session %s: %w", sessionID, errors.ErrNotFound)
	}
	sess.AddReport(report.Clone())
	return nil
}

// Clear removes all sessions from the store
func (s *InMemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*session.Session)
	return nil
}
