package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stellarlinkco/lorewright/internal/card"
)

var ErrNotFound = errors.New("session not found")

// Store is the persistence collaborator. The loop calls it at session start,
// after every step, and on terminal transitions.
type Store interface {
	CreateSession(ctx context.Context, title string) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context) ([]*Session, error)
	AddMessage(ctx context.Context, id string, msg Message) error
	AddStep(ctx context.Context, id string, step Step) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdateOutput(ctx context.Context, id string, out *card.GenerationOutput) error
	UpdateIterations(ctx context.Context, id string, n int) error
	GetHistory(ctx context.Context, id string) ([]Message, error)
	ClearCurrentSteps(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory. Used by tests and ephemeral
// runs; the sqlite store is the durable implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) CreateSession(_ context.Context, title string) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    StatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) ListSessions(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) AddMessage(_ context.Context, id string, msg Message) error {
	return s.mutate(id, func(sess *Session) {
		sess.Messages = append(sess.Messages, msg)
	})
}

func (s *MemoryStore) AddStep(_ context.Context, id string, step Step) error {
	return s.mutate(id, func(sess *Session) {
		sess.Steps = append(sess.Steps, step)
	})
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, status Status) error {
	return s.mutate(id, func(sess *Session) {
		sess.Status = status
	})
}

func (s *MemoryStore) UpdateOutput(_ context.Context, id string, out *card.GenerationOutput) error {
	return s.mutate(id, func(sess *Session) {
		sess.Output = out.Clone()
	})
}

func (s *MemoryStore) UpdateIterations(_ context.Context, id string, n int) error {
	return s.mutate(id, func(sess *Session) {
		sess.Iterations = n
	})
}

func (s *MemoryStore) GetHistory(_ context.Context, id string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]Message(nil), sess.Messages...), nil
}

func (s *MemoryStore) ClearCurrentSteps(_ context.Context, id string) error {
	return s.mutate(id, func(sess *Session) {
		sess.Steps = nil
	})
}

func (s *MemoryStore) mutate(id string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	fn(sess)
	sess.UpdatedAt = time.Now()
	return nil
}
