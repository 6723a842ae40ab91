package project

import (
	"context"
	"encoding/json"
	"sync"
)

// Store is the persistence contract for project documents. Every write is
// a full-document replace.
type Store interface {
	Get(ctx context.Context, projectID string) (*Content, error)
	Put(ctx context.Context, projectID string, content *Content) error
}

// MemStore keeps documents in memory. It backs tests and database-less
// development runs.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string][]byte)}
}

func (s *MemStore) Get(ctx context.Context, projectID string) (*Content, error) {
	s.mu.RLock()
	raw, ok := s.docs[projectID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var content Content
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (s *MemStore) Put(ctx context.Context, projectID string, content *Content) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[projectID] = raw
	s.mu.Unlock()
	return nil
}

// Seed stores a raw document, bypassing the Content round-trip.
func (s *MemStore) Seed(projectID string, raw []byte) {
	s.mu.Lock()
	s.docs[projectID] = append([]byte(nil), raw...)
	s.mu.Unlock()
}

var _ Store = (*MemStore)(nil)
