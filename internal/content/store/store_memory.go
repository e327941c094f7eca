package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"proofwall/internal/content/models"
	"proofwall/pkg/domain"
	"proofwall/pkg/platform/sentinel"
)

// InMemoryStore keeps content records in a map for tests and single-node dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.ContentID]*models.Record
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[domain.ContentID]*models.Record)}
}

func (s *InMemoryStore) Create(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; ok {
		return sentinel.ErrConflict
	}
	s.records[record.ID] = clone(record)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.ContentID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(record), nil
}

func (s *InMemoryStore) MarkVerified(_ context.Context, id domain.ContentID, result json.RawMessage, at time.Time) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !record.MarkVerified(slices.Clone(result), at) {
		return nil, sentinel.ErrInvalidState
	}
	return clone(record), nil
}

func clone(r *models.Record) *models.Record {
	c := *r
	c.VerifierResult = slices.Clone(r.VerifierResult)
	if r.VerifiedAt != nil {
		at := *r.VerifiedAt
		c.VerifiedAt = &at
	}
	return &c
}
