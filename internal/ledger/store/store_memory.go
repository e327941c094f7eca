package store

import (
	"context"
	"slices"
	"sync"

	"proofwall/internal/ledger/models"
	"proofwall/pkg/domain"
	"proofwall/pkg/platform/sentinel"
)

// InMemoryStore keeps grants in per-content slices.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[domain.ContentID][]models.Grant
	ids    map[domain.GrantID]struct{}
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		grants: make(map[domain.ContentID][]models.Grant),
		ids:    make(map[domain.GrantID]struct{}),
	}
}

func (s *InMemoryStore) Append(_ context.Context, grant *models.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[grant.ID]; ok {
		return sentinel.ErrConflict
	}
	s.ids[grant.ID] = struct{}{}
	s.grants[grant.ContentID] = append(s.grants[grant.ContentID], *grant)
	return nil
}

func (s *InMemoryStore) ListFor(_ context.Context, contentID domain.ContentID) ([]models.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grants := slices.Clone(s.grants[contentID])
	if grants == nil {
		grants = []models.Grant{}
	}
	return grants, nil
}
