package store

import (
	"context"
	"encoding/json"
	"time"

	"proofwall/internal/content/models"
	"proofwall/pkg/domain"
)

// Error contract shared by every backend:
//   - Create returns sentinel.ErrConflict when the id is taken
//   - FindByID and MarkVerified return sentinel.ErrNotFound for unknown ids
//   - MarkVerified returns sentinel.ErrInvalidState when the record is already verified
//
// Returned records are copies; callers may not mutate stored state through them.
type Store interface {
	Create(ctx context.Context, record *models.Record) error
	FindByID(ctx context.Context, id domain.ContentID) (*models.Record, error)
	MarkVerified(ctx context.Context, id domain.ContentID, result json.RawMessage, at time.Time) (*models.Record, error)
}
