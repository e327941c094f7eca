package store

import (
	"context"

	"proofwall/internal/ledger/models"
	"proofwall/pkg/domain"
)

// Store is an append-only grant log. ListFor returns grants oldest first and an
// empty slice when a content id has none. Append returns sentinel.ErrConflict when
// the grant id already exists.
type Store interface {
	Append(ctx context.Context, grant *models.Grant) error
	ListFor(ctx context.Context, contentID domain.ContentID) ([]models.Grant, error)
}
