package service

import (
	"context"
	"errors"
	"log/slog"

	"proofwall/internal/ledger/metrics"
	"proofwall/internal/ledger/models"
	"proofwall/pkg/domain"
	dErrors "proofwall/pkg/domain-errors"
	"proofwall/pkg/platform/sentinel"
	"proofwall/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Publisher

// Store is the append-only grant log. See store.Store.
type Store interface {
	Append(ctx context.Context, grant *models.Grant) error
	ListFor(ctx context.Context, contentID domain.ContentID) ([]models.Grant, error)
}

// Publisher receives every grant after it is durably appended. Implementations must not block.
type Publisher interface {
	Publish(ctx context.Context, grant models.Grant)
}

// Service is the audit ledger.
type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records a grant. The ledger write is the commit point; fan-out happens after.
func (s *Service) Append(ctx context.Context, grant *models.Grant) error {
	if grant == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "grant is required")
	}
	if err := s.store.Append(ctx, grant); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "grant already recorded")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append grant")
	}

	s.metrics.IncAppended(grant.Tier)
	s.logger.InfoContext(ctx, "access granted",
		"grant_id", grant.ID.String(),
		"content_id", grant.ContentID.String(),
		"tier", grant.Tier,
		"price", grant.Price,
		"method", grant.Method,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.publisher != nil {
		s.publisher.Publish(ctx, *grant)
	}
	return nil
}

// ListFor returns every grant for contentID, oldest first.
func (s *Service) ListFor(ctx context.Context, contentID domain.ContentID) ([]models.Grant, error) {
	grants, err := s.store.ListFor(ctx, contentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grants")
	}
	return grants, nil
}
