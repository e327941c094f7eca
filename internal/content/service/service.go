package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"proofwall/internal/content/metrics"
	"proofwall/internal/content/models"
	"proofwall/internal/content/prover"
	"proofwall/pkg/domain"
	dErrors "proofwall/pkg/domain-errors"
	"proofwall/pkg/platform/sentinel"
	"proofwall/pkg/platform/sync"
	"proofwall/pkg/platform/tracing"
	"proofwall/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Prover

// Store persists content records. See store.Store for the error contract.
type Store interface {
	Create(ctx context.Context, record *models.Record) error
	FindByID(ctx context.Context, id domain.ContentID) (*models.Record, error)
	MarkVerified(ctx context.Context, id domain.ContentID, result json.RawMessage, at time.Time) (*models.Record, error)
}

// Prover waits for an external proof job to finish.
type Prover interface {
	Wait(ctx context.Context, jobID string) (*prover.Result, error)
}

const defaultProofTimeout = 60 * time.Second

// Service is the content registry.
type Service struct {
	store        Store
	prover       Prover
	locks        *sync.KeyedMutex
	proofTimeout time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       *tracing.Tracer
}

type Option func(*Service)

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

// WithProofTimeout bounds the wait used by Upload. Non-positive keeps 60s.
func WithProofTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.proofTimeout = d
		}
	}
}

func NewService(store Store, prover Prover, opts ...Option) *Service {
	s := &Service{
		store:        store,
		prover:       prover,
		locks:        sync.NewKeyedMutex(0),
		proofTimeout: defaultProofTimeout,
		logger:       slog.Default(),
		tracer:       tracing.New("content"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register stores a new unverified record and returns its id.
func (s *Service) Register(ctx context.Context, reference, contentHash, proofJobID string) (domain.ContentID, error) {
	record, err := models.NewRecord(reference, contentHash, proofJobID, requestcontext.Now(ctx))
	if err != nil {
		return domain.ContentID{}, err
	}
	if err := s.store.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return domain.ContentID{}, dErrors.Wrap(err, dErrors.CodeConflict, "content id already registered")
		}
		return domain.ContentID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store content")
	}
	s.metrics.IncRegistered()
	s.logger.InfoContext(ctx, "content registered",
		"content_id", record.ID.String(),
		"proof_job_id", proofJobID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return record.ID, nil
}

// Get returns the record for id.
func (s *Service) Get(ctx context.Context, id domain.ContentID) (*models.Record, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "content not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load content")
	}
	return record, nil
}

// Upload registers content and waits for its proof with the configured timeout.
func (s *Service) Upload(ctx context.Context, reference, contentHash, proofJobID string) (*models.Record, error) {
	id, err := s.Register(ctx, reference, contentHash, proofJobID)
	if err != nil {
		return nil, err
	}
	return s.AwaitVerification(ctx, id, s.proofTimeout)
}

// AwaitVerification waits for the record's proof job and verifies the record when the
// prover's digest matches. The wait ignores caller cancellation and ends only when the
// prover answers or timeout elapses. Failed or mismatched proofs leave the record unverified.
func (s *Service) AwaitVerification(ctx context.Context, id domain.ContentID, timeout time.Duration) (record *models.Record, err error) {
	ctx, span := s.tracer.Start(ctx, "content.AwaitVerification", attribute.String("content_id", id.String()))
	defer func() { tracing.End(span, err) }()

	record, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Verified {
		return record, nil
	}
	if timeout <= 0 {
		timeout = s.proofTimeout
	}

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	start := time.Now()
	result, err := s.prover.Wait(waitCtx, record.ProofJobID)
	waited := time.Since(start)
	if err != nil {
		return nil, s.waitFailed(ctx, record, waitCtx.Err() != nil, err, waited)
	}
	span.SetAttributes(attribute.String("proof_status", string(result.Status)))

	if result.Status != prover.StatusCompleted {
		s.observe(ctx, record, "failed", waited, "status", result.Status)
		return nil, dErrors.New(dErrors.CodeProofFailed, string(result.Status))
	}

	digest, err := result.Digest()
	if err != nil || !record.DigestMatches(digest) {
		s.observe(ctx, record, "mismatch", waited, "digest", digest)
		return nil, dErrors.New(dErrors.CodeHashMismatch, "proof journal digest does not match contentHash")
	}

	verified, err := s.markVerified(ctx, record.ID, resultPayload(result))
	if err != nil {
		return nil, err
	}
	s.observe(ctx, record, "verified", waited)
	return verified, nil
}

func (s *Service) markVerified(ctx context.Context, id domain.ContentID, payload json.RawMessage) (*models.Record, error) {
	var verified *models.Record
	err := s.locks.WithLock(id.String(), func() error {
		var err error
		verified, err = s.store.MarkVerified(ctx, id, payload, requestcontext.Now(ctx))
		return err
	})
	switch {
	case err == nil:
		return verified, nil
	case errors.Is(err, sentinel.ErrInvalidState):
		// another upload flow verified it first
		return s.Get(ctx, id)
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "content not found")
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark content verified")
	}
}

func (s *Service) waitFailed(ctx context.Context, record *models.Record, expired bool, err error, waited time.Duration) error {
	switch {
	case expired || errors.Is(err, context.DeadlineExceeded):
		s.observe(ctx, record, "timeout", waited)
		return dErrors.New(dErrors.CodeProofTimeout, "timeout")
	case errors.Is(err, sentinel.ErrNotFound):
		s.observe(ctx, record, "failed", waited, "error", err)
		return dErrors.New(dErrors.CodeProofFailed, "unknown proof job")
	default:
		s.observe(ctx, record, "error", waited, "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "prover unavailable")
	}
}

func (s *Service) observe(ctx context.Context, record *models.Record, outcome string, waited time.Duration, attrs ...any) {
	s.metrics.ObserveVerification(outcome, waited)
	args := append([]any{
		"content_id", record.ID.String(),
		"proof_job_id", record.ProofJobID,
		"outcome", outcome,
		"waited", waited,
		"request_id", requestcontext.RequestID(ctx),
	}, attrs...)
	if outcome == "verified" {
		s.logger.InfoContext(ctx, "content verified", args...)
		return
	}
	s.logger.WarnContext(ctx, "content verification failed", args...)
}

// resultPayload prefers the prover's raw response so the stored result is what the prover said.
func resultPayload(r *prover.Result) json.RawMessage {
	if len(r.Raw) > 0 && json.Valid(r.Raw) {
		return r.Raw
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	return payload
}
