package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"proofwall/internal/access/metrics"
	"proofwall/internal/access/models"
	contentmodels "proofwall/internal/content/models"
	"proofwall/internal/identity"
	ledgermodels "proofwall/internal/ledger/models"
	"proofwall/internal/pricing"
	"proofwall/internal/settlement"
	"proofwall/pkg/domain"
	dErrors "proofwall/pkg/domain-errors"
	"proofwall/pkg/platform/tracing"
	"proofwall/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Registry,IdentityVerifier,Ledger

// Registry looks up content records. Errors are domain errors.
type Registry interface {
	Get(ctx context.Context, id domain.ContentID) (*contentmodels.Record, error)
}

// IdentityVerifier resolves an assertion to a role. It never fails hard.
type IdentityVerifier interface {
	Verify(ctx context.Context, a *identity.Assertion) identity.Resolved
}

// Ledger records and lists access grants. Errors are domain errors.
type Ledger interface {
	Append(ctx context.Context, grant *ledgermodels.Grant) error
	ListFor(ctx context.Context, contentID domain.ContentID) ([]ledgermodels.Grant, error)
}

const (
	identityAbsent     = "absent"
	identityRejected   = "rejected"
	identityUntrusted  = "untrusted_issuer"
	identityResolved   = "resolved"
	messagePublic      = "no discount applicable, public price"
	messageUnverified  = "identity could not be verified, public price"
	messageDiscount    = " role detected, discounted price applies"
)

// Service is the access gateway. It challenges every request for verified content and
// delivers only after a settled payment.
type Service struct {
	registry Registry
	verifier IdentityVerifier
	ledger   Ledger
	tiers    *pricing.Resolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   *tracing.Tracer
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

func NewService(registry Registry, verifier IdentityVerifier, ledger Ledger, tiers *pricing.Resolver, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		verifier: verifier,
		ledger:   ledger,
		tiers:    tiers,
		logger:   slog.Default(),
		tracer:   tracing.New("access"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestAccess answers an access request with a payment challenge. Identity failures
// degrade to the public tier; only lookup failures are errors.
func (s *Service) RequestAccess(ctx context.Context, id domain.ContentID, a *identity.Assertion) (challenge *models.Challenge, err error) {
	ctx, span := s.tracer.Start(ctx, "access.RequestAccess", attribute.String("content_id", id.String()))
	defer func() { tracing.End(span, err) }()

	if _, err := s.verifiedRecord(ctx, id); err != nil {
		return nil, err
	}

	if a == nil {
		return s.challenge(ctx, id, s.tiers.Public(), identityAbsent, models.Challenge{
			Error:   models.ErrorPaymentRequired,
			Message: messagePublic,
		}), nil
	}

	res := s.verifier.Verify(ctx, a)
	switch {
	case !res.OK:
		return s.challenge(ctx, id, s.tiers.Public(), identityRejected, models.Challenge{
			Error:   models.ErrorUnverifiedID,
			Message: messageUnverified,
			Detail:  string(res.Reason),
		}), nil
	case !res.IssuerAllowed:
		s.logger.InfoContext(ctx, "credential issuer not allowed",
			"issuer", res.Issuer,
			"request_id", requestcontext.RequestID(ctx),
		)
		return s.challenge(ctx, id, s.tiers.Public(), identityUntrusted, models.Challenge{
			Error:   models.ErrorUnverifiedID,
			Message: messageUnverified,
			Detail:  models.DetailIssuerNotAllowed,
		}), nil
	}

	tier := s.tiers.Resolve(res.Role)
	c := models.Challenge{Error: models.ErrorPaymentRequired, Message: messagePublic}
	if res.Role != domain.RoleNone {
		c.Role = string(res.Role)
		c.Message = string(res.Role) + messageDiscount
	}
	span.SetAttributes(attribute.String("role", string(res.Role)))
	return s.challenge(ctx, id, tier, identityResolved, c), nil
}

func (s *Service) challenge(ctx context.Context, id domain.ContentID, tier pricing.Tier, outcome string, c models.Challenge) *models.Challenge {
	c.Tier = tier.Name
	c.Payment = models.Payment{
		Price:       tier.Price,
		Network:     tier.Network,
		PayEndpoint: tier.PayEndpoint(id),
	}
	s.metrics.IncChallenge(string(tier.Name), outcome)
	s.logger.DebugContext(ctx, "access challenged",
		"content_id", id.String(),
		"tier", tier.Name,
		"identity", outcome,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &c
}

// CheckPayable fails when id cannot be paid for: unknown or not yet verified.
func (s *Service) CheckPayable(ctx context.Context, id domain.ContentID) error {
	_, err := s.verifiedRecord(ctx, id)
	return err
}

// CompleteDelivery records the settled payment and returns the content reference. The
// claim is trusted as given; payment checking happens before this is called.
func (s *Service) CompleteDelivery(ctx context.Context, id domain.ContentID, tier pricing.Tier, claim settlement.Claim) (delivery *models.Delivery, err error) {
	ctx, span := s.tracer.Start(ctx, "access.CompleteDelivery",
		attribute.String("content_id", id.String()),
		attribute.String("tier", string(tier.Name)),
	)
	defer func() { tracing.End(span, err) }()

	record, err := s.verifiedRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	grant, err := ledgermodels.NewGrant(ledgermodels.GrantParams{
		ContentID: id,
		Payer:     claim.Payer,
		Method:    claim.Method,
		Tier:      string(tier.Name),
		Price:     tier.Price,
		Receipt:   claim.Receipt,
		Client:    describeClient(requestcontext.UserAgent(ctx)),
	}, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Append(ctx, grant); err != nil {
		return nil, err
	}
	s.metrics.IncDelivery(string(tier.Name))

	return &models.Delivery{
		Reference:  record.Reference,
		Provenance: models.Provenance{ContentHash: record.ContentHash},
		Access:     models.AccessPaid,
		Price:      tier.Price,
	}, nil
}

// Audit returns the record and every grant against it, oldest first.
func (s *Service) Audit(ctx context.Context, id domain.ContentID) (*contentmodels.Record, []ledgermodels.Grant, error) {
	record, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	grants, err := s.ledger.ListFor(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return record, grants, nil
}

func (s *Service) verifiedRecord(ctx context.Context, id domain.ContentID) (*contentmodels.Record, error) {
	record, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.Verified {
		return nil, dErrors.New(dErrors.CodeContentUnverified, "content not verified")
	}
	return record, nil
}
