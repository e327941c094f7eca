package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"proofwall/internal/access/models"
	contentmodels "proofwall/internal/content/models"
	"proofwall/internal/identity"
	ledgermodels "proofwall/internal/ledger/models"
	"proofwall/internal/pricing"
	"proofwall/internal/settlement"
	"proofwall/pkg/domain"
	dErrors "proofwall/pkg/domain-errors"
	"proofwall/pkg/platform/httputil"
	"proofwall/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,PaymentGate

// Service is the access gateway as seen by HTTP.
type Service interface {
	RequestAccess(ctx context.Context, id domain.ContentID, a *identity.Assertion) (*models.Challenge, error)
	CheckPayable(ctx context.Context, id domain.ContentID) error
	CompleteDelivery(ctx context.Context, id domain.ContentID, tier pricing.Tier, claim settlement.Claim) (*models.Delivery, error)
	Audit(ctx context.Context, id domain.ContentID) (*contentmodels.Record, []ledgermodels.Grant, error)
}

// PaymentGate wraps a pay route so it only runs after payment at the tier's price.
type PaymentGate interface {
	Require(tier pricing.Tier) func(http.Handler) http.Handler
}

type Handler struct {
	service Service
	tiers   *pricing.Resolver
	logger  *slog.Logger
}

func New(service Service, tiers *pricing.Resolver, logger *slog.Logger) *Handler {
	return &Handler{service: service, tiers: tiers, logger: logger}
}

// Register mounts the access, pay and audit routes. With a nil gate the pay routes
// take the payer and receipt from the request body.
func (h *Handler) Register(r chi.Router, gate PaymentGate) {
	for _, path := range []string{"/access/{id}", "/secret/{id}", "/discount/{id}"} {
		r.Get(path, h.HandleAccess)
	}

	h.mountPay(r, "/pay/{id}", h.tiers.Public(), gate)
	for _, tier := range h.tiers.All() {
		h.mountPay(r, "/pay/"+tier.PaySegment+"/{id}", tier, gate)
	}

	r.Get("/audit/{id}", h.HandleAudit)
}

func (h *Handler) mountPay(r chi.Router, path string, tier pricing.Tier, gate PaymentGate) {
	if gate == nil {
		r.Post(path, h.HandlePay(tier))
		return
	}
	r.With(gate.Require(tier)).Post(path, h.HandlePay(tier))
}

// HandleAccess always answers verified content with a 402 challenge priced for the caller.
func (h *Handler) HandleAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := contentID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	challenge, err := h.service.RequestAccess(ctx, id, identity.Parse(r))
	if err != nil {
		h.logger.WarnContext(ctx, "access request failed",
			"content_id", id.String(),
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusPaymentRequired, challenge)
}

// HandlePay delivers content priced at tier. Behind a gate the payment claim comes from
// the request context.
func (h *Handler) HandlePay(tier pricing.Tier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		id, err := contentID(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		claim, ok := settlement.ClaimFrom(ctx)
		if !ok {
			req, ok := decodePayRequest(w, r)
			if !ok {
				return
			}
			claim = req.Claim()
		}

		delivery, err := h.service.CompleteDelivery(ctx, id, tier, claim)
		if err != nil {
			h.logger.WarnContext(ctx, "delivery failed",
				"content_id", id.String(),
				"tier", tier.Name,
				"payer", claim.Payer,
				"receipt", claim.Receipt,
				"request_id", requestID,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}

		h.logger.InfoContext(ctx, "content delivered",
			"content_id", id.String(),
			"tier", tier.Name,
			"payer", claim.Payer,
			"request_id", requestID,
		)
		httputil.WriteJSON(w, http.StatusOK, delivery)
	}
}

func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := contentID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, grants, err := h.service.Audit(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "audit failed",
			"content_id", id.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if grants == nil {
		grants = []ledgermodels.Grant{}
	}

	httputil.WriteJSON(w, http.StatusOK, AuditResponse{Record: record, Accesses: grants})
}

// CheckPayable is the gate precheck: unknown or unverified content is refused before
// any payment is taken.
func (h *Handler) CheckPayable(r *http.Request) error {
	id, err := contentID(r)
	if err != nil {
		return err
	}
	return h.service.CheckPayable(r.Context(), id)
}

// contentID reads the {id} route parameter. Ids that cannot exist are not found.
func contentID(r *http.Request) (domain.ContentID, error) {
	id, err := domain.ParseContentID(chi.URLParam(r, "id"))
	if err != nil || id.IsNil() {
		return domain.ContentID{}, dErrors.New(dErrors.CodeNotFound, "content not found")
	}
	return id, nil
}
