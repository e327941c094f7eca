package settlement

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"proofwall/internal/ledger/models"
	"proofwall/internal/platform/config"
	"proofwall/internal/pricing"
	"proofwall/pkg/platform/httputil"
	"proofwall/pkg/platform/tracing"
	"proofwall/pkg/requestcontext"
)

const (
	outcomeMissing     = "missing"
	outcomeMalformed   = "malformed"
	outcomeRejected    = "rejected"
	outcomeUnsettled   = "unsettled"
	outcomeSettled     = "settled"
	outcomeUnreachable = "facilitator_error"
)

var errMalformedPayment = errors.New("malformed X-PAYMENT header")

// Gate charges callers of pay routes before the delivery handler runs.
type Gate struct {
	facilitator Facilitator
	payTo       string
	asset       string
	decimals    int
	maxTimeout  time.Duration
	precheck    func(*http.Request) error
	logger      *slog.Logger
	metrics     *Metrics
	tracer      *tracing.Tracer
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// WithPrecheck runs check before any payment is examined. A non-nil error is written
// as the response and nothing is charged.
func WithPrecheck(check func(*http.Request) error) Option {
	return func(g *Gate) {
		g.precheck = check
	}
}

func NewGate(facilitator Facilitator, cfg config.SettlementConfig, opts ...Option) *Gate {
	g := &Gate{
		facilitator: facilitator,
		payTo:       cfg.ReceiverWallet,
		asset:       cfg.Asset,
		decimals:    cfg.AssetDecimals,
		maxTimeout:  cfg.MaxTimeout,
		logger:      slog.Default(),
		tracer:      tracing.New("settlement"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Requirements builds what the tier's pay route accepts for r.
func (g *Gate) Requirements(r *http.Request, tier pricing.Tier) (Requirements, error) {
	amount, err := AtomicAmount(tier.Price, g.decimals)
	if err != nil {
		return Requirements{}, err
	}
	return Requirements{
		Scheme:            SchemeExact,
		Network:           tier.Network,
		MaxAmountRequired: amount,
		Resource:          resourceURL(r),
		Description:       "proofwall " + string(tier.Name) + " access",
		MimeType:          "application/json",
		PayTo:             g.payTo,
		MaxTimeoutSeconds: int(g.maxTimeout / time.Second),
		Asset:             g.asset,
	}, nil
}

// Require returns middleware that settles a payment at the tier's price and hands the
// resulting Claim to next through the request context.
func (g *Gate) Require(tier pricing.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := g.tracer.Start(r.Context(), "settlement.Require",
				attribute.String("tier", string(tier.Name)),
			)
			var spanErr error
			defer func() { tracing.End(span, spanErr) }()

			requestID := requestcontext.RequestID(ctx)

			if g.precheck != nil {
				if err := g.precheck(r.WithContext(ctx)); err != nil {
					httputil.WriteError(w, err)
					return
				}
			}

			req, err := g.Requirements(r, tier)
			if err != nil {
				spanErr = err
				g.logger.ErrorContext(ctx, "failed to build payment requirements",
					"error", err,
					"tier", tier.Name,
					"request_id", requestID,
				)
				httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
				return
			}

			header := r.Header.Get(HeaderPayment)
			if header == "" {
				g.metrics.IncPayment(string(tier.Name), outcomeMissing)
				g.paymentRequired(w, req, "X-PAYMENT header is required")
				return
			}

			payload, err := DecodePayment(header)
			if err != nil {
				g.metrics.IncPayment(string(tier.Name), outcomeMalformed)
				g.paymentRequired(w, req, err.Error())
				return
			}
			if payload.Scheme != req.Scheme || payload.Network != req.Network {
				g.metrics.IncPayment(string(tier.Name), outcomeRejected)
				g.paymentRequired(w, req, "unsupported payment scheme or network")
				return
			}

			verified, err := g.facilitator.Verify(ctx, payload, req)
			if err != nil {
				spanErr = err
				g.metrics.IncPayment(string(tier.Name), outcomeUnreachable)
				g.logger.ErrorContext(ctx, "payment verification failed",
					"error", err,
					"request_id", requestID,
				)
				g.paymentRequired(w, req, "payment verification failed")
				return
			}
			if !verified.IsValid {
				g.metrics.IncPayment(string(tier.Name), outcomeRejected)
				g.logger.InfoContext(ctx, "payment rejected",
					"reason", verified.InvalidReason,
					"payer", verified.Payer,
					"request_id", requestID,
				)
				g.paymentRequired(w, req, verified.InvalidReason)
				return
			}

			settled, err := g.facilitator.Settle(ctx, payload, req)
			if err != nil {
				spanErr = err
				g.metrics.IncPayment(string(tier.Name), outcomeUnreachable)
				g.logger.ErrorContext(ctx, "payment settlement failed",
					"error", err,
					"request_id", requestID,
				)
				g.paymentRequired(w, req, "payment settlement failed")
				return
			}
			if !settled.Success {
				g.metrics.IncPayment(string(tier.Name), outcomeUnsettled)
				g.logger.WarnContext(ctx, "payment not settled",
					"reason", settled.ErrorReason,
					"request_id", requestID,
				)
				g.paymentRequired(w, req, settled.ErrorReason)
				return
			}

			if encoded, err := encodeSettlement(settled); err == nil {
				w.Header().Set(HeaderPaymentResponse, encoded)
				w.Header().Set("Access-Control-Expose-Headers", HeaderPaymentResponse)
			}

			claim := Claim{
				Payer:   settled.Payer,
				Receipt: settled.Transaction,
				Method:  models.MethodX402,
				Network: settled.Network,
			}
			if claim.Payer == "" {
				claim.Payer = verified.Payer
			}
			g.metrics.IncPayment(string(tier.Name), outcomeSettled)
			span.SetAttributes(attribute.String("payer", claim.Payer))

			next.ServeHTTP(w, r.WithContext(WithClaim(ctx, claim)))
		})
	}
}

func (g *Gate) paymentRequired(w http.ResponseWriter, req Requirements, reason string) {
	if reason == "" {
		reason = "payment required"
	}
	httputil.WriteJSON(w, http.StatusPaymentRequired, PaymentRequiredResponse{
		X402Version: X402Version,
		Error:       reason,
		Accepts:     []Requirements{req},
	})
}

// DecodePayment parses a base64 X-PAYMENT header value.
func DecodePayment(header string) (*Payload, error) {
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, errMalformedPayment
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errMalformedPayment
	}
	if p.X402Version != X402Version || p.Scheme == "" || len(p.Payload) == 0 {
		return nil, errMalformedPayment
	}
	return &p, nil
}

// EncodePayment is the inverse of DecodePayment.
func EncodePayment(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func encodeSettlement(s *SettleResponse) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func resourceURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}
