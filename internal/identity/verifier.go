package identity

import (
	"context"
	"log/slog"
	"strings"

	"proofwall/pkg/requestcontext"
)

// Verifier resolves assertions. It never returns an error: every failure is a Resolved
// with OK=false so callers can fall back to public pricing.
type Verifier struct {
	credentials CredentialVerifier
	prefix      string
	allowed     map[string]struct{}
	logger      *slog.Logger
	metrics     *Metrics
}

type Option func(*Verifier)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(v *Verifier) {
		v.metrics = m
	}
}

// WithMessagePrefix sets the text signed before the nonce. Empty keeps the default.
func WithMessagePrefix(prefix string) Option {
	return func(v *Verifier) {
		if prefix != "" {
			v.prefix = prefix
		}
	}
}

// WithAllowedIssuers restricts which credential issuers count as trusted.
// An empty list trusts every issuer.
func WithAllowedIssuers(issuers []string) Option {
	return func(v *Verifier) {
		if len(issuers) == 0 {
			v.allowed = nil
			return
		}
		v.allowed = make(map[string]struct{}, len(issuers))
		for _, iss := range issuers {
			v.allowed[iss] = struct{}{}
		}
	}
}

func NewVerifier(credentials CredentialVerifier, opts ...Option) *Verifier {
	v := &Verifier{
		credentials: credentials,
		prefix:      DefaultMessagePrefix,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify proves DID control, validates the credential and derives the role.
// A credential whose subject is set must name the presenting DID.
func (v *Verifier) Verify(ctx context.Context, a *Assertion) Resolved {
	res := v.verify(ctx, a)
	if res.OK {
		v.metrics.ObserveOutcome("ok")
	} else {
		v.metrics.ObserveOutcome(string(res.Reason))
		v.logger.DebugContext(ctx, "identity assertion rejected",
			"reason", res.Reason,
			"detail", res.Detail,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return res
}

func (v *Verifier) verify(ctx context.Context, a *Assertion) Resolved {
	if !a.Complete() {
		return failed(ReasonMissing, "")
	}
	if reason := checkOwnership(a, v.prefix); reason != "" {
		return failed(reason, "")
	}

	cred, err := v.credentials.Verify(ctx, a.CredentialToken)
	if err != nil {
		return failed(ReasonVCInvalid, err.Error())
	}
	if cred.Subject != "" && !strings.EqualFold(cred.Subject, a.DID) {
		return failed(ReasonVCInvalid, "credential subject does not match presented DID")
	}

	return Resolved{
		OK:            true,
		Role:          cred.Role,
		Issuer:        cred.Issuer,
		IssuerAllowed: v.issuerAllowed(cred.Issuer),
	}
}

func (v *Verifier) issuerAllowed(issuer string) bool {
	if len(v.allowed) == 0 {
		return true
	}
	_, ok := v.allowed[issuer]
	return ok
}
