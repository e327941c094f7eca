package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"proofwall/pkg/domain"
)

// ErrUnknownIssuer is returned when no key source can vouch for a credential's issuer.
var ErrUnknownIssuer = errors.New("no key material for credential issuer")

// CredentialVerifier validates a credential token and returns its claims.
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (*Credential, error)
}

var credentialMethods = []string{
	SigningMethodES256K.Alg(),
	SigningMethodES256KR.Alg(),
	jwt.SigningMethodES256.Alg(),
	jwt.SigningMethodRS256.Alg(),
	jwt.SigningMethodPS256.Alg(),
	jwt.SigningMethodEdDSA.Alg(),
}

// JWTVerifier validates JWT-encoded verifiable credentials. did:ethr and did:pkh
// issuers are checked by secp256k1 key recovery; any other issuer needs a JWKS.
type JWTVerifier struct {
	jwks   keyfunc.Keyfunc
	leeway time.Duration
	now    func() time.Time
}

type JWTOption func(*JWTVerifier)

// WithJWKS sets the key source for issuers that are not Ethereum DIDs.
func WithJWKS(k keyfunc.Keyfunc) JWTOption {
	return func(v *JWTVerifier) {
		v.jwks = k
	}
}

func WithLeeway(d time.Duration) JWTOption {
	return func(v *JWTVerifier) {
		v.leeway = d
	}
}

// WithClock overrides the time used for exp/nbf checks.
func WithClock(now func() time.Time) JWTOption {
	return func(v *JWTVerifier) {
		if now != nil {
			v.now = now
		}
	}
}

func NewJWTVerifier(opts ...JWTOption) *JWTVerifier {
	v := &JWTVerifier{
		leeway: 30 * time.Second,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewJWKS builds a background-refreshing JWKS key source. The first fetch failing does
// not prevent startup; lookups fail until the endpoint answers.
func NewJWKS(url string, logger *slog.Logger) (keyfunc.Keyfunc, error) {
	storage, err := jwkset.NewStorageFromHTTP(url, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: 10 * time.Second},
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           10 * time.Minute,
		RefreshErrorHandler: func(ctx context.Context, err error) {
			logger.ErrorContext(ctx, "credential JWKS refresh failed", "error", err, "url", url)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create JWKS storage: %w", err)
	}
	k, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("create JWKS keyfunc: %w", err)
	}
	return k, nil
}

// credentialClaims covers JWT-VC payloads. Role may live under vc.credentialSubject
// or a flat credential object.
type credentialClaims struct {
	jwt.RegisteredClaims
	IssuerAlias any `json:"issuer,omitempty"`
	VC          struct {
		CredentialSubject map[string]any `json:"credentialSubject"`
	} `json:"vc"`
	Credential map[string]any `json:"credential,omitempty"`
}

func (c *credentialClaims) issuer() string {
	if c.Issuer != "" {
		return c.Issuer
	}
	if s, ok := c.IssuerAlias.(string); ok {
		return s
	}
	return ""
}

func (c *credentialClaims) role() string {
	if r, ok := c.VC.CredentialSubject["role"].(string); ok && r != "" {
		return r
	}
	if r, ok := c.Credential["role"].(string); ok {
		return r
	}
	return ""
}

// Verify checks the token signature and time claims and extracts issuer, subject and role.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Credential, error) {
	claims := &credentialClaims{}
	_, err := jwt.ParseWithClaims(token, claims, v.keyFor(ctx),
		jwt.WithValidMethods(credentialMethods),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, err
	}

	cred := &Credential{
		Issuer:  claims.issuer(),
		Subject: claims.Subject,
		Role:    domain.ParseRole(claims.role()),
	}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}
	return cred, nil
}

func (v *JWTVerifier) keyFor(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		claims, ok := token.Claims.(*credentialClaims)
		if !ok {
			return nil, errors.New("unexpected claims type")
		}
		iss := claims.issuer()
		if iss == "" {
			return nil, errors.New("credential has no issuer")
		}

		if IsEthereumDID(iss) {
			if token.Method != SigningMethodES256K && token.Method != SigningMethodES256KR {
				return nil, fmt.Errorf("issuer %s requires ES256K, got %s", iss, token.Method.Alg())
			}
			return AddressFromDID(iss)
		}

		if v.jwks == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownIssuer, iss)
		}
		return v.jwks.KeyfuncCtx(ctx)(token)
	}
}
