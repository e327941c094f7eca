package identity

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"

	"proofwall/pkg/domain"
)

// EthrDID returns the did:ethr identifier controlled by key.
func EthrDID(key *ecdsa.PrivateKey) string {
	return "did:ethr:" + crypto.PubkeyToAddress(key.PublicKey).Hex()
}

// IssueCredential signs an ES256K-R JWT-VC granting role to subject. A zero ttl
// issues a credential without expiry.
func IssueCredential(issuerKey *ecdsa.PrivateKey, subject string, role domain.Role, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"iss": EthrDID(issuerKey),
		"sub": subject,
		"nbf": now.Unix(),
		"iat": now.Unix(),
		"vc": map[string]any{
			"@context":          []string{"https://www.w3.org/2018/credentials/v1"},
			"type":              []string{"VerifiableCredential"},
			"credentialSubject": map[string]any{"role": string(role)},
		},
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(SigningMethodES256KR, claims).SignedString(issuerKey)
}

// NewAssertion builds a signed Assertion for the DID controlled by key.
func NewAssertion(key *ecdsa.PrivateKey, prefix, nonce, credential string) (*Assertion, error) {
	sig, err := SignOwnership(key, prefix, nonce)
	if err != nil {
		return nil, err
	}
	return &Assertion{
		DID:             EthrDID(key),
		Nonce:           nonce,
		Signature:       sig,
		CredentialToken: credential,
	}, nil
}

// EncodeHeader renders a for the X-Proof header.
func EncodeHeader(a *Assertion) (string, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
