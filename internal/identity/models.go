// Package identity resolves an access role from a caller's self-asserted DID,
// an ownership signature over a nonce, and an attached verifiable credential.
package identity

import (
	"strings"
	"time"

	"proofwall/pkg/domain"
)

// Assertion is the identity bundle a caller presents. It is built per request and never stored.
type Assertion struct {
	DID             string `json:"did"`
	Nonce           string `json:"nonce"`
	Signature       string `json:"signature"`
	CredentialToken string `json:"vcJwt"`
}

// Complete reports whether every field is present.
func (a *Assertion) Complete() bool {
	if a == nil {
		return false
	}
	for _, v := range []string{a.DID, a.Nonce, a.Signature, a.CredentialToken} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Reason explains why an assertion did not resolve.
type Reason string

const (
	ReasonMissing     Reason = "missing"
	ReasonSigMismatch Reason = "sig_mismatch"
	ReasonSigInvalid  Reason = "sig_invalid"
	ReasonVCInvalid   Reason = "vc_invalid"
)

// Resolved is the verification outcome. When OK is false only Reason and Detail are set.
type Resolved struct {
	OK            bool
	Reason        Reason
	Detail        string
	Role          domain.Role
	Issuer        string
	IssuerAllowed bool
}

func failed(reason Reason, detail string) Resolved {
	return Resolved{Reason: reason, Detail: detail}
}

// Credential is the validated content of a verifiable credential token.
type Credential struct {
	Issuer    string
	Subject   string
	Role      domain.Role
	ExpiresAt time.Time
}
