// Package models holds the content registry's records.
package models

import (
	"encoding/json"
	"strings"
	"time"

	"proofwall/pkg/domain"
	dErrors "proofwall/pkg/domain-errors"
)

// Record is a piece of registered content. Verified flips false to true once, when
// the prover's digest matches ContentHash, and the record is immutable afterwards.
type Record struct {
	ID             domain.ContentID `json:"id"`
	Reference      string           `json:"reference"`
	ContentHash    string           `json:"contentHash"`
	ProofJobID     string           `json:"proofJobId"`
	Verified       bool             `json:"verified"`
	VerifierResult json.RawMessage  `json:"verifierResult"`
	CreatedAt      time.Time        `json:"createdAt"`
	VerifiedAt     *time.Time       `json:"verifiedAt,omitempty"`
}

// NewRecord builds an unverified record with a fresh id.
func NewRecord(reference, contentHash, proofJobID string, now time.Time) (*Record, error) {
	if strings.TrimSpace(reference) == "" || strings.TrimSpace(contentHash) == "" || strings.TrimSpace(proofJobID) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reference, contentHash and proofJobId are required")
	}
	return &Record{
		ID:          domain.NewContentID(),
		Reference:   reference,
		ContentHash: contentHash,
		ProofJobID:  proofJobID,
		CreatedAt:   now,
	}, nil
}

// DigestMatches reports whether digest equals the claimed hash, ignoring case.
func (r *Record) DigestMatches(digest string) bool {
	return digest != "" && strings.EqualFold(digest, r.ContentHash)
}

// MarkVerified applies the verification transition. It is a no-op on a verified record.
func (r *Record) MarkVerified(result json.RawMessage, at time.Time) bool {
	if r.Verified {
		return false
	}
	r.Verified = true
	r.VerifierResult = result
	r.VerifiedAt = &at
	return true
}
