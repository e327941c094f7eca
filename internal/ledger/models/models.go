// Package models holds the audit ledger's entries.
package models

import (
	"strings"
	"time"

	"proofwall/pkg/domain"
	dErrors "proofwall/pkg/domain-errors"
)

// MethodX402 marks grants settled through the x402 payment flow.
const MethodX402 = "x402"

// UnknownPayer is recorded when a settlement does not identify who paid.
const UnknownPayer = "unknown"

// Grant records one completed delivery. Grants are never mutated or deleted.
type Grant struct {
	ID        domain.GrantID   `json:"id"`
	ContentID domain.ContentID `json:"contentId"`
	Payer     string           `json:"payer"`
	Method    string           `json:"method"`
	Tier      string           `json:"tier"`
	Price     string           `json:"price"`
	Receipt   string           `json:"receipt,omitempty"`
	Client    string           `json:"client,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// GrantParams are the inputs to NewGrant.
type GrantParams struct {
	ContentID domain.ContentID
	Payer     string
	Method    string
	Tier      string
	Price     string
	Receipt   string
	Client    string
}

// NewGrant builds a grant with a fresh id. A blank payer becomes UnknownPayer and a
// blank method becomes MethodX402.
func NewGrant(p GrantParams, now time.Time) (*Grant, error) {
	if p.ContentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "content id is required")
	}
	if strings.TrimSpace(p.Price) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "price is required")
	}
	payer := strings.TrimSpace(p.Payer)
	if payer == "" {
		payer = UnknownPayer
	}
	method := p.Method
	if method == "" {
		method = MethodX402
	}
	return &Grant{
		ID:        domain.NewGrantID(),
		ContentID: p.ContentID,
		Payer:     payer,
		Method:    method,
		Tier:      p.Tier,
		Price:     p.Price,
		Receipt:   p.Receipt,
		Client:    p.Client,
		Timestamp: now,
	}, nil
}
