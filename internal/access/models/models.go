// Package models holds the access gateway's responses.
package models

import (
	"proofwall/internal/pricing"
)

// Challenge error codes.
const (
	ErrorPaymentRequired = "payment_required"
	ErrorUnverifiedID    = "invalid_or_missing_vc"
)

// DetailIssuerNotAllowed marks a valid credential whose issuer is not on the allow-list.
const DetailIssuerNotAllowed = "issuer_not_allowed"

// AccessPaid is the only access mode a delivery reports.
const AccessPaid = "paid"

// Payment points a challenged caller at the pay route for its tier.
type Payment struct {
	Price       string `json:"price"`
	Network     string `json:"network"`
	PayEndpoint string `json:"payEndpoint"`
}

// Challenge is the 402 answer to every access request on verified content.
type Challenge struct {
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Role    string           `json:"role,omitempty"`
	Detail  string           `json:"detail,omitempty"`
	Payment Payment          `json:"payment"`
	Tier    pricing.TierName `json:"-"`
}

type Provenance struct {
	ContentHash string `json:"contentHash"`
}

// Delivery is returned once a payment for the content has been settled.
type Delivery struct {
	Reference  string     `json:"reference"`
	Provenance Provenance `json:"provenance"`
	Access     string     `json:"access"`
	Price      string     `json:"price"`
}
