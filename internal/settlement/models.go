// Package settlement fronts pay routes with the x402 exchange. Payment checking and
// settlement are delegated to an external facilitator; this package never judges a
// payment itself.
package settlement

import (
	"encoding/json"
)

const (
	// HeaderPayment carries the client's base64 payment payload.
	HeaderPayment = "X-PAYMENT"
	// HeaderPaymentResponse carries the base64 settlement result back to the client.
	HeaderPaymentResponse = "X-PAYMENT-RESPONSE"

	X402Version = 1
	SchemeExact = "exact"
)

// Requirements describe what a pay route accepts.
type Requirements struct {
	Scheme            string          `json:"scheme"`
	Network           string          `json:"network"`
	MaxAmountRequired string          `json:"maxAmountRequired"`
	Resource          string          `json:"resource"`
	Description       string          `json:"description"`
	MimeType          string          `json:"mimeType"`
	PayTo             string          `json:"payTo"`
	MaxTimeoutSeconds int             `json:"maxTimeoutSeconds"`
	Asset             string          `json:"asset"`
	Extra             json.RawMessage `json:"extra,omitempty"`
}

// Payload is the decoded X-PAYMENT header. The scheme-specific part stays opaque.
type Payload struct {
	X402Version int             `json:"x402Version"`
	Scheme      string          `json:"scheme"`
	Network     string          `json:"network"`
	Payload     json.RawMessage `json:"payload"`
}

// PaymentRequiredResponse is the 402 body sent when a pay route is called without
// an acceptable payment.
type PaymentRequiredResponse struct {
	X402Version int            `json:"x402Version"`
	Error       string         `json:"error"`
	Accepts     []Requirements `json:"accepts"`
}

type VerifyResponse struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason,omitempty"`
	Payer         string `json:"payer,omitempty"`
}

type SettleResponse struct {
	Success     bool   `json:"success"`
	ErrorReason string `json:"errorReason,omitempty"`
	Transaction string `json:"transaction"`
	Network     string `json:"network"`
	Payer       string `json:"payer,omitempty"`
}

// Claim is what a confirmed settlement tells the delivery handler.
type Claim struct {
	Payer   string
	Receipt string
	Method  string
	Network string
}
