package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

//go:generate mockgen -source=facilitator.go -destination=mocks/mocks.go -package=mocks Facilitator

// Facilitator verifies and settles x402 payments on the merchant's behalf.
type Facilitator interface {
	Verify(ctx context.Context, payload *Payload, req Requirements) (*VerifyResponse, error)
	Settle(ctx context.Context, payload *Payload, req Requirements) (*SettleResponse, error)
}

// HTTPFacilitator calls a facilitator's POST /verify and POST /settle endpoints.
type HTTPFacilitator struct {
	baseURL string
	client  *http.Client
}

func NewHTTPFacilitator(baseURL string, client *http.Client) *HTTPFacilitator {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFacilitator{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type facilitatorRequest struct {
	X402Version         int          `json:"x402Version"`
	PaymentPayload      *Payload     `json:"paymentPayload"`
	PaymentRequirements Requirements `json:"paymentRequirements"`
}

func (f *HTTPFacilitator) Verify(ctx context.Context, payload *Payload, req Requirements) (*VerifyResponse, error) {
	var out VerifyResponse
	if err := f.post(ctx, "/verify", payload, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *HTTPFacilitator) Settle(ctx context.Context, payload *Payload, req Requirements) (*SettleResponse, error) {
	var out SettleResponse
	if err := f.post(ctx, "/settle", payload, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *HTTPFacilitator) post(ctx context.Context, path string, payload *Payload, req Requirements, out any) error {
	body, err := json.Marshal(facilitatorRequest{
		X402Version:         payload.X402Version,
		PaymentPayload:      payload,
		PaymentRequirements: req,
	})
	if err != nil {
		return fmt.Errorf("encode facilitator request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build facilitator request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("facilitator %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read facilitator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("facilitator %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode facilitator response: %w", err)
	}
	return nil
}
