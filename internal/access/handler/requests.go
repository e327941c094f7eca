package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	contentmodels "proofwall/internal/content/models"
	ledgermodels "proofwall/internal/ledger/models"
	"proofwall/internal/settlement"
	dErrors "proofwall/pkg/domain-errors"
	"proofwall/pkg/platform/httputil"
	"proofwall/pkg/platform/validation"
)

// PayRequest is the optional pay body used when no settlement gate is configured.
type PayRequest struct {
	Payer   string `json:"payer"`
	Receipt string `json:"receipt"`
}

func (r PayRequest) Validate() error {
	return validation.CheckLengths(
		validation.Field{Name: "payer", Value: strings.TrimSpace(r.Payer), Max: validation.MaxPayerLength},
		validation.Field{Name: "receipt", Value: strings.TrimSpace(r.Receipt), Max: validation.MaxReceiptLength},
	)
}

func (r PayRequest) Claim() settlement.Claim {
	return settlement.Claim{
		Payer:   strings.TrimSpace(r.Payer),
		Receipt: strings.TrimSpace(r.Receipt),
		Method:  ledgermodels.MethodX402,
	}
}

// decodePayRequest accepts an empty body as an anonymous payment.
func decodePayRequest(w http.ResponseWriter, r *http.Request) (PayRequest, bool) {
	var req PayRequest
	if r.Body == nil || r.Body == http.NoBody {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return req, false
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return req, false
	}
	return req, true
}

type AuditResponse struct {
	Record   *contentmodels.Record `json:"record"`
	Accesses []ledgermodels.Grant  `json:"accesses"`
}
