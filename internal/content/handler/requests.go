package handler

import (
	"errors"
	"strings"

	"proofwall/pkg/platform/validation"
)

// UploadRequest also accepts the contentRef/proofJobHash field names older producers send.
type UploadRequest struct {
	Reference    string `json:"reference"`
	ContentRef   string `json:"contentRef,omitempty"`
	ContentHash  string `json:"contentHash"`
	ProofJobID   string `json:"proofJobId"`
	ProofJobHash string `json:"proofJobHash,omitempty"`
}

func (r *UploadRequest) Normalize() {
	r.Reference = strings.TrimSpace(r.Reference)
	r.ContentHash = strings.TrimSpace(r.ContentHash)
	r.ProofJobID = strings.TrimSpace(r.ProofJobID)
	if r.Reference == "" {
		r.Reference = strings.TrimSpace(r.ContentRef)
	}
	if r.ProofJobID == "" {
		r.ProofJobID = strings.TrimSpace(r.ProofJobHash)
	}
}

func (r *UploadRequest) Validate() error {
	if r.Reference == "" || r.ContentHash == "" || r.ProofJobID == "" {
		return errors.New("reference, contentHash and proofJobId are required")
	}
	return validation.CheckLengths(
		validation.Field{Name: "reference", Value: r.Reference, Max: validation.MaxReferenceLength},
		validation.Field{Name: "contentHash", Value: r.ContentHash, Max: validation.MaxContentHashLength},
		validation.Field{Name: "proofJobId", Value: r.ProofJobID, Max: validation.MaxProofJobIDLength},
	)
}

type UploadResponse struct {
	ID       string `json:"id"`
	Verified bool   `json:"verified"`
}
