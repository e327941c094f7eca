package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"proofwall/internal/content/models"
	"proofwall/pkg/platform/httputil"
	"proofwall/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the content registry as seen by HTTP.
type Service interface {
	Upload(ctx context.Context, reference, contentHash, proofJobID string) (*models.Record, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the registry routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/upload", h.HandleUpload)
}

// HandleUpload registers content and holds the request open until the proof settles.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UploadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Upload(ctx, req.Reference, req.ContentHash, req.ProofJobID)
	if err != nil {
		h.logger.WarnContext(ctx, "upload failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, UploadResponse{ID: record.ID.String(), Verified: record.Verified})
}
