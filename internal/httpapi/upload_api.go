package httpapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shibalabs/inspection-console/internal/cases"
	"github.com/shibalabs/inspection-console/internal/images"
	"github.com/shibalabs/inspection-console/internal/logging"
	"github.com/shibalabs/inspection-console/internal/moderation"
)

// UploadAPI handles photo upload intake: size and content-type validation,
// optional screening, and pending-upload token issuance.
type UploadAPI struct {
	imageSvc *images.Service
	registry *cases.Registry
	logger   *logging.Logger
}

// NewUploadAPI creates a new upload API handler.
func NewUploadAPI(imageSvc *images.Service, registry *cases.Registry, logger *logging.Logger) *UploadAPI {
	return &UploadAPI{
		imageSvc: imageSvc,
		registry: registry,
		logger:   logger,
	}
}

// RegisterRoutes registers upload routes.
func (api *UploadAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/uploads", corsMiddleware(api.handleUpload))
}

func (api *UploadAPI) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, uploadPolicy.maxBytes+1024)
	if err := r.ParseMultipartForm(uploadPolicy.maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": string(moderation.StatusPendingReview),
			"reason": "Invalid upload payload",
		})
		return
	}

	draftID := strings.TrimSpace(r.FormValue("draftId"))
	if draftID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "draftId is required"})
		return
	}
	if _, err := api.registry.Get(draftID); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "draft not found"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": string(moderation.StatusPendingReview),
			"reason": "Image file is required",
		})
		return
	}
	defer file.Close()

	if !uploadPolicy.fitsSize(header.Size) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": string(moderation.StatusPendingReview),
			"reason": "Image must be less than 10MB",
		})
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": string(moderation.StatusPendingReview),
			"reason": "Failed to read image",
		})
		return
	}

	contentType, ok := uploadPolicy.sniff(imageData)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": string(moderation.StatusPendingReview),
			"reason": "Only JPEG, PNG and WebP images are allowed",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	decision, uploadID, err := api.imageSvc.ModerateUpload(ctx, draftID, imageData, contentType, header.Filename)
	if err != nil {
		api.logger.Error("Photo upload intake failed", logging.WithField("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": string(moderation.StatusPendingReview),
			"reason": "Unable to verify right now",
		})
		return
	}

	response := map[string]string{
		"status": string(decision.Status),
	}
	if decision.Reason != "" {
		response["reason"] = decision.Reason
	}
	if uploadID != "" {
		response["uploadId"] = uploadID
		response["contentType"] = contentType
	}

	writeJSON(w, http.StatusOK, response)
}
