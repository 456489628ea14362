package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shibalabs/inspection-console/internal/cases"
	"github.com/shibalabs/inspection-console/internal/images"
	"github.com/shibalabs/inspection-console/internal/logging"
	"github.com/shibalabs/inspection-console/internal/models"
	"github.com/shibalabs/inspection-console/internal/submit"
)

// CaseAPI handles draft lifecycle and submission endpoints.
type CaseAPI struct {
	registry  *cases.Registry
	imageSvc  *images.Service
	submitSvc *submit.Service
	logger    *logging.Logger
}

// NewCaseAPI creates a new case API handler.
func NewCaseAPI(registry *cases.Registry, imageSvc *images.Service, submitSvc *submit.Service, logger *logging.Logger) *CaseAPI {
	return &CaseAPI{
		registry:  registry,
		imageSvc:  imageSvc,
		submitSvc: submitSvc,
		logger:    logger,
	}
}

// RegisterRoutes registers case routes.
func (api *CaseAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/cases", corsMiddleware(api.handleCreateDraft))
	mux.HandleFunc("/api/cases/", corsMiddleware(api.handleDraftSubpath))
}

type createDraftRequest struct {
	InspectorName string `json:"inspectorName"`
}

type headerRequest struct {
	Item          models.Item `json:"item"`
	InspectorName string      `json:"inspectorName"`
	Memo          string      `json:"memo"`
}

type entryRequest struct {
	UploadID      string               `json:"uploadId"`
	ImageType     models.ImageType     `json:"imageType"`
	Judgment      models.Judgment      `json:"judgment"`
	ReasonChoices []string             `json:"reasonChoices"`
	ReasonFree    string               `json:"reasonFree"`
	Learn         models.LearnDecision `json:"learn"`
	LearnNoReason models.LearnNoReason `json:"learnNoReason"`
}

type aggregateRequest struct {
	Judgment      models.Judgment      `json:"judgment"`
	ReasonChoices []string             `json:"reasonChoices"`
	ReasonFree    string               `json:"reasonFree"`
	Learn         models.LearnDecision `json:"learn"`
	LearnNoReason models.LearnNoReason `json:"learnNoReason"`
}

type draftResponse struct {
	DraftID            string      `json:"draftId"`
	Case               models.Case `json:"case"`
	AggregateUnlocked  bool        `json:"aggregateUnlocked"`
	AggregateThreshold int         `json:"aggregateThreshold"`
}

func (api *CaseAPI) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createDraftRequest
	if r.Body != nil {
		// An empty body is fine; the inspector seed is optional.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	id, builder := api.registry.Open(req.InspectorName)
	api.logger.Debug("Draft opened", logging.WithField("draft_id", id))

	writeJSON(w, http.StatusCreated, api.draftResponse(id, builder))
}

func (api *CaseAPI) handleDraftSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/cases/")
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" {
		http.Error(w, "draft id required", http.StatusBadRequest)
		return
	}

	segments := strings.Split(rest, "/")
	draftID := segments[0]

	builder, err := api.registry.Get(draftID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "draft not found"})
		return
	}

	switch {
	case len(segments) == 1:
		api.handleDraft(w, r, draftID, builder)
	case len(segments) == 2 && segments[1] == "available-types":
		api.handleAvailableTypes(w, r, builder)
	case len(segments) == 2 && segments[1] == "aggregate":
		api.handleAggregate(w, r, draftID, builder)
	case len(segments) == 2 && segments[1] == "submit":
		api.handleSubmit(w, r, draftID, builder)
	case len(segments) == 3 && segments[1] == "images" && segments[2] == "last":
		api.handleRemoveLastEntry(w, r, draftID, builder)
	case len(segments) == 3 && segments[1] == "images":
		api.handleEntry(w, r, draftID, builder, segments[2])
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (api *CaseAPI) handleDraft(w http.ResponseWriter, r *http.Request, draftID string, builder *cases.Builder) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, api.draftResponse(draftID, builder))

	case http.MethodPut:
		var req headerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if err := builder.SetHeader(req.Item, req.InspectorName, req.Memo); err != nil {
			api.writeBuildError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, api.draftResponse(draftID, builder))

	case http.MethodDelete:
		api.registry.Discard(draftID)
		api.logger.Debug("Draft discarded", logging.WithField("draft_id", draftID))
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *CaseAPI) handleAvailableTypes(w http.ResponseWriter, r *http.Request, builder *cases.Builder) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Without a slot the next unfilled slot is assumed.
	slot := len(builder.Snapshot().Images)
	if raw := r.URL.Query().Get("slot"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid slot"})
			return
		}
		slot = parsed
	}

	types := builder.AvailableTypes(slot)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slot":  slot,
		"types": types,
	})
}

func (api *CaseAPI) handleEntry(w http.ResponseWriter, r *http.Request, draftID string, builder *cases.Builder, rawSlot string) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slot, err := strconv.Atoi(rawSlot)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid photo index"})
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	entry := models.ImageEntry{
		Type:          req.ImageType,
		Judgment:      req.Judgment,
		ReasonChoices: req.ReasonChoices,
		ReasonFree:    req.ReasonFree,
		Learn:         req.Learn,
		LearnNoReason: req.LearnNoReason,
	}

	if req.UploadID != "" {
		upload, err := api.imageSvc.Claim(draftID, req.UploadID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, images.ErrPendingUploadNotFound) {
				status = http.StatusNotFound
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		entry.Bytes = upload.Bytes
		entry.MimeType = upload.MimeType
		entry.FileName = upload.FileName
	} else {
		// Revision without a new upload keeps the photo already attached.
		snapshot := builder.Snapshot()
		if slot >= 0 && slot < len(snapshot.Images) {
			entry.Bytes = snapshot.Images[slot].Bytes
			entry.MimeType = snapshot.Images[slot].MimeType
			entry.FileName = snapshot.Images[slot].FileName
		}
	}

	if err := builder.AddOrReplaceEntry(slot, entry); err != nil {
		api.writeBuildError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.draftResponse(draftID, builder))
}

func (api *CaseAPI) handleRemoveLastEntry(w http.ResponseWriter, r *http.Request, draftID string, builder *cases.Builder) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := builder.RemoveLastEntry(); err != nil {
		api.writeBuildError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.draftResponse(draftID, builder))
}

func (api *CaseAPI) handleAggregate(w http.ResponseWriter, r *http.Request, draftID string, builder *cases.Builder) {
	switch r.Method {
	case http.MethodPut:
		var req aggregateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		agg := models.AggregateJudgment{
			Judgment:      req.Judgment,
			ReasonChoices: req.ReasonChoices,
			ReasonFree:    req.ReasonFree,
			Learn:         req.Learn,
			LearnNoReason: req.LearnNoReason,
		}
		if err := builder.SetAggregate(agg); err != nil {
			api.writeBuildError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, api.draftResponse(draftID, builder))

	case http.MethodDelete:
		builder.ClearAggregate()
		writeJSON(w, http.StatusOK, api.draftResponse(draftID, builder))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *CaseAPI) handleSubmit(w http.ResponseWriter, r *http.Request, draftID string, builder *cases.Builder) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	receipt, err := api.submitSvc.Submit(ctx, builder.Snapshot())
	if err != nil {
		var vErr *submit.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":      "validation failed",
				"violations": vErr.Violations,
			})
			return
		}

		var sErr *submit.StepError
		if errors.As(err, &sErr) {
			api.logger.Error("Submission failed",
				logging.WithField("draft_id", draftID),
				logging.WithField("step", string(sErr.Step)),
				logging.WithField("error", sErr.Error()))
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error":      sErr.Error(),
				"step":       sErr.Step,
				"imageIndex": sErr.ImageIndex,
			})
			return
		}

		api.logger.Error("Submission failed",
			logging.WithField("draft_id", draftID),
			logging.WithField("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "submission failed"})
		return
	}

	// The committed draft is replaced with a fresh one carrying the inspector
	// name forward, so the operator starts the next item immediately.
	inspector := builder.InspectorName()
	api.registry.Discard(draftID)
	nextID, _ := api.registry.Open(inspector)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"caseId":      receipt.CaseID,
		"createdAt":   receipt.CreatedAt.Format(time.RFC3339),
		"folderId":    receipt.FolderID,
		"images":      receipt.Images,
		"nextDraftId": nextID,
	})
}

func (api *CaseAPI) draftResponse(draftID string, builder *cases.Builder) draftResponse {
	return draftResponse{
		DraftID:            draftID,
		Case:               builder.Snapshot(),
		AggregateUnlocked:  builder.AggregateUnlocked(),
		AggregateThreshold: builder.AggregateThreshold(),
	}
}

func (api *CaseAPI) writeBuildError(w http.ResponseWriter, err error) {
	var bErr *cases.BuildError
	if errors.As(err, &bErr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": bErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
