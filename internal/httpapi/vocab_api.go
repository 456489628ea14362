package httpapi

import (
	"net/http"

	"github.com/shibalabs/inspection-console/internal/models"
)

// VocabAPI exposes the controlled vocabulary so the frontend never hard-codes
// the Japanese labels.
type VocabAPI struct{}

// NewVocabAPI creates a new vocabulary API handler.
func NewVocabAPI() *VocabAPI {
	return &VocabAPI{}
}

// RegisterRoutes registers vocabulary routes.
func (api *VocabAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/vocab/image-types", corsMiddleware(api.handleImageTypes))
	mux.HandleFunc("/api/vocab/rationales", corsMiddleware(api.handleRationales))
	mux.HandleFunc("/api/vocab/aggregate-rationales", corsMiddleware(api.handleAggregateRationales))
	mux.HandleFunc("/api/vocab/judgments", corsMiddleware(api.handleJudgments))
	mux.HandleFunc("/api/vocab/learn-no-reasons", corsMiddleware(api.handleLearnNoReasons))
	mux.HandleFunc("/api/vocab/items", corsMiddleware(api.handleItems))
}

func (api *VocabAPI) handleImageTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"types": models.AllImageTypes(),
	})
}

func (api *VocabAPI) handleRationales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	t := models.ImageType(r.URL.Query().Get("type"))
	if !models.IsValidImageType(t) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown image type"})
		return
	}

	options := models.RationaleOptions(t)
	if options == nil {
		options = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"type":    t,
		"options": options,
	})
}

func (api *VocabAPI) handleAggregateRationales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"options": models.AggregateRationaleOptions(),
	})
}

func (api *VocabAPI) handleJudgments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"judgments": models.Judgments(),
	})
}

func (api *VocabAPI) handleLearnNoReasons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reasons": models.LearnNoReasons(),
	})
}

func (api *VocabAPI) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": models.Items(),
		"brand": models.Brand,
	})
}
