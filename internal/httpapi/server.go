package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shibalabs/inspection-console/internal/cases"
	"github.com/shibalabs/inspection-console/internal/images"
	"github.com/shibalabs/inspection-console/internal/logging"
	"github.com/shibalabs/inspection-console/internal/submit"
)

type Server struct {
	registry  *cases.Registry
	imageSvc  *images.Service
	submitSvc *submit.Service
	logger    *logging.Logger
	server    *http.Server
}

func New(registry *cases.Registry, imageSvc *images.Service, submitSvc *submit.Service, logger *logging.Logger) *Server {
	return &Server{
		registry:  registry,
		imageSvc:  imageSvc,
		submitSvc: submitSvc,
		logger:    logger,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	caseAPI := NewCaseAPI(s.registry, s.imageSvc, s.submitSvc, s.logger)
	caseAPI.RegisterRoutes(mux, s.corsMiddleware)

	uploadAPI := NewUploadAPI(s.imageSvc, s.registry, s.logger)
	uploadAPI.RegisterRoutes(mux, s.corsMiddleware)

	vocabAPI := NewVocabAPI()
	vocabAPI.RegisterRoutes(mux, s.corsMiddleware)

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	s.logger.Info("HTTP API server starting", logging.WithField("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
