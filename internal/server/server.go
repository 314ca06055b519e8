package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/remotelist/jobs-aggregator/internal/config"
	"github.com/remotelist/jobs-aggregator/internal/entities"
	"github.com/remotelist/jobs-aggregator/internal/logger"
	"github.com/remotelist/jobs-aggregator/internal/services"
)

type jobsReader interface {
	GetJobs(ctx context.Context) (*services.ReadResult, error)
}

// Server exposes the read endpoint. The response is enveloped: a flat job
// array plus metadata describing the snapshot and which read-path state
// served it.
type Server struct {
	reader     jobsReader
	httpServer *http.Server
}

type envelopeMetadata struct {
	LastUpdated     string `json:"lastUpdated"`
	JobCount        int    `json:"jobCount"`
	CacheAgeMinutes int    `json:"cacheAgeMinutes"`
	CacheStatus     string `json:"cacheStatus"`
}

type jobsEnvelope struct {
	Jobs     []entities.Job   `json:"jobs"`
	Metadata envelopeMetadata `json:"metadata"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func New(cfg config.ServerConfig, reader jobsReader) *Server {

	s := &Server{reader: reader}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/jobs", s.handleGetJobs)
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	return s
}

func (s *Server) Run() error {
	log.Infof("http server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleGetJobs(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := s.reader.GetJobs(r.Context())
	if err != nil {
		s.writeFatal(w, err)
		return
	}

	jobs := result.Jobs
	if jobs == nil {
		jobs = []entities.Job{}
	}

	writeJSON(w, http.StatusOK, jobsEnvelope{
		Jobs: jobs,
		Metadata: envelopeMetadata{
			LastUpdated:     result.Metadata.LastUpdated.UTC().Format(time.RFC3339),
			JobCount:        result.Metadata.JobCount,
			CacheAgeMinutes: int(result.CacheAge.Minutes()),
			CacheStatus:     string(result.Status),
		},
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeFatal is the only path that returns an error to a client: a message
// and timestamp, never a stack trace.
func (s *Server) writeFatal(w http.ResponseWriter, err error) {

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeHTTP).
		Errorf("request failed: %v", err)

	timestamp := time.Now().UTC()
	if fatal, ok := err.(*services.FatalPipelineError); ok {
		timestamp = fatal.Timestamp
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:     "internal_error",
		Message:   err.Error(),
		Timestamp: timestamp.Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}
