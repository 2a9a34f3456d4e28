// Package httpapi exposes the screening workflow over HTTP: a run trigger
// plus read-only mailbox and spreadsheet views.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hartono/hr-screener/internal/google"
	"github.com/hartono/hr-screener/internal/workflow"

	"github.com/mitchellh/mapstructure"

	"go.uber.org/zap"
)

// BatchRunner executes one screening batch.
type BatchRunner interface {
	RunWith(ctx context.Context, opts workflow.Options) *workflow.RunSummary
}

// MailDirectory lists application messages with read status.
type MailDirectory interface {
	ListAll(ctx context.Context, query string) ([]google.MessageInfo, error)
}

// SheetReader returns all recorded candidate rows.
type SheetReader interface {
	ReadAll(ctx context.Context) ([][]string, error)
}

// Server serves the screening API. Batches are serialized: a run request
// while another batch is in flight is refused rather than queued.
type Server struct {
	runner BatchRunner
	mail   MailDirectory
	sheet  SheetReader

	subjectFilter string
	logger        *zap.Logger

	busy chan struct{}
}

func NewServer(runner BatchRunner, mail MailDirectory, sheet SheetReader, subjectFilter string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		runner:        runner,
		mail:          mail,
		sheet:         sheet,
		subjectFilter: subjectFilter,
		logger:        log,
		busy:          make(chan struct{}, 1),
	}
}

// Router returns the HTTP handler with logging attached.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("GET /emails", s.handleEmails)
	mux.HandleFunc("GET /sheet", s.handleSheet)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.loggingMiddleware(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleRun triggers one batch. An optional JSON body overrides the job
// description for this run only.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	select {
	case s.busy <- struct{}{}:
		defer func() { <-s.busy }()
	default:
		s.respondError(w, http.StatusConflict, "a screening run is already in progress")
		return
	}

	opts, err := decodeRunOptions(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary := s.runner.RunWith(r.Context(), opts)
	s.respondJSON(w, http.StatusOK, summary)
}

// decodeRunOptions reads the optional override body. An empty body means no
// overrides; unknown keys are ignored.
func decodeRunOptions(r *http.Request) (workflow.Options, error) {
	var opts workflow.Options

	if r.Body == nil || r.ContentLength == 0 {
		return opts, nil
	}

	raw := map[string]interface{}{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return opts, err
	}

	if err := mapstructure.Decode(raw, &opts); err != nil {
		return opts, err
	}

	return opts, nil
}

func (s *Server) handleEmails(w http.ResponseWriter, r *http.Request) {
	infos, err := s.mail.ListAll(r.Context(), fmt.Sprintf("subject:%q", s.subjectFilter))
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"emails": infos})
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	rows, err := s.sheet.ReadAll(r.Context())
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
