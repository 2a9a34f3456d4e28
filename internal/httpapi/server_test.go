package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hartono/hr-screener/internal/google"
	"github.com/hartono/hr-screener/internal/workflow"

	"go.uber.org/zap"
)

type stubRunner struct {
	summary *workflow.RunSummary
	opts    workflow.Options
	calls   int

	started  chan struct{}
	release  chan struct{}
	blocking bool
}

func (s *stubRunner) RunWith(_ context.Context, opts workflow.Options) *workflow.RunSummary {
	s.calls++
	s.opts = opts
	if s.blocking {
		close(s.started)
		<-s.release
	}
	return s.summary
}

type stubDirectory struct {
	infos []google.MessageInfo
	err   error
	query string
}

func (s *stubDirectory) ListAll(_ context.Context, query string) ([]google.MessageInfo, error) {
	s.query = query
	return s.infos, s.err
}

type stubSheetReader struct {
	rows [][]string
	err  error
}

func (s *stubSheetReader) ReadAll(_ context.Context) ([][]string, error) {
	return s.rows, s.err
}

func newTestServer(runner *stubRunner, dir *stubDirectory, sheet *stubSheetReader) *Server {
	return NewServer(runner, dir, sheet, "Job Application", zap.NewNop())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubRunner{}, &stubDirectory{}, &stubSheetReader{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestRunReturnsSummary(t *testing.T) {
	runner := &stubRunner{summary: &workflow.RunSummary{
		Message:   "Screening run complete. Emails processed: 2. Interviews scheduled: 1. Rejected: 1.",
		Processed: 2,
		Scheduled: 1,
		Rejected:  1,
	}}
	srv := newTestServer(runner, &stubDirectory{}, &stubSheetReader{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var got workflow.RunSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if got.Processed != 2 || got.Scheduled != 1 || got.Rejected != 1 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestRunDecodesJobDescriptionOverride(t *testing.T) {
	runner := &stubRunner{summary: &workflow.RunSummary{}}
	srv := newTestServer(runner, &stubDirectory{}, &stubSheetReader{})

	body := strings.NewReader(`{"job_description": "golang backend role"}`)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	if runner.opts.JobDescription != "golang backend role" {
		t.Fatalf("override not decoded: %+v", runner.opts)
	}
}

func TestRunRejectsMalformedBody(t *testing.T) {
	runner := &stubRunner{summary: &workflow.RunSummary{}}
	srv := newTestServer(runner, &stubDirectory{}, &stubSheetReader{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	if runner.calls != 0 {
		t.Fatal("runner must not start on a malformed body")
	}
}

func TestRunRefusesConcurrentBatches(t *testing.T) {
	runner := &stubRunner{
		summary:  &workflow.RunSummary{},
		blocking: true,
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	srv := newTestServer(runner, &stubDirectory{}, &stubSheetReader{})
	router := srv.Router()

	firstDone := make(chan *httptest.ResponseRecorder)
	go func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
		firstDone <- rec
	}()

	<-runner.started

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while a run is in flight, got %d", rec.Code)
	}

	close(runner.release)
	if first := <-firstDone; first.Code != http.StatusOK {
		t.Fatalf("first run failed with %d", first.Code)
	}

	if runner.calls != 1 {
		t.Fatalf("expected exactly one batch, got %d", runner.calls)
	}
}

func TestEmailsEndpoint(t *testing.T) {
	dir := &stubDirectory{infos: []google.MessageInfo{
		{ID: "msg-1", Subject: "Job Application", From: "jane@example.com", Unread: true},
	}}
	srv := newTestServer(&stubRunner{}, dir, &stubSheetReader{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	if dir.query != `subject:"Job Application"` {
		t.Fatalf("unexpected query: %q", dir.query)
	}

	if !strings.Contains(rec.Body.String(), "msg-1") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSheetEndpointMapsErrors(t *testing.T) {
	sheet := &stubSheetReader{err: errors.New("spreadsheet unreachable")}
	srv := newTestServer(&stubRunner{}, &stubDirectory{}, sheet)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sheet", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "spreadsheet unreachable") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
