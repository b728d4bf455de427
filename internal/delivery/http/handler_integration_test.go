package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pricelens/backend/config"
	"github.com/pricelens/backend/internal/domain"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

// stubRunner is a scriptable BenchmarkRunner.
type stubRunner struct {
	summary     *domain.RunSummary
	err         error
	workspaceID string
	sourceURL   string
}

func (r *stubRunner) Run(
	ctx context.Context,
	workspaceID string,
	clientSource domain.ClientItemSource,
	scrapedSource domain.ScrapedItemSource,
	sourceURL string,
) (*domain.RunSummary, error) {
	r.workspaceID = workspaceID
	r.sourceURL = sourceURL
	if r.err != nil {
		return nil, r.err
	}
	return r.summary, nil
}

// setupTestRouter creates a test router around a stub runner
func setupTestRouter(runner BenchmarkRunner) *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"*"},
		},
	}
	return SetupRouter(cfg, NewHandler(runner))
}

func postRun(router *gin.Engine, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", "/api/v1/benchmark/run", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(&stubRunner{})

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if body["status"] != "healthy" {
			t.Errorf("status field = %q, want healthy", body["status"])
		}
		if body["service"] != "pricelens-backend" {
			t.Errorf("service field = %q, want pricelens-backend", body["service"])
		}
	})
}

// TestRunBenchmarkEndpoint tests the benchmark run endpoint
func TestRunBenchmarkEndpoint(t *testing.T) {
	validRequest := RunBenchmarkRequest{
		WorkspaceID:      "ws-1",
		ClientItemsPath:  "/data/client.csv",
		ScrapedItemsPath: "/data/scraped.jsonl",
		SourceURL:        "https://www.amazon.in",
	}

	t.Run("returns summary on success", func(t *testing.T) {
		runner := &stubRunner{summary: &domain.RunSummary{
			RunID:             "run-1",
			WorkspaceID:       "ws-1",
			ClustersProcessed: 3,
			RowsMatched:       12,
		}}
		router := setupTestRouter(runner)

		w := postRun(router, validRequest)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
		}

		var summary domain.RunSummary
		if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if summary.ClustersProcessed != 3 || summary.RowsMatched != 12 {
			t.Errorf("summary = %+v, want 3 processed / 12 matched", summary)
		}
		if runner.workspaceID != "ws-1" {
			t.Errorf("runner got workspace %q, want ws-1", runner.workspaceID)
		}
		if runner.sourceURL != "https://www.amazon.in" {
			t.Errorf("runner got source URL %q", runner.sourceURL)
		}
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		router := setupTestRouter(&stubRunner{})

		cases := []RunBenchmarkRequest{
			{ClientItemsPath: "a", ScrapedItemsPath: "b"},
			{WorkspaceID: "ws", ScrapedItemsPath: "b"},
			{WorkspaceID: "ws", ClientItemsPath: "a"},
		}
		for _, body := range cases {
			if w := postRun(router, body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d for %+v, want 400", w.Code, body)
			}
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		router := setupTestRouter(&stubRunner{})

		req, _ := http.NewRequest("POST", "/api/v1/benchmark/run", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("maps invalid request error to 400", func(t *testing.T) {
		router := setupTestRouter(&stubRunner{err: domain.ErrInvalidRequest})

		if w := postRun(router, validRequest); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("maps unreadable source to 422", func(t *testing.T) {
		router := setupTestRouter(&stubRunner{
			err: errors.Join(domain.ErrSourceUnavailable, errors.New("no such file")),
		})

		if w := postRun(router, validRequest); w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", w.Code)
		}
	})

	t.Run("maps other errors to 500", func(t *testing.T) {
		router := setupTestRouter(&stubRunner{err: errors.New("boom")})

		if w := postRun(router, validRequest); w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
	})

	t.Run("returns 503 when runner is not configured", func(t *testing.T) {
		router := setupTestRouter(nil)

		if w := postRun(router, validRequest); w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", w.Code)
		}
	})
}
