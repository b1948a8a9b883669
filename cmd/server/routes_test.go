package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/kona-labs/study-advisor-go/internal/app"
	"github.com/kona-labs/study-advisor-go/internal/catalog"
	"github.com/kona-labs/study-advisor-go/internal/config"
	"github.com/kona-labs/study-advisor-go/internal/logger"
	"github.com/kona-labs/study-advisor-go/internal/metrics"
	"github.com/kona-labs/study-advisor-go/internal/rag"
	"github.com/kona-labs/study-advisor-go/internal/vecindex"
)

type stubEncoder struct{}

func (stubEncoder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{0, 0}, nil
}

func strPtr(s string) *string { return &s }

func newTestServer(t *testing.T) (*gin.Engine, *metrics.Metrics) {
	t.Helper()

	store := catalog.NewStore([]catalog.ProgramRecord{
		{Program: strPtr("MSc Data Science"), University: strPtr("University of Manchester")},
		{Program: strPtr("MBA"), University: strPtr("London Business School")},
	})
	index, err := vecindex.Build([][]float32{{0, 0}, {3, 4}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	log := logger.NewWithWriter("error", io.Discard)
	orch, err := rag.New(store, index, stubEncoder{}, log, rag.Options{DefaultTopK: 2})
	if err != nil {
		t.Fatalf("rag.New: %v", err)
	}

	cfg := &config.Config{MetricsUsername: "prometheus"}
	application := &app.App{Config: cfg, Log: log, Store: store, Index: index, Orchestrator: orch}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	router := gin.New()
	setupRoutes(router, application, registry, m, cfg)
	return router, m
}

func TestAnswerEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	body := strings.NewReader(`{"query": "data science programs", "k": 2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/answer", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result rag.QueryResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	assert.Equal(t, 2, result.Count)
	assert.Contains(t, result.Response, "Found 2 programs")
}

func TestAnswerEndpointBadRequest(t *testing.T) {
	router, m := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"k": 3}`},
		{"malformed json", `{"query": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/answer", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	got := testutil.ToFloat64(m.HTTPErrorsTotal.WithLabelValues("bad_request"))
	assert.Equal(t, float64(len(tests)), got, "each rejected request should be counted")
}

func TestReadyEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"records":2`)
	assert.Contains(t, w.Body.String(), `"vectors":2`)
}
