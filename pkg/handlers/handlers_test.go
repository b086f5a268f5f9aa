package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/config"
	"github.com/vesselworks/helm-search/pkg/extract"
	"github.com/vesselworks/helm-search/pkg/merge"
	"github.com/vesselworks/helm-search/pkg/models"
	"github.com/vesselworks/helm-search/pkg/pipeline"
	"github.com/vesselworks/helm-search/pkg/registry"
	"github.com/vesselworks/helm-search/pkg/results"
)

// unreachableDB satisfies the executor's querier without serving data.
// Handler tests only exercise the request surface; data-layer failures
// degrade to empty result sets.
type unreachableDB struct{}

func (unreachableDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("no database in handler tests")
}

func newTestSearchHandler(t *testing.T) *SearchHandler {
	t.Helper()
	logger := zap.NewNop()

	reg, err := registry.NewRegistry(registry.DefaultCapabilities())
	require.NoError(t, err)

	p := pipeline.New(
		extract.NewExtractor(logger),
		merge.NewMerger(logger),
		reg,
		unreachableDB{},
		nil,
		results.NewRanker(results.DefaultRankerConfig(), logger),
		pipeline.DefaultConfig(),
		logger,
	)
	return NewSearchHandler(p, logger)
}

func TestSearch_MethodNotAllowed(t *testing.T) {
	handler := newTestSearchHandler(t)

	recorder := httptest.NewRecorder()
	handler.Search(recorder, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestSearch_BadRequestBodies(t *testing.T) {
	handler := newTestSearchHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "generator overheating"},
		{name: "missing query", body: `{"yacht_id":"8c9a2f1e-4d5b-4c6a-9e7f-0a1b2c3d4e5f"}`},
		{name: "missing yacht id", body: `{"query":"generator overheating"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(tt.body))
			handler.Search(recorder, request)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, "invalid_request", body["error"])
		})
	}
}

func TestSearch_RejectedTenantReturnsFullContract(t *testing.T) {
	handler := newTestSearchHandler(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"query":"generator overheating","yacht_id":"not-a-uuid"}`))
	handler.Search(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var response models.SearchResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.Equal(t, "executing", response.FailedStage)
	assert.NotEmpty(t, response.Error)
}

func TestSearch_SuccessWithDegradedDataLayer(t *testing.T) {
	handler := newTestSearchHandler(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"query":"generator overheating","yacht_id":"8c9a2f1e-4d5b-4c6a-9e7f-0a1b2c3d4e5f"}`))
	handler.Search(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var response models.SearchResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Empty(t, response.Results)
	for _, detail := range response.ExecutionDetails {
		assert.False(t, detail.Success)
	}
}

func TestHealthEndpoints(t *testing.T) {
	cfg := &config.Config{Version: "1.2.3", Env: "test"}
	handler := NewHealthHandler(cfg, zap.NewNop())

	recorder := httptest.NewRecorder()
	handler.Health(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())

	recorder = httptest.NewRecorder()
	handler.Ping(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var ping PingResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &ping))
	assert.Equal(t, "ok", ping.Status)
	assert.Equal(t, "helm-search", ping.Service)
	assert.Equal(t, "1.2.3", ping.Version)
	assert.Equal(t, "test", ping.Environment)
}
