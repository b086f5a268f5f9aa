package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/logging"
	"github.com/vesselworks/helm-search/pkg/pipeline"
)

// SearchRequest is the POST /api/search body.
type SearchRequest struct {
	Query   string `json:"query"`
	YachtID string `json:"yacht_id"`
}

// SearchHandler exposes the search pipeline over HTTP.
type SearchHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(p *pipeline.Pipeline, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{pipeline: p, logger: logger}
}

// RegisterRoutes registers the search handler's routes on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/search", h.Search)
}

// Search handles POST /api/search requests. The response body is always
// the full search response contract; rejected requests (bad tenant,
// injection attempts) come back 400 with success=false and the failed
// stage named.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		_ = ErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if req.Query == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}
	if req.YachtID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "yacht_id is required")
		return
	}

	response := h.pipeline.Search(r.Context(), req.Query, req.YachtID)

	status := http.StatusOK
	if !response.Success {
		status = http.StatusBadRequest
		h.logger.Warn("search request rejected",
			zap.String("query", logging.TruncateQuery(req.Query)),
			zap.String("failed_stage", response.FailedStage))
	}

	if err := WriteJSON(w, status, response); err != nil {
		h.logger.Error("Failed to encode search response", zap.Error(err))
	}
}
