package models

// Provenance keys stamped onto every row an executor returns. The
// grouper refuses rows without them.
const (
	ProvenanceCapabilityKey  = "_capability"
	ProvenanceSourceTableKey = "_sourceTable"
)

// QueryType classifies how a QueryResult was produced.
type QueryType string

const (
	QueryTypeSQL     QueryType = "sql"
	QueryTypeRPC     QueryType = "rpc"
	QueryTypeBlocked QueryType = "blocked"
	QueryTypeError   QueryType = "error"
)

// QueryResult is the raw outcome of executing one plan.
type QueryResult struct {
	Capability       string           `json:"capability"`
	Success          bool             `json:"success"`
	Rows             []map[string]any `json:"rows,omitempty"`
	RowCount         int              `json:"row_count"`
	QueryType        QueryType        `json:"query_type"`
	Error            string           `json:"error,omitempty"`
	QueryDescription string           `json:"generated_query_description,omitempty"`
	ExecutionTimeMs  int64            `json:"execution_time_ms"`
}

// NormalizedResult is the uniform result shape surfaced to callers.
type NormalizedResult struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"` // source table
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle,omitempty"`
	Preview  string         `json:"preview,omitempty"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Actions  []string       `json:"actions,omitempty"`
}

// StageTiming records the wall-clock duration of one pipeline stage.
type StageTiming struct {
	Stage      string `json:"stage"`
	DurationMs int64  `json:"duration_ms"`
}

// ExecutionDetail summarizes one plan's outcome for diagnostics.
type ExecutionDetail struct {
	Capability string    `json:"capability"`
	Success    bool      `json:"success"`
	RowCount   int       `json:"row_count"`
	QueryType  QueryType `json:"query_type"`
	Error      string    `json:"error,omitempty"`
}

// SearchResponse is the terminal output of the pipeline.
type SearchResponse struct {
	Success          bool                          `json:"success"`
	Results          []NormalizedResult            `json:"results"`
	TotalCount       int                           `json:"total_count"`
	AvailableActions []string                      `json:"available_actions"`
	ResultsByDomain  map[string][]NormalizedResult `json:"results_by_domain"`
	Reason           string                        `json:"reason,omitempty"` // set on successful-but-empty outcomes
	Error            string                        `json:"error,omitempty"`
	FailedStage      string                        `json:"failed_stage,omitempty"`
	ExecutionDetails []ExecutionDetail             `json:"execution_details,omitempty"`
	Timings          []StageTiming                 `json:"timings,omitempty"`
	Diagnostics      map[string]any                `json:"diagnostics,omitempty"`
}
