// Package pipeline orchestrates the search request lifecycle:
// extraction, merging, planning, concurrent execution, normalization,
// ranking and domain grouping, with per-stage timing and partial-failure
// handling.
package pipeline

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/executor"
	"github.com/vesselworks/helm-search/pkg/extract"
	"github.com/vesselworks/helm-search/pkg/llm"
	"github.com/vesselworks/helm-search/pkg/logging"
	"github.com/vesselworks/helm-search/pkg/merge"
	"github.com/vesselworks/helm-search/pkg/models"
	"github.com/vesselworks/helm-search/pkg/registry"
	"github.com/vesselworks/helm-search/pkg/results"
	"github.com/vesselworks/helm-search/pkg/retry"
)

// Pipeline stages, in execution order.
const (
	StageExtracting  = "extracting"
	StagePreparing   = "preparing"
	StageExecuting   = "executing"
	StageNormalizing = "normalizing"
	StageRanking     = "ranking"
	StageGrouping    = "grouping"
)

// Config bounds per-request work.
type Config struct {
	StageDeadline      time.Duration
	MaxConcurrentPlans int
	DefaultLimit       int
}

// DefaultConfig mirrors the service defaults.
func DefaultConfig() Config {
	return Config{
		StageDeadline:      10 * time.Second,
		MaxConcurrentPlans: 4,
		DefaultLimit:       20,
	}
}

// Pipeline wires the pipeline stages together. Build one at startup
// and share it across requests; all per-request state lives on the
// stack of Search.
type Pipeline struct {
	extractor *extract.Extractor
	merger    *merge.Merger
	planner   *registry.Planner
	registry  *registry.Registry
	db        executor.RowQuerier
	ai        llm.EntityExtractor // nil disables the AI fallback
	pool      *WorkerPool
	ranker    *results.Ranker
	config    Config
	logger    *zap.Logger
}

// New builds a pipeline. ai may be nil when no fallback extractor is
// configured.
func New(
	ext *extract.Extractor,
	merger *merge.Merger,
	reg *registry.Registry,
	db executor.RowQuerier,
	ai llm.EntityExtractor,
	ranker *results.Ranker,
	cfg Config,
	logger *zap.Logger,
) *Pipeline {
	if cfg.StageDeadline <= 0 {
		cfg.StageDeadline = 10 * time.Second
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	return &Pipeline{
		extractor: ext,
		merger:    merger,
		planner:   registry.NewPlanner(reg, logger),
		registry:  reg,
		db:        db,
		ai:        ai,
		pool:      NewWorkerPool(cfg.MaxConcurrentPlans, logger),
		ranker:    ranker,
		config:    cfg,
		logger:    logger.Named("pipeline"),
	}
}

// timer accumulates per-stage wall-clock durations.
type timer struct {
	timings []models.StageTiming
}

func (t *timer) track(stage string) func() {
	start := time.Now()
	return func() {
		t.timings = append(t.timings, models.StageTiming{
			Stage:      stage,
			DurationMs: time.Since(start).Milliseconds(),
		})
	}
}

// Search runs the full pipeline for one operator query. It always
// returns a response object: hard failures set success=false with the
// failed stage; "nothing matched" is a successful empty response with
// an explanatory reason.
func (p *Pipeline) Search(ctx context.Context, query, tenantID string) *models.SearchResponse {
	timings := &timer{}
	diagnostics := make(map[string]any)

	p.logger.Info("search request",
		zap.String("query", logging.TruncateQuery(query)),
		zap.String("tenant_id", tenantID))

	// extracting
	entities, sourceMix := p.runExtraction(ctx, query, timings, diagnostics)
	diagnostics["source_mix"] = sourceMix
	if len(entities) == 0 {
		return emptyResponse("no searchable entities were recognized in the query", timings, diagnostics)
	}

	// preparing
	stopPreparing := timings.track(StagePreparing)
	plans := p.planner.Plan(entities)
	var active []models.ExecutionPlan
	var blockedDetails []models.ExecutionDetail
	for _, plan := range plans {
		if plan.Blocked {
			blockedDetails = append(blockedDetails, models.ExecutionDetail{
				Capability: plan.Capability,
				Success:    false,
				QueryType:  models.QueryTypeBlocked,
				Error:      plan.BlockedReason,
			})
			continue
		}
		active = append(active, plan)
	}
	stopPreparing()
	if len(active) == 0 {
		response := emptyResponse("no active capabilities matched the recognized entities", timings, diagnostics)
		response.ExecutionDetails = blockedDetails
		return response
	}

	// executing
	stopExecuting := timings.track(StageExecuting)
	queryResults, err := p.executePlans(ctx, active, tenantID)
	stopExecuting()
	if err != nil {
		p.logger.Warn("search rejected", zap.String("error", logging.SanitizeError(err)))
		return &models.SearchResponse{
			Success:     false,
			Error:       err.Error(),
			FailedStage: StageExecuting,
			Timings:     timings.timings,
			Diagnostics: diagnostics,
		}
	}

	details := blockedDetails
	for _, result := range queryResults {
		details = append(details, models.ExecutionDetail{
			Capability: result.Capability,
			Success:    result.Success,
			RowCount:   result.RowCount,
			QueryType:  result.QueryType,
			Error:      result.Error,
		})
	}

	// normalizing
	stopNormalizing := timings.track(StageNormalizing)
	normalized := results.NormalizeAll(queryResults, p.actionsFor)
	stopNormalizing()

	// ranking
	stopRanking := timings.track(StageRanking)
	ranked := p.ranker.Rank(normalized, entities)
	stopRanking()

	// grouping
	stopGrouping := timings.track(StageGrouping)
	grouped := results.GroupByDomain(ranked, p.logger)
	actions := p.collectActions(queryResults)
	stopGrouping()

	response := &models.SearchResponse{
		Success:          true,
		Results:          ranked,
		TotalCount:       len(ranked),
		AvailableActions: actions,
		ResultsByDomain:  grouped,
		ExecutionDetails: details,
		Timings:          timings.timings,
		Diagnostics:      diagnostics,
	}
	if len(ranked) == 0 {
		response.Reason = "the query was understood but nothing matched on this vessel"
	}
	return response
}

// runExtraction performs pattern/vocabulary extraction and, when
// configured, the AI fallback. AI failure degrades to the deterministic
// entity set and is recorded in diagnostics only.
func (p *Pipeline) runExtraction(ctx context.Context, query string, timings *timer, diagnostics map[string]any) ([]models.Entity, map[models.EntitySource]int) {
	defer timings.track(StageExtracting)()

	patternEntities := extract.Flatten(p.extractor.Extract(query))

	var aiEntities []models.Entity
	if p.ai != nil {
		err := retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
			extracted, extractErr := p.ai.ExtractEntities(ctx, query)
			if extractErr != nil {
				return extractErr
			}
			aiEntities = extracted
			return nil
		})
		if err != nil {
			// Degradation, not failure: the deterministic extractors
			// still carry the request.
			diagnostics["ai_fallback"] = "unavailable: " + logging.SanitizeError(err)
			p.logger.Debug("AI fallback unavailable", zap.Error(err))
		}
	}

	outcome := p.merger.MergeAndValidate(patternEntities, aiEntities, query)
	return outcome.Entities, outcome.SourceMix
}

// executePlans fans unblocked plans out over the worker pool under the
// stage deadline. One plan's failure is captured in its own result;
// siblings always run to completion or deadline. A SecurityError from
// executor construction or term validation aborts the whole request.
func (p *Pipeline) executePlans(ctx context.Context, plans []models.ExecutionPlan, tenantID string) ([]*models.QueryResult, error) {
	exec, err := executor.NewExecutor(p.db, p.registry, tenantID, p.logger)
	if err != nil {
		return nil, err
	}

	stageCtx, cancel := context.WithTimeout(ctx, p.config.StageDeadline)
	defer cancel()

	items := make([]workItem[*models.QueryResult], 0, len(plans))
	seen := make(map[string]bool)
	for _, plan := range plans {
		termKey := plan.SearchColumn
		if termKey == "" {
			// RPC capabilities take free text under a conventional key.
			termKey = "query"
		}
		dedupeKey := plan.Capability + "|" + termKey + "|" + plan.EntityValue
		if seen[dedupeKey] {
			continue
		}
		seen[dedupeKey] = true

		capability := plan.Capability
		terms := map[string]any{termKey: plan.EntityValue}
		items = append(items, workItem[*models.QueryResult]{
			ID: dedupeKey,
			Execute: func(ctx context.Context) (*models.QueryResult, error) {
				return exec.Execute(ctx, capability, terms, p.config.DefaultLimit, 0)
			},
		})
	}

	collected := runAll(stageCtx, p.pool, items)

	queryResults := make([]*models.QueryResult, 0, len(collected))
	for _, result := range collected {
		if result.Err != nil {
			if executor.IsSecurityError(result.Err) {
				return nil, result.Err
			}
			// Deadline or transport failure for this plan only.
			queryResults = append(queryResults, &models.QueryResult{
				Capability: capabilityFromID(result.ID),
				Success:    false,
				QueryType:  models.QueryTypeError,
				Error:      result.Err.Error(),
			})
			continue
		}
		queryResults = append(queryResults, result.Result)
	}

	// Stable order for deterministic downstream processing.
	sort.SliceStable(queryResults, func(i, j int) bool {
		return queryResults[i].Capability < queryResults[j].Capability
	})
	return queryResults, nil
}

// capabilityFromID recovers the capability name from a work item ID
// (capability|column|value).
func capabilityFromID(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '|' {
			return id[:i]
		}
	}
	return id
}

// actionsFor resolves a capability's declared actions for the
// normalizer.
func (p *Pipeline) actionsFor(capability string) []string {
	if found, ok := p.registry.Get(capability); ok {
		return found.AvailableActions
	}
	return nil
}

// collectActions deduplicates the declared actions of every capability
// that returned rows.
func (p *Pipeline) collectActions(queryResults []*models.QueryResult) []string {
	seen := make(map[string]bool)
	var actions []string
	for _, result := range queryResults {
		if result == nil || !result.Success || result.RowCount == 0 {
			continue
		}
		capability, ok := p.registry.Get(result.Capability)
		if !ok {
			continue
		}
		for _, action := range capability.AvailableActions {
			if !seen[action] {
				seen[action] = true
				actions = append(actions, action)
			}
		}
	}
	sort.Strings(actions)
	return actions
}

func emptyResponse(reason string, timings *timer, diagnostics map[string]any) *models.SearchResponse {
	return &models.SearchResponse{
		Success:          true,
		Results:          []models.NormalizedResult{},
		TotalCount:       0,
		AvailableActions: []string{},
		ResultsByDomain:  map[string][]models.NormalizedResult{},
		Reason:           reason,
		Timings:          timings.timings,
		Diagnostics:      diagnostics,
	}
}
