// Package executor turns unblocked execution plans into tenant-isolated,
// column-allow-listed queries against the maintenance data store.
package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/logging"
	"github.com/vesselworks/helm-search/pkg/models"
	"github.com/vesselworks/helm-search/pkg/registry"
	sqlsafe "github.com/vesselworks/helm-search/pkg/sql"
)

// RowQuerier is the slice of the pgx pool the executor needs. Satisfied
// by *pgxpool.Pool; tests substitute a recording fake.
type RowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Executor executes capability plans for exactly one tenant. Construct
// one per request; construction fails with SecurityError before any
// I/O when the tenant id is missing or not UUID shaped.
type Executor struct {
	db       RowQuerier
	registry *registry.Registry
	tenantID uuid.UUID
	logger   *zap.Logger
}

// NewExecutor validates the tenant id and binds the executor to it.
func NewExecutor(db RowQuerier, reg *registry.Registry, tenantID string, logger *zap.Logger) (*Executor, error) {
	if tenantID == "" {
		return nil, &SecurityError{Reason: "tenant id is required"}
	}
	parsed, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, &SecurityError{Reason: fmt.Sprintf("tenant id %q is not a valid UUID", tenantID)}
	}
	return &Executor{
		db:       db,
		registry: reg,
		tenantID: parsed,
		logger:   logger.Named("executor"),
	}, nil
}

// TenantID returns the tenant this executor is bound to.
func (e *Executor) TenantID() uuid.UUID {
	return e.tenantID
}

// Execute runs one capability query. Blocked and unknown capabilities
// produce non-success results rather than errors; a SecurityError is
// returned only for allow-list violations and injection probes, and in
// that case no data-store call is made.
func (e *Executor) Execute(ctx context.Context, capabilityName string, searchTerms map[string]any, limit, offset int) (*models.QueryResult, error) {
	started := time.Now()

	capability, ok := e.registry.Get(capabilityName)
	if !ok {
		return &models.QueryResult{
			Capability: capabilityName,
			Success:    false,
			QueryType:  models.QueryTypeError,
			Error:      fmt.Sprintf("unknown capability %q", capabilityName),
		}, nil
	}
	if !capability.IsActive() {
		return &models.QueryResult{
			Capability: capabilityName,
			Success:    false,
			QueryType:  models.QueryTypeBlocked,
			Error:      capability.BlockedReason,
		}, nil
	}

	// Screen term values before anything touches the data store. Values
	// are always bound, never interpolated; a positive here means the
	// caller is probing and the request fails closed.
	if hits := sqlsafe.CheckAllTerms(searchTerms); len(hits) > 0 {
		return nil, &SecurityError{
			Reason: fmt.Sprintf("search term %q failed injection screening (fingerprint %s)",
				hits[0].TermKey, hits[0].Fingerprint),
		}
	}

	if capability.Table.RPCFunction != "" {
		return e.executeRPC(ctx, capability, searchTerms, limit, started)
	}
	return e.executeSQL(ctx, capability, searchTerms, limit, offset, started)
}

func (e *Executor) executeSQL(ctx context.Context, capability models.Capability, searchTerms map[string]any, limit, offset int, started time.Time) (*models.QueryResult, error) {
	spec, err := BuildQuerySpec(capability.Table, e.tenantID.String(), searchTerms, limit, offset)
	if err != nil {
		if IsSecurityError(err) {
			return nil, err
		}
		return e.failedResult(capability, err, started), nil
	}

	query, args := spec.Render()
	rows, err := e.collectRows(ctx, capability, query, args)
	if err != nil {
		return e.failedResult(capability, err, started), nil
	}

	return &models.QueryResult{
		Capability:       capability.Name,
		Success:          true,
		Rows:             rows,
		RowCount:         len(rows),
		QueryType:        models.QueryTypeSQL,
		QueryDescription: spec.Describe(),
		ExecutionTimeMs:  time.Since(started).Milliseconds(),
	}, nil
}

// executeRPC delegates to the capability's stored search function. The
// function has a fixed, pre-audited contract (query_text, tenant_id,
// limit) and defines its own result shape, so the column allow-list
// does not apply.
func (e *Executor) executeRPC(ctx context.Context, capability models.Capability, searchTerms map[string]any, limit int, started time.Time) (*models.QueryResult, error) {
	// Stable key order so the joined query text is deterministic.
	keys := make([]string, 0, len(searchTerms))
	for key := range searchTerms {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		if str, ok := searchTerms[key].(string); ok && str != "" {
			parts = append(parts, str)
		}
	}
	queryText := strings.Join(parts, " ")

	query := fmt.Sprintf("SELECT * FROM %s($1, $2, $3)", quoteIdentifier(capability.Table.RPCFunction))
	args := []any{queryText, e.tenantID, ClampLimit(limit)}

	rows, err := e.collectRows(ctx, capability, query, args)
	if err != nil {
		return e.failedResult(capability, err, started), nil
	}

	return &models.QueryResult{
		Capability:       capability.Name,
		Success:          true,
		Rows:             rows,
		RowCount:         len(rows),
		QueryType:        models.QueryTypeRPC,
		QueryDescription: fmt.Sprintf("rpc=%s limit=%d", capability.Table.RPCFunction, ClampLimit(limit)),
		ExecutionTimeMs:  time.Since(started).Milliseconds(),
	}, nil
}

// collectRows runs the query and materializes rows as column-name maps,
// stamped with capability and source-table provenance.
func (e *Executor) collectRows(ctx context.Context, capability models.Capability, query string, args []any) ([]map[string]any, error) {
	rows, err := e.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyExecutionError(err, capability.Name, capability.Table.Name)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	collected := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, classifyExecutionError(err, capability.Name, capability.Table.Name)
		}
		rowMap := make(map[string]any, len(columns)+2)
		for i, column := range columns {
			rowMap[column] = values[i]
		}
		rowMap[models.ProvenanceCapabilityKey] = capability.Name
		rowMap[models.ProvenanceSourceTableKey] = capability.Table.Name
		collected = append(collected, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecutionError(err, capability.Name, capability.Table.Name)
	}

	return collected, nil
}

func (e *Executor) failedResult(capability models.Capability, err error, started time.Time) *models.QueryResult {
	e.logger.Warn("capability execution failed",
		zap.String("capability", capability.Name),
		zap.String("table", capability.Table.Name),
		zap.String("error", logging.SanitizeError(err)))
	return &models.QueryResult{
		Capability:      capability.Name,
		Success:         false,
		QueryType:       models.QueryTypeError,
		Error:           err.Error(),
		ExecutionTimeMs: time.Since(started).Milliseconds(),
	}
}
