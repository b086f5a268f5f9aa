package executor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vesselworks/helm-search/pkg/models"
	sqlsafe "github.com/vesselworks/helm-search/pkg/sql"
)

// Limit bounds enforced regardless of caller input.
const (
	MinLimit = 1
	MaxLimit = 100
)

// ColumnFilter is one validated predicate in a QuerySpec.
type ColumnFilter struct {
	Column   string
	Operator string // "=", "ILIKE", ">=", "<="
	Value    any
}

// QuerySpec is the validated, renderable form of one single-table
// query. Building it is a pure function of the capability's table spec
// and the search terms; the security checks live here so they are
// testable without a live connection.
type QuerySpec struct {
	Table         string
	TenantColumn  string
	TenantID      string
	ColumnFilters []ColumnFilter
	SelectColumns []string // empty = all columns
	Limit         int
	Offset        int
}

// ClampLimit forces limit into [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// BuildQuerySpec validates search terms against the table's allow-list
// and renders each into a filter per the column's authoritative match
// type. Unknown term keys fail closed with a SecurityError; the spec
// never contains a column the registry did not declare.
func BuildQuerySpec(table models.TableSpec, tenantID string, searchTerms map[string]any, limit, offset int) (*QuerySpec, error) {
	spec := &QuerySpec{
		Table:         table.Name,
		TenantColumn:  table.TenantIDColumn,
		TenantID:      tenantID,
		SelectColumns: table.ResponseColumns,
		Limit:         ClampLimit(limit),
	}
	if offset > 0 {
		spec.Offset = offset
	}

	// Stable filter order for deterministic rendering.
	keys := make([]string, 0, len(searchTerms))
	for key := range searchTerms {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		column, ok := table.Column(key)
		if !ok {
			return nil, &SecurityError{
				Reason: fmt.Sprintf("search term %q is not an allowed column on table %q", key, table.Name),
			}
		}
		filters, err := filtersForColumn(column, searchTerms[key])
		if err != nil {
			return nil, err
		}
		spec.ColumnFilters = append(spec.ColumnFilters, filters...)
	}

	return spec, nil
}

// filtersForColumn renders one term value per the column's first
// declared match type.
func filtersForColumn(column models.SearchableColumn, value any) ([]ColumnFilter, error) {
	switch column.PrimaryMatchType() {
	case models.MatchExact:
		return []ColumnFilter{{Column: column.Name, Operator: "=", Value: stringify(value)}}, nil

	case models.MatchILike, models.MatchTrigram:
		// Trigram scoring needs the pg_trgm extension; without native
		// trigram support the same wildcard pattern is the fallback.
		pattern := sqlsafe.SmartILikePattern(stringify(value))
		return []ColumnFilter{{Column: column.Name, Operator: "ILIKE", Value: pattern}}, nil

	case models.MatchNumericRange:
		return rangeFilters(column, value, "min", "max")

	case models.MatchDateRange:
		return rangeFilters(column, value, "start", "end")

	case models.MatchRPC:
		return nil, fmt.Errorf("column %q uses RPC matching; RPC capabilities are executed through their stored function", column.Name)

	default:
		return nil, fmt.Errorf("column %q has unsupported match type %q", column.Name, column.PrimaryMatchType())
	}
}

// rangeFilters turns a {lower,upper} map into bound predicates, or a
// bare scalar into an equality.
func rangeFilters(column models.SearchableColumn, value any, lowerKey, upperKey string) ([]ColumnFilter, error) {
	bounds, ok := asMap(value)
	if !ok {
		return []ColumnFilter{{Column: column.Name, Operator: "=", Value: value}}, nil
	}

	var filters []ColumnFilter
	if lower, ok := bounds[lowerKey]; ok && lower != nil {
		filters = append(filters, ColumnFilter{Column: column.Name, Operator: ">=", Value: lower})
	}
	if upper, ok := bounds[upperKey]; ok && upper != nil {
		filters = append(filters, ColumnFilter{Column: column.Name, Operator: "<=", Value: upper})
	}
	if len(filters) == 0 {
		return nil, fmt.Errorf("range term for column %q declares neither %q nor %q", column.Name, lowerKey, upperKey)
	}
	return filters, nil
}

// Render produces the SQL statement and bound arguments. The tenant
// filter is always the first predicate; every identifier comes from the
// validated registry and is still quoted defensively.
func (s *QuerySpec) Render() (string, []any) {
	var builder strings.Builder
	args := make([]any, 0, len(s.ColumnFilters)+1)

	builder.WriteString("SELECT ")
	if len(s.SelectColumns) == 0 {
		builder.WriteString("*")
	} else {
		quoted := make([]string, len(s.SelectColumns))
		for i, column := range s.SelectColumns {
			quoted[i] = quoteIdentifier(column)
		}
		builder.WriteString(strings.Join(quoted, ", "))
	}
	builder.WriteString(" FROM ")
	builder.WriteString(quoteIdentifier(s.Table))

	args = append(args, s.TenantID)
	builder.WriteString(" WHERE ")
	builder.WriteString(quoteIdentifier(s.TenantColumn))
	builder.WriteString(" = $1")

	for _, filter := range s.ColumnFilters {
		args = append(args, filter.Value)
		builder.WriteString(" AND ")
		builder.WriteString(quoteIdentifier(filter.Column))
		builder.WriteString(" ")
		builder.WriteString(filter.Operator)
		builder.WriteString(" $")
		builder.WriteString(strconv.Itoa(len(args)))
	}

	builder.WriteString(" LIMIT ")
	builder.WriteString(strconv.Itoa(s.Limit))
	if s.Offset > 0 {
		builder.WriteString(" OFFSET ")
		builder.WriteString(strconv.Itoa(s.Offset))
	}

	return builder.String(), args
}

// Describe returns a loggable summary of the query without argument
// values (search terms can contain operator-entered serials).
func (s *QuerySpec) Describe() string {
	columns := make([]string, 0, len(s.ColumnFilters))
	for _, filter := range s.ColumnFilters {
		columns = append(columns, filter.Column+" "+filter.Operator)
	}
	return fmt.Sprintf("table=%s tenant_filter=%s filters=[%s] limit=%d offset=%d",
		s.Table, s.TenantColumn, strings.Join(columns, ", "), s.Limit, s.Offset)
}

func quoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func stringify(value any) string {
	if str, ok := value.(string); ok {
		return str
	}
	return fmt.Sprint(value)
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case map[string]float64:
		converted := make(map[string]any, len(typed))
		for key, val := range typed {
			converted[key] = val
		}
		return converted, true
	case map[string]string:
		converted := make(map[string]any, len(typed))
		for key, val := range typed {
			converted[key] = val
		}
		return converted, true
	}
	return nil, false
}
