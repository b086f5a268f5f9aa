package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesselworks/helm-search/pkg/models"
)

const testTenantID = "2d9f9e6a-0c1b-4f64-9d2e-6b1f6c1a7e42"

func equipmentTable() models.TableSpec {
	return models.TableSpec{
		Name:           "equipment",
		TenantIDColumn: "yacht_id",
		PrimaryKey:     "id",
		SearchableColumns: []models.SearchableColumn{
			{Name: "name", MatchTypes: []models.MatchType{models.MatchILike, models.MatchTrigram}, IsPrimary: true},
			{Name: "manufacturer", MatchTypes: []models.MatchType{models.MatchILike}},
			{Name: "serial_number", MatchTypes: []models.MatchType{models.MatchExact}},
			{Name: "running_hours", MatchTypes: []models.MatchType{models.MatchNumericRange}},
			{Name: "installed_at", MatchTypes: []models.MatchType{models.MatchDateRange}},
		},
		ResponseColumns: []string{"id", "name", "manufacturer"},
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{input: 500, expected: 100},
		{input: 101, expected: 100},
		{input: 100, expected: 100},
		{input: 50, expected: 50},
		{input: 1, expected: 1},
		{input: 0, expected: 1},
		{input: -5, expected: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClampLimit(tt.input), "limit %d", tt.input)
	}
}

func TestBuildQuerySpec_ILike(t *testing.T) {
	spec, err := BuildQuerySpec(equipmentTable(), testTenantID, map[string]any{"name": "turbo gasket"}, 20, 0)
	require.NoError(t, err)

	require.Len(t, spec.ColumnFilters, 1)
	assert.Equal(t, "name", spec.ColumnFilters[0].Column)
	assert.Equal(t, "ILIKE", spec.ColumnFilters[0].Operator)
	assert.Equal(t, "%turbo%gasket%", spec.ColumnFilters[0].Value)
}

func TestBuildQuerySpec_UnknownColumnFailsClosed(t *testing.T) {
	_, err := BuildQuerySpec(equipmentTable(), testTenantID, map[string]any{"password": "x"}, 20, 0)
	require.Error(t, err)
	assert.True(t, IsSecurityError(err))
}

func TestBuildQuerySpec_ExactMatch(t *testing.T) {
	spec, err := BuildQuerySpec(equipmentTable(), testTenantID, map[string]any{"serial_number": "SN-1001"}, 20, 0)
	require.NoError(t, err)
	require.Len(t, spec.ColumnFilters, 1)
	assert.Equal(t, "=", spec.ColumnFilters[0].Operator)
	assert.Equal(t, "SN-1001", spec.ColumnFilters[0].Value)
}

func TestBuildQuerySpec_NumericRange(t *testing.T) {
	spec, err := BuildQuerySpec(equipmentTable(), testTenantID,
		map[string]any{"running_hours": map[string]any{"min": 100, "max": 500}}, 20, 0)
	require.NoError(t, err)

	require.Len(t, spec.ColumnFilters, 2)
	assert.Equal(t, ">=", spec.ColumnFilters[0].Operator)
	assert.Equal(t, 100, spec.ColumnFilters[0].Value)
	assert.Equal(t, "<=", spec.ColumnFilters[1].Operator)
	assert.Equal(t, 500, spec.ColumnFilters[1].Value)
}

func TestBuildQuerySpec_RangeScalarFallsBackToEquality(t *testing.T) {
	spec, err := BuildQuerySpec(equipmentTable(), testTenantID, map[string]any{"running_hours": 1200}, 20, 0)
	require.NoError(t, err)
	require.Len(t, spec.ColumnFilters, 1)
	assert.Equal(t, "=", spec.ColumnFilters[0].Operator)
}

func TestBuildQuerySpec_EmptyRangeRejected(t *testing.T) {
	_, err := BuildQuerySpec(equipmentTable(), testTenantID,
		map[string]any{"running_hours": map[string]any{"other": 1}}, 20, 0)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	spec, err := BuildQuerySpec(equipmentTable(), testTenantID,
		map[string]any{"name": "turbo gasket", "manufacturer": "garrett"}, 500, 10)
	require.NoError(t, err)

	query, args := spec.Render()

	assert.Equal(t,
		`SELECT "id", "name", "manufacturer" FROM "equipment" WHERE "yacht_id" = $1 AND "manufacturer" ILIKE $2 AND "name" ILIKE $3 LIMIT 100 OFFSET 10`,
		query)
	require.Len(t, args, 3)
	assert.Equal(t, testTenantID, args[0])
	assert.Equal(t, "%garrett%", args[1])
	assert.Equal(t, "%turbo%gasket%", args[2])
}

func TestRender_NoResponseColumnsSelectsAll(t *testing.T) {
	table := equipmentTable()
	table.ResponseColumns = nil

	spec, err := BuildQuerySpec(table, testTenantID, map[string]any{"name": "impeller"}, 20, 0)
	require.NoError(t, err)

	query, _ := spec.Render()
	assert.Contains(t, query, "SELECT * FROM")
}

func TestDescribe_OmitsValues(t *testing.T) {
	spec, err := BuildQuerySpec(equipmentTable(), testTenantID, map[string]any{"serial_number": "SECRET-123"}, 20, 0)
	require.NoError(t, err)

	described := spec.Describe()
	assert.Contains(t, described, "serial_number =")
	assert.NotContains(t, described, "SECRET-123")
	assert.NotContains(t, described, testTenantID)
}
