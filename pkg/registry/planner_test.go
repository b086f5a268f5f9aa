package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/models"
)

func defaultPlanner(t *testing.T) *Planner {
	t.Helper()
	reg, err := NewRegistry(DefaultCapabilities())
	require.NoError(t, err)
	return NewPlanner(reg, zap.NewNop())
}

func plansByCapability(plans []models.ExecutionPlan) map[string]models.ExecutionPlan {
	byName := make(map[string]models.ExecutionPlan)
	for _, plan := range plans {
		byName[plan.Capability] = plan
	}
	return byName
}

func TestPlan_FaultCodeEntity(t *testing.T) {
	planner := defaultPlanner(t)

	plans := planner.Plan([]models.Entity{
		{Text: "P0301", Canonical: "P 0301", Type: models.EntityTypeFaultCode},
	})

	byName := plansByCapability(plans)
	require.Contains(t, byName, "fault_code_lookup")
	require.Contains(t, byName, "document_search")

	lookup := byName["fault_code_lookup"]
	assert.Equal(t, "code", lookup.SearchColumn)
	assert.Equal(t, "P 0301", lookup.EntityValue) // canonical form preferred
	assert.False(t, lookup.Blocked)

	// RPC capability has no search column.
	assert.Empty(t, byName["document_search"].SearchColumn)
}

func TestPlan_EmptyCapabilitySkipped(t *testing.T) {
	planner := defaultPlanner(t)

	// part_number triggers inventory_search, whose status is empty.
	plans := planner.Plan([]models.Entity{
		{Text: "3803750", Type: models.EntityTypePartNumber},
	})

	byName := plansByCapability(plans)
	assert.NotContains(t, byName, "inventory_search")
	assert.Contains(t, byName, "part_by_part_number_or_name")
}

func TestPlan_DeprecatedCapabilityBlocked(t *testing.T) {
	planner := defaultPlanner(t)

	plans := planner.Plan([]models.Entity{
		{Text: "overheating", Type: models.EntityTypeSymptom, AdjustedConfidence: 0.7},
	})

	byName := plansByCapability(plans)
	require.Contains(t, byName, "crew_handover_search")
	handover := byName["crew_handover_search"]
	assert.True(t, handover.Blocked)
	assert.Equal(t, "handover search moved to the handover service", handover.BlockedReason)

	// The active work-order capability still planned normally.
	require.Contains(t, byName, "work_order_search")
	assert.False(t, byName["work_order_search"].Blocked)
}

func TestPlan_NoEntities(t *testing.T) {
	planner := defaultPlanner(t)
	assert.Empty(t, planner.Plan(nil))
}

func TestPlan_UntriggeredType(t *testing.T) {
	planner := defaultPlanner(t)

	// Nothing in the default set triggers on location alone except
	// document search.
	plans := planner.Plan([]models.Entity{
		{Text: "engine room", Type: models.EntityTypeLocation},
	})

	byName := plansByCapability(plans)
	assert.Contains(t, byName, "document_search")
	assert.NotContains(t, byName, "equipment_by_name")
}
