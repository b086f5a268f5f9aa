package results

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesselworks/helm-search/pkg/models"
)

func TestNormalize_EquipmentRow(t *testing.T) {
	row := map[string]any{
		"id":                             "eq-1",
		"name":                           "Main Engine",
		"manufacturer":                   "Caterpillar",
		"location":                       "engine room",
		"notes":                          "serviced last month",
		"running_hours":                  12500,
		models.ProvenanceCapabilityKey:   "equipment_by_name",
		models.ProvenanceSourceTableKey:  "equipment",
	}

	normalized := Normalize(row, []string{"create_work_order"})

	assert.Equal(t, "eq-1", normalized.ID)
	assert.Equal(t, "equipment", normalized.Type)
	assert.Equal(t, "Main Engine", normalized.Title)
	assert.Equal(t, "Caterpillar · engine room", normalized.Subtitle)
	assert.Equal(t, "serviced last month", normalized.Preview)
	assert.Equal(t, []string{"create_work_order"}, normalized.Actions)

	// Unclaimed columns and provenance land in metadata.
	assert.Equal(t, 12500, normalized.Metadata["running_hours"])
	assert.Equal(t, "equipment_by_name", normalized.Metadata[models.ProvenanceCapabilityKey])
	// Claimed columns do not.
	assert.NotContains(t, normalized.Metadata, "name")
	assert.NotContains(t, normalized.Metadata, "manufacturer")
}

func TestNormalize_TitleFallback(t *testing.T) {
	normalized := Normalize(map[string]any{"id": "x-1"}, nil)
	assert.Equal(t, "Untitled", normalized.Title)
}

func TestNormalize_PreviewTruncated(t *testing.T) {
	long := strings.Repeat("a", maxPreviewLength+100)
	normalized := Normalize(map[string]any{"description": long}, nil)
	assert.Len(t, normalized.Preview, maxPreviewLength)
}

func TestNormalize_TruncationKeepsRunesWhole(t *testing.T) {
	// Fill to just under the cap, then place a multi-byte rune across
	// the boundary; the cut must back up instead of emitting a partial
	// rune.
	long := strings.Repeat("a", maxPreviewLength-1) + "ü" + strings.Repeat("b", 50)
	normalized := Normalize(map[string]any{"description": long}, nil)

	assert.True(t, utf8.ValidString(normalized.Preview))
	assert.Len(t, normalized.Preview, maxPreviewLength-1)
	assert.True(t, strings.HasSuffix(normalized.Preview, "a"))
}

func TestNormalize_SubtitleFallbackColumn(t *testing.T) {
	row := map[string]any{
		"id":      "wo-1",
		"title":   "Replace impeller",
		"summary": "quarterly maintenance",
	}
	normalized := Normalize(row, nil)
	assert.Equal(t, "quarterly maintenance", normalized.Subtitle)
}

func TestNormalizeAll_SkipsFailures(t *testing.T) {
	queryResults := []*models.QueryResult{
		nil,
		{Capability: "broken", Success: false},
		{
			Capability: "equipment_by_name",
			Success:    true,
			Rows: []map[string]any{
				{"id": "eq-1", "name": "Generator", models.ProvenanceCapabilityKey: "equipment_by_name"},
				{"id": "eq-2", "name": "Watermaker", models.ProvenanceCapabilityKey: "equipment_by_name"},
			},
		},
	}

	actionsFor := func(capability string) []string {
		require.Equal(t, "equipment_by_name", capability)
		return []string{"view_history"}
	}

	normalized := NormalizeAll(queryResults, actionsFor)
	require.Len(t, normalized, 2)
	assert.Equal(t, "Generator", normalized[0].Title)
	assert.Equal(t, []string{"view_history"}, normalized[1].Actions)
}
