// Package results reshapes heterogeneous capability rows into one
// uniform result shape, ranks them with diversification, and groups
// them by user-facing domain.
package results

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vesselworks/helm-search/pkg/models"
)

const (
	maxSubtitleLength = 200
	maxPreviewLength  = 500
	defaultTitle      = "Untitled"
)

// Candidate column lists, in priority order. The first present,
// non-empty column wins.
var (
	idColumns      = []string{"id", "uuid", "work_order_id", "part_id", "equipment_id", "chunk_id", "document_id"}
	titleColumns   = []string{"name", "title", "code", "part_number", "sensor_type", "subject", "file_name"}
	previewColumns = []string{"description", "body", "content", "text", "chunk_text", "notes", "remedy", "snippet"}

	// Assembled into the subtitle when present, in this order.
	subtitleParts = []string{"manufacturer", "category", "part_number", "location", "model", "status", "sensor_type"}
	// Fallback subtitle columns when no parts are present.
	subtitleColumns = []string{"subtitle", "snippet", "summary", "description"}
)

// Normalize maps one provenance-tagged row to the uniform shape. The
// claimed columns move into the fixed fields; everything else (plus the
// provenance tags) lands in Metadata.
func Normalize(row map[string]any, actions []string) models.NormalizedResult {
	claimed := make(map[string]bool)

	id, idColumn := firstPresent(row, idColumns)
	claimed[idColumn] = true

	title, titleColumn := firstPresent(row, titleColumns)
	if title == "" {
		title = defaultTitle
	}
	claimed[titleColumn] = true

	subtitle := assembleSubtitle(row, claimed)

	preview, previewColumn := firstPresent(row, previewColumns)
	claimed[previewColumn] = true
	preview = truncate(preview, maxPreviewLength)

	sourceTable, _ := row[models.ProvenanceSourceTableKey].(string)

	metadata := make(map[string]any)
	for column, value := range row {
		if claimed[column] {
			continue
		}
		metadata[column] = value
	}

	return models.NormalizedResult{
		ID:       id,
		Type:     sourceTable,
		Title:    title,
		Subtitle: subtitle,
		Preview:  preview,
		Metadata: metadata,
		Actions:  actions,
	}
}

// NormalizeAll flattens successful query results into normalized
// results. actionsFor resolves a capability's declared actions.
func NormalizeAll(queryResults []*models.QueryResult, actionsFor func(capability string) []string) []models.NormalizedResult {
	var normalized []models.NormalizedResult
	for _, result := range queryResults {
		if result == nil || !result.Success {
			continue
		}
		for _, row := range result.Rows {
			capability, _ := row[models.ProvenanceCapabilityKey].(string)
			normalized = append(normalized, Normalize(row, actionsFor(capability)))
		}
	}
	return normalized
}

// assembleSubtitle joins descriptive fields; when none exist it falls
// back to an explicit subtitle-like column.
func assembleSubtitle(row map[string]any, claimed map[string]bool) string {
	var parts []string
	for _, column := range subtitleParts {
		if value := stringValue(row[column]); value != "" {
			parts = append(parts, value)
			claimed[column] = true
		}
	}
	if len(parts) > 0 {
		return truncate(strings.Join(parts, " · "), maxSubtitleLength)
	}

	fallback, column := firstPresent(row, subtitleColumns)
	claimed[column] = true
	return truncate(fallback, maxSubtitleLength)
}

func firstPresent(row map[string]any, columns []string) (string, string) {
	for _, column := range columns {
		if value := stringValue(row[column]); value != "" {
			return value, column
		}
	}
	return "", ""
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

// truncate caps text at max bytes without splitting a multi-byte rune;
// the cut backs up to the nearest rune boundary.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
