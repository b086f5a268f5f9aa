package results

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/models"
)

// Match-mode base scores, strictly ordered so an exact id hit always
// outranks a canonical hit, which outranks fuzzy, which outranks RPC.
const (
	scoreExactMatch     = 100.0
	scoreCanonicalMatch = 80.0
	scoreFuzzyMatch     = 60.0
	scoreRPCMatch       = 40.0

	conjunctionBonus = 15.0
	intentPriorBonus = 10.0
	recencyBonus     = 10.0
	noisePenalty     = 12.0

	recencyWindow = 30 * 24 * time.Hour
)

// operationalTables are time-sensitive: fresh rows matter more.
var operationalTables = map[string]bool{
	"work_orders":     true,
	"sensor_readings": true,
	"handover_notes":  true,
}

// diagnosticTables benefit from a diagnostic-intent prior.
var diagnosticTables = map[string]bool{
	"fault_codes":     true,
	"work_orders":     true,
	"document_chunks": true,
}

var timestampColumns = []string{"created_at", "recorded_at", "updated_at", "due_date"}

// RankerConfig controls diversification.
type RankerConfig struct {
	MaxPerTable  int // cap on results from a single source table
	MaxPerParent int // cap on child rows sharing one parent grouping key
	MaxResults   int // final truncation
}

// DefaultRankerConfig mirrors the service defaults.
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{MaxPerTable: 5, MaxPerParent: 2, MaxResults: 25}
}

// parentKeyColumns identify a result's parent grouping (chunks of the
// same document, readings from the same sensor).
var parentKeyColumns = []string{"document_id", "parent_id", "sensor_id"}

// Ranker scores and diversifies normalized results against the merged
// entity set.
type Ranker struct {
	config RankerConfig
	logger *zap.Logger
}

// NewRanker builds a ranker.
func NewRanker(config RankerConfig, logger *zap.Logger) *Ranker {
	if config.MaxPerTable < 1 {
		config.MaxPerTable = 5
	}
	if config.MaxPerParent < 1 {
		config.MaxPerParent = 2
	}
	if config.MaxResults < 1 {
		config.MaxResults = 25
	}
	return &Ranker{config: config, logger: logger.Named("ranker")}
}

// Rank scores every result, sorts descending, applies per-table and
// per-parent diversification caps, and truncates. Input is not mutated.
func (r *Ranker) Rank(input []models.NormalizedResult, entities []models.Entity) []models.NormalizedResult {
	scored := make([]models.NormalizedResult, len(input))
	copy(scored, input)

	diagnostic := diagnosticIntent(entities)
	for i := range scored {
		scored[i].Score = r.score(scored[i], entities, diagnostic)
	}

	// Stable sort so equal scores keep normalization order, which is
	// itself deterministic.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return r.diversify(scored)
}

// score computes the composite relevance score for one result.
func (r *Ranker) score(result models.NormalizedResult, entities []models.Entity, diagnostic bool) float64 {
	haystack := strings.ToLower(result.Title + " " + result.Subtitle + " " + result.Preview)
	for _, value := range result.Metadata {
		if str, ok := value.(string); ok {
			haystack += " " + strings.ToLower(str)
		}
	}

	base := scoreRPCMatch
	matched := 0
	for _, entity := range entities {
		text := strings.ToLower(entity.Text)
		canonical := strings.ToLower(entity.Canonical)

		entityBase := 0.0
		switch {
		case text != "" && (strings.EqualFold(result.ID, entity.Text) || strings.EqualFold(result.Title, entity.Text)):
			entityBase = scoreExactMatch
		case canonical != "" && (strings.EqualFold(result.Title, entity.Canonical) || strings.Contains(haystack, canonical)):
			entityBase = scoreCanonicalMatch
		case text != "" && strings.Contains(haystack, text):
			entityBase = scoreFuzzyMatch
		}
		if entityBase > 0 {
			matched++
			if entityBase > base {
				base = entityBase
			}
		}
	}

	score := base

	// Conjunction bonus: satisfying several extracted entities at once
	// is a strong relevance signal.
	if matched > 1 {
		score += conjunctionBonus * float64(matched-1)
	}

	// Intent prior: diagnostic queries favor operational/diagnostic
	// tables; vague ones favor the equipment catalog.
	if diagnostic && diagnosticTables[result.Type] {
		score += intentPriorBonus
	} else if !diagnostic && result.Type == "equipment" {
		score += intentPriorBonus / 2
	}

	if operationalTables[result.Type] && isRecent(result.Metadata) {
		score += recencyBonus
	}

	// Noise penalty: nothing in the result text matches any entity, so
	// this row only got here through an opaque RPC hit.
	if matched == 0 {
		score -= noisePenalty
	}

	return score
}

// diversify enforces per-table and per-parent caps in rank order, then
// truncates to the configured maximum.
func (r *Ranker) diversify(ranked []models.NormalizedResult) []models.NormalizedResult {
	perTable := make(map[string]int)
	perParent := make(map[string]int)

	diversified := make([]models.NormalizedResult, 0, len(ranked))
	for _, result := range ranked {
		if perTable[result.Type] >= r.config.MaxPerTable {
			continue
		}
		parent := parentKey(result)
		if parent != "" && perParent[parent] >= r.config.MaxPerParent {
			continue
		}

		perTable[result.Type]++
		if parent != "" {
			perParent[parent]++
		}
		diversified = append(diversified, result)
		if len(diversified) >= r.config.MaxResults {
			break
		}
	}

	r.logger.Debug("ranking complete",
		zap.Int("input", len(ranked)),
		zap.Int("output", len(diversified)))
	return diversified
}

func parentKey(result models.NormalizedResult) string {
	for _, column := range parentKeyColumns {
		if value := stringValue(result.Metadata[column]); value != "" {
			return result.Type + ":" + column + ":" + value
		}
	}
	return ""
}

// diagnosticIntent reports whether the query reads as troubleshooting
// rather than browsing: a fault code, or a symptom paired with a
// measurement.
func diagnosticIntent(entities []models.Entity) bool {
	var hasSymptom, hasMeasurement bool
	for _, entity := range entities {
		switch entity.Type {
		case models.EntityTypeFaultCode:
			return true
		case models.EntityTypeSymptom:
			hasSymptom = true
		case models.EntityTypeMeasurement:
			hasMeasurement = true
		}
	}
	return hasSymptom && hasMeasurement
}

// isRecent checks timestamp-like metadata columns against the recency
// window. Accepts time.Time values and RFC3339/date strings.
func isRecent(metadata map[string]any) bool {
	for _, column := range timestampColumns {
		value, ok := metadata[column]
		if !ok {
			continue
		}
		switch typed := value.(type) {
		case time.Time:
			if time.Since(typed) <= recencyWindow {
				return true
			}
		case string:
			for _, layout := range []string{time.RFC3339, "2006-01-02"} {
				if parsed, err := time.Parse(layout, typed); err == nil {
					if time.Since(parsed) <= recencyWindow {
						return true
					}
					break
				}
			}
		}
	}
	return false
}
