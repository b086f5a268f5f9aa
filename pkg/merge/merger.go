// Package merge combines entity candidates from multiple extraction
// sources, resolves span overlaps by score, filters by confidence,
// applies domain validation rules, and canonicalizes the survivors.
package merge

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/models"
)

// sourceMultipliers discount confidence by extraction source before
// threshold comparison. Pattern matches are structural and trusted
// most; AI output is useful but unverified until grounded.
var sourceMultipliers = map[models.EntitySource]float64{
	models.SourcePattern:    1.0,
	models.SourceVocabulary: 0.95,
	models.SourceAI:         0.85,
}

// typePrecedence ranks entity types for overlap resolution: a fault
// code beats a model designator beats an equipment noun over the same
// span. Higher is stronger.
var typePrecedence = map[models.EntityType]int{
	models.EntityTypeFaultCode:    10,
	models.EntityTypePartNumber:   9,
	models.EntityTypeMeasurement:  8,
	models.EntityTypeModel:        7,
	models.EntityTypeOrganization: 6,
	models.EntityTypeEquipment:    5,
	models.EntityTypeLocation:     4,
	models.EntityTypeSymptom:      3,
	models.EntityTypeStatus:       2,
	models.EntityTypeAction:       1,
}

// defaultThreshold applies when no per-type/source override exists.
const defaultThreshold = 0.5

// confidenceThresholds hold per-(type, source) minimum adjusted
// confidence. AI-sourced candidates carry a higher bar across the board.
var confidenceThresholds = map[models.EntityType]map[models.EntitySource]float64{
	models.EntityTypeFaultCode: {
		models.SourceAI: 0.7,
	},
	models.EntityTypePartNumber: {
		models.SourcePattern: 0.6,
		models.SourceAI:      0.75,
	},
	models.EntityTypeSymptom: {
		models.SourceVocabulary: 0.45,
		models.SourceAI:         0.6,
	},
	models.EntityTypeAction: {
		models.SourceVocabulary: 0.45,
	},
	models.EntityTypeOrganization: {
		models.SourceAI: 0.7,
	},
}

func thresholdFor(entityType models.EntityType, source models.EntitySource) float64 {
	if bySource, ok := confidenceThresholds[entityType]; ok {
		if threshold, ok := bySource[source]; ok {
			return threshold
		}
	}
	return defaultThreshold
}

// DropRecord explains one rejected candidate, surfaced for tuning.
type DropRecord struct {
	Entity models.Entity     `json:"entity"`
	Reason models.DropReason `json:"reason"`
}

// Outcome is the result of a merge pass.
type Outcome struct {
	Entities  []models.Entity             `json:"entities"`
	SourceMix map[models.EntitySource]int `json:"source_mix"`
	Drops     []DropRecord                `json:"-"`
}

// Merger merges and validates candidates. Stateless beyond its logger;
// safe for concurrent use.
type Merger struct {
	logger *zap.Logger
}

// NewMerger builds a merger.
func NewMerger(logger *zap.Logger) *Merger {
	return &Merger{logger: logger.Named("merger")}
}

// MergeAndValidate combines pattern/vocabulary candidates with
// AI-sourced ones, producing the canonical entity set for planning.
// Stages run in a fixed order: score+sort, dedup+overlap resolution,
// confidence filter, domain validation, normalization, re-dedup on the
// canonical form. Input slices are never mutated.
func (m *Merger) MergeAndValidate(patternEntities, aiEntities []models.Entity, fullText string) Outcome {
	candidates := make([]models.Entity, 0, len(patternEntities)+len(aiEntities))
	candidates = append(candidates, patternEntities...)
	candidates = append(candidates, aiEntities...)

	outcome := Outcome{SourceMix: make(map[models.EntitySource]int)}
	if len(candidates) == 0 {
		return outcome
	}

	// Score and sort descending. Ties break lexicographically on
	// lowercased text, then on type, so output never depends on
	// incidental input ordering.
	for i := range candidates {
		candidates[i].AdjustedConfidence = candidates[i].Confidence * sourceMultipliers[candidates[i].Source]
		candidates[i].OverlapScore = overlapScore(candidates[i])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].OverlapScore != candidates[j].OverlapScore {
			return candidates[i].OverlapScore > candidates[j].OverlapScore
		}
		ti, tj := strings.ToLower(candidates[i].Text), strings.ToLower(candidates[j].Text)
		if ti != tj {
			return ti < tj
		}
		return candidates[i].Type < candidates[j].Type
	})

	// Deduplicate and resolve span overlaps, best score first.
	seen := make(map[string]bool)
	var coveredSpans []models.Span
	var kept []models.Entity
	for _, candidate := range candidates {
		key := strings.ToLower(candidate.Text) + "|" + string(candidate.Type)
		if seen[key] {
			outcome.Drops = append(outcome.Drops, DropRecord{Entity: candidate, Reason: models.ReasonDuplicateText})
			continue
		}
		if candidate.Span != nil && overlapsAny(*candidate.Span, coveredSpans) {
			outcome.Drops = append(outcome.Drops, DropRecord{Entity: candidate, Reason: models.ReasonOverlapLoser})
			continue
		}
		seen[key] = true
		if candidate.Span != nil && candidate.Span.Valid() {
			coveredSpans = append(coveredSpans, *candidate.Span)
		}
		kept = append(kept, candidate)
	}

	// Confidence filter.
	var confident []models.Entity
	for _, entity := range kept {
		if entity.AdjustedConfidence < thresholdFor(entity.Type, entity.Source) {
			outcome.Drops = append(outcome.Drops, DropRecord{Entity: entity, Reason: models.ReasonConfidenceFail})
			continue
		}
		confident = append(confident, entity)
	}

	// Domain validation. Rules see the full confident set so proximity
	// rules can consult sibling entities.
	var valid []models.Entity
	for _, entity := range confident {
		if reason := validate(entity, confident, fullText); reason != "" {
			outcome.Drops = append(outcome.Drops, DropRecord{Entity: entity, Reason: reason})
			continue
		}
		valid = append(valid, entity)
	}

	// Normalize, then re-deduplicate on the canonical form to catch
	// collisions normalization created (two spellings of one fault code).
	canonicalSeen := make(map[string]bool)
	for _, entity := range valid {
		normalized := Normalize(entity)
		key := strings.ToLower(normalized.Canonical) + "|" + string(normalized.Type)
		if canonicalSeen[key] {
			outcome.Drops = append(outcome.Drops, DropRecord{Entity: normalized, Reason: models.ReasonDuplicateText})
			continue
		}
		canonicalSeen[key] = true
		outcome.Entities = append(outcome.Entities, normalized)
		outcome.SourceMix[normalized.Source]++
	}

	m.logDrops(outcome)
	return outcome
}

// overlapScore prefers longer compound spans and higher-precedence
// types among overlapping candidates.
func overlapScore(entity models.Entity) float64 {
	score := entity.AdjustedConfidence * 10
	if entity.Span != nil {
		length := entity.Span.Len()
		if length > 40 {
			length = 40
		}
		score += float64(length) * 0.1
	}
	score += float64(typePrecedence[entity.Type]) * 0.5
	return score
}

func overlapsAny(span models.Span, covered []models.Span) bool {
	for _, existing := range covered {
		if span.Overlaps(existing) {
			return true
		}
	}
	return false
}

// logDrops records accepted/rejected counts and per-entity reasons at
// Debug. Drops are expected outcomes, never errors.
func (m *Merger) logDrops(outcome Outcome) {
	if !m.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	for _, drop := range outcome.Drops {
		reason := string(drop.Reason)
		if drop.Reason == models.ReasonConfidenceFail {
			reason = reason + "_" + string(drop.Entity.Type)
		}
		m.logger.Debug("candidate dropped",
			zap.String("text", drop.Entity.Text),
			zap.String("type", string(drop.Entity.Type)),
			zap.String("source", string(drop.Entity.Source)),
			zap.String("reason", reason))
	}
	m.logger.Debug("merge complete",
		zap.Int("accepted", len(outcome.Entities)),
		zap.Int("dropped", len(outcome.Drops)))
}
