// Package extract turns free-text operator queries into candidate
// entities using compiled regular-expression families and fixed
// vocabulary lookup. Extraction is deterministic and performs no I/O.
package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/models"
)

// maxInputLength bounds the text scanned per query. Longer input is
// truncated, never rejected.
const maxInputLength = 4096

// Extractor applies pattern families and vocabulary tables to raw text.
// Construct once at startup; safe for unsynchronized concurrent use.
type Extractor struct {
	families     []patternFamily
	vocabularies []compiledVocabulary
	logger       *zap.Logger
}

// NewExtractor builds an extractor with the compiled-in pattern and
// vocabulary tables.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{
		families:     patternFamilies,
		vocabularies: compileVocabularies(vocabularySets),
		logger:       logger.Named("extractor"),
	}
}

// Extract returns candidate entities grouped by type. Candidates are
// deduplicated case-insensitively per type; spans always refer to the
// original (possibly truncated) text. Running Extract twice on the same
// input yields identical output.
func (e *Extractor) Extract(text string) map[models.EntityType][]models.Entity {
	results := make(map[models.EntityType][]models.Entity)
	if strings.TrimSpace(text) == "" {
		return results
	}
	if len(text) > maxInputLength {
		text = text[:maxInputLength]
	}

	seen := make(map[models.EntityType]map[string]bool)
	keep := func(entity models.Entity) {
		key := strings.ToLower(entity.Text)
		if seen[entity.Type] == nil {
			seen[entity.Type] = make(map[string]bool)
		}
		if seen[entity.Type][key] {
			return
		}
		seen[entity.Type][key] = true
		results[entity.Type] = append(results[entity.Type], entity)
	}

	for _, family := range e.families {
		for _, pattern := range family.Patterns {
			for _, match := range pattern.FindAllStringSubmatchIndex(text, -1) {
				start, end := match[0], match[1]
				// Prefer the first capturing group when the expression has one.
				if len(match) >= 4 && match[2] >= 0 {
					start, end = match[2], match[3]
				}
				candidate := strings.TrimSpace(text[start:end])
				if candidate == "" {
					continue
				}
				keep(models.Entity{
					Text:       candidate,
					Type:       family.Type,
					Confidence: family.Confidence,
					Source:     models.SourcePattern,
					Span:       &models.Span{Start: start, End: end},
				})
			}
		}
	}

	for _, vocab := range e.vocabularies {
		for _, match := range vocab.Pattern.FindAllStringIndex(text, -1) {
			keep(models.Entity{
				Text:       text[match[0]:match[1]],
				Type:       vocab.Type,
				Confidence: vocab.Confidence,
				Source:     models.SourceVocabulary,
				Span:       &models.Span{Start: match[0], End: match[1]},
			})
		}
	}

	if e.logger.Core().Enabled(zap.DebugLevel) {
		total := 0
		for _, entities := range results {
			total += len(entities)
		}
		e.logger.Debug("extraction complete",
			zap.Int("candidate_count", total),
			zap.Int("type_count", len(results)))
	}

	return results
}

// Flatten collapses a typed candidate map into a single slice, in the
// stable type-precedence order the merger expects.
func Flatten(byType map[models.EntityType][]models.Entity) []models.Entity {
	var flat []models.Entity
	for _, entityType := range models.AllEntityTypes {
		flat = append(flat, byType[entityType]...)
	}
	return flat
}
