package merge

import (
	"sort"
	"strings"

	"github.com/vesselworks/helm-search/pkg/models"
)

// negationMarkers indicate an entity's text already expresses negation,
// so GroupByType must not prefix it again.
var negationMarkers = []string{"not ", "no ", "don't ", "never ", "do not "}

// GroupByType buckets display text by entity type for downstream
// consumers. Negated action/status entities get an explicit negation
// prefix; each bucket then goes through smart deduplication.
func GroupByType(entities []models.Entity) map[models.EntityType][]string {
	grouped := make(map[models.EntityType][]string)
	for _, entity := range entities {
		text := entity.DisplayText()
		if entity.Negated && (entity.Type == models.EntityTypeAction || entity.Type == models.EntityTypeStatus) {
			if !containsNegation(text) {
				if entity.Type == models.EntityTypeAction {
					text = "do not " + text
				} else {
					text = "no " + text
				}
			}
		}
		grouped[entity.Type] = append(grouped[entity.Type], text)
	}

	for entityType, terms := range grouped {
		grouped[entityType] = dedupeTerms(terms)
	}
	return grouped
}

func containsNegation(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range negationMarkers {
		if strings.HasPrefix(lowered, marker) {
			return true
		}
	}
	return false
}

// dedupeTerms merges exact duplicates (preferring the better-capitalized
// variant) and removes any term that is a substring of a longer kept
// term. Output is sorted alphabetically for stable presentation.
func dedupeTerms(terms []string) []string {
	// Longest first so substring absorption is a single forward pass.
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return strings.ToLower(sorted[i]) < strings.ToLower(sorted[j])
	})

	var kept []string
	for _, term := range sorted {
		lowered := strings.ToLower(term)
		absorbed := false
		for i, existing := range kept {
			existingLower := strings.ToLower(existing)
			if existingLower == lowered {
				// Exact duplicate: keep the better-capitalized variant.
				if capitalization(term) > capitalization(existing) {
					kept[i] = term
				}
				absorbed = true
				break
			}
			if strings.Contains(existingLower, lowered) || strings.Contains(lowered, existingLower) {
				absorbed = true
				break
			}
		}
		if !absorbed {
			kept = append(kept, term)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		return strings.ToLower(kept[i]) < strings.ToLower(kept[j])
	})
	return kept
}

// capitalization scores how deliberately cased a term looks. Proper
// case beats all-lower; all-caps acronyms beat both only when short.
func capitalization(term string) int {
	score := 0
	for i, r := range term {
		if r >= 'A' && r <= 'Z' {
			if i == 0 || term[i-1] == ' ' {
				score += 2
			} else {
				score++
			}
		}
	}
	return score
}
