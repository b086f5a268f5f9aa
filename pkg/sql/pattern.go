package sql

import (
	"regexp"
	"strings"
)

// minPatternTokenLength skips tokens too short to be selective in a
// wildcard join. Single characters (and leftover punctuation fragments)
// would match nearly every row.
const minPatternTokenLength = 2

var patternTokenSplit = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// SmartILikePattern builds the case-insensitive substring pattern for a
// multi-token search value: punctuation and whitespace are normalized
// away and the remaining tokens are wildcard-joined, so "turbo gasket"
// becomes "%turbo%gasket%" and matches "Turbocharger Gasket Set".
//
// Tokens shorter than two characters are skipped unless they are purely
// numeric (a "2" in "type 2 filter" is still selective next to its
// neighbors). If every token is skipped, the whole trimmed value is
// used as a single substring.
func SmartILikePattern(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "%"
	}

	var tokens []string
	for _, token := range patternTokenSplit.Split(trimmed, -1) {
		if token == "" {
			continue
		}
		if len(token) < minPatternTokenLength && !isNumeric(token) {
			continue
		}
		tokens = append(tokens, escapeLikeToken(token))
	}

	if len(tokens) == 0 {
		return "%" + escapeLikeToken(trimmed) + "%"
	}
	return "%" + strings.Join(tokens, "%") + "%"
}

func isNumeric(token string) bool {
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(token) > 0
}

// escapeLikeToken escapes LIKE metacharacters so user tokens match
// literally.
func escapeLikeToken(token string) string {
	token = strings.ReplaceAll(token, `\`, `\\`)
	token = strings.ReplaceAll(token, `%`, `\%`)
	token = strings.ReplaceAll(token, `_`, `\_`)
	return token
}
