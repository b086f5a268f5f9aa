package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// thinkTagPattern strips <think>...</think> blocks some models prepend.
var thinkTagPattern = regexp.MustCompile(`(?s)^[\s]*<think>.*?</think>[\s]*`)

// ExtractJSON pulls the first balanced JSON object or array out of a
// model response that may be wrapped in thinking tags, markdown fences
// or prose.
func ExtractJSON(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")
	cleaned = strings.TrimSpace(cleaned)

	objStart := strings.IndexByte(cleaned, '{')
	arrStart := strings.IndexByte(cleaned, '[')

	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if extracted, ok := extractBalanced(cleaned[arrStart:], '[', ']'); ok && json.Valid([]byte(extracted)) {
			return extracted, nil
		}
	}
	if objStart >= 0 {
		if extracted, ok := extractBalanced(cleaned[objStart:], '{', '}'); ok && json.Valid([]byte(extracted)) {
			return extracted, nil
		}
	}
	return "", fmt.Errorf("no valid JSON found in response")
}

// extractBalanced scans for the matching close delimiter, respecting
// string literals and escapes.
func extractBalanced(text string, open, close byte) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		char := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case char == '\\' && inString:
			escaped = true
		case char == '"':
			inString = !inString
		case inString:
		case char == open:
			depth++
		case char == close:
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}
	return "", false
}
