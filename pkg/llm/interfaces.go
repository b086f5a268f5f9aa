// Package llm provides the OpenAI-compatible AI fallback extractor.
// The pipeline never trusts its output directly: every AI-sourced
// entity still has to pass the merger's text-grounding rule.
package llm

import (
	"context"

	"github.com/vesselworks/helm-search/pkg/models"
)

// EntityExtractor is the AI fallback extraction interface. Use it for
// dependency injection to enable mocking in tests.
type EntityExtractor interface {
	// ExtractEntities asks the model for entity candidates in the text.
	// Every returned entity carries Source == models.SourceAI.
	ExtractEntities(ctx context.Context, text string) ([]models.Entity, error)
}

// Ensure implementations satisfy the interface at compile time.
var (
	_ EntityExtractor = (*Client)(nil)
	_ EntityExtractor = (*MockExtractor)(nil)
)
