package llm

import (
	"context"

	"github.com/vesselworks/helm-search/pkg/models"
)

// MockExtractor is a configurable EntityExtractor for tests.
type MockExtractor struct {
	Entities []models.Entity
	Err      error
	Calls    int
}

// ExtractEntities returns the configured entities or error.
func (m *MockExtractor) ExtractEntities(_ context.Context, _ string) ([]models.Entity, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Entities, nil
}
