package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/models"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(&Config{Model: "gpt-4o-mini"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient(&Config{Endpoint: "http://localhost:11434/v1"}, zap.NewNop())
	assert.Error(t, err)

	client, err := NewClient(&Config{
		Endpoint: "http://localhost:11434/v1/",
		Model:    "llama3",
		Timeout:  2 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestFlexibleConfidence(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{name: "number", raw: `0.8`, expected: 0.8},
		{name: "string number", raw: `"0.7"`, expected: 0.7},
		{name: "missing", raw: ``, expected: 0.5},
		{name: "null", raw: `null`, expected: 0.5},
		{name: "garbage string", raw: `"high"`, expected: 0.5},
		{name: "clamped high", raw: `1.7`, expected: 1},
		{name: "clamped low", raw: `-0.2`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, flexibleConfidence(json.RawMessage(tt.raw)), 0.0001)
		})
	}
}

func TestKnownEntityType(t *testing.T) {
	assert.True(t, knownEntityType(models.EntityTypeFaultCode))
	assert.True(t, knownEntityType(models.EntityTypeAction))
	assert.False(t, knownEntityType("vessel"))
	assert.False(t, knownEntityType(""))
}

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		errType   ErrorType
		retryable bool
	}{
		{name: "auth", err: errors.New("status code: 401"), errType: ErrorTypeAuth, retryable: false},
		{name: "model missing", err: errors.New("status code: 404"), errType: ErrorTypeModel, retryable: false},
		{name: "rate limited", err: errors.New("status code: 429"), errType: ErrorTypeUnknown, retryable: true},
		{name: "server error", err: errors.New("status code: 503"), errType: ErrorTypeEndpoint, retryable: true},
		{name: "timeout", err: context.DeadlineExceeded, errType: ErrorTypeTimeout, retryable: true},
		{name: "anything else", err: errors.New("connection refused"), errType: ErrorTypeUnknown, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyAPIError(tt.err)
			assert.Equal(t, tt.errType, classified.Type)
			assert.Equal(t, tt.retryable, classified.IsRetryable())
			assert.ErrorIs(t, classified, tt.err)
		})
	}
}

func TestMockExtractor(t *testing.T) {
	mock := &MockExtractor{Entities: []models.Entity{{Text: "pump", Type: models.EntityTypeEquipment}}}

	entities, err := mock.ExtractEntities(context.Background(), "pump")
	require.NoError(t, err)
	assert.Len(t, entities, 1)
	assert.Equal(t, 1, mock.Calls)

	mock.Err = errors.New("endpoint down")
	_, err = mock.ExtractEntities(context.Background(), "pump")
	assert.Error(t, err)
	assert.Equal(t, 2, mock.Calls)
}
