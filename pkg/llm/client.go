package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/models"
)

const systemPrompt = `You extract maintenance entities from yacht crew search queries.
Return ONLY a JSON array. Each element: {"text": "<exact substring from the query>",
"type": "<equipment|fault_code|measurement|part_number|model|organization|location|symptom|status|action>",
"confidence": <0.0-1.0>}.
Only extract text that literally appears in the query. Do not invent entities.`

// Config holds settings for the AI extraction client.
type Config struct {
	Endpoint string // base URL, e.g. "https://api.openai.com/v1"
	Model    string
	APIKey   string        // optional for local endpoints
	Timeout  time.Duration // per-request deadline
}

// Client calls an OpenAI-compatible endpoint to extract entities.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates an AI extraction client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 6 * time.Second
	}

	return &Client{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: timeout,
		logger:  logger.Named("ai-extractor"),
	}, nil
}

// rawEntity is the wire shape the model is asked to produce. Confidence
// arrives as RawMessage because models sometimes emit it as a string.
type rawEntity struct {
	Text       string          `json:"text"`
	Type       string          `json:"type"`
	Confidence json.RawMessage `json:"confidence"`
}

// ExtractEntities asks the model for candidates and converts them into
// AI-sourced entities with spans located in the original text. Output
// is unvalidated here; grounding happens in the merger.
func (c *Client) ExtractEntities(ctx context.Context, text string) ([]models.Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		c.logger.Debug("AI extraction failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, classifyAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, NewError(ErrorTypeParse, "response contained no choices", false, nil)
	}

	payload, err := ExtractJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, NewError(ErrorTypeParse, "response was not JSON", false, err)
	}

	var raw []rawEntity
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, NewError(ErrorTypeParse, "response JSON did not match the entity schema", false, err)
	}

	entities := make([]models.Entity, 0, len(raw))
	for _, candidate := range raw {
		entity := models.Entity{
			Text:       strings.TrimSpace(candidate.Text),
			Type:       models.EntityType(candidate.Type),
			Confidence: flexibleConfidence(candidate.Confidence),
			Source:     models.SourceAI,
		}
		if entity.Text == "" || !knownEntityType(entity.Type) {
			continue
		}
		if idx := strings.Index(strings.ToLower(text), strings.ToLower(entity.Text)); idx >= 0 {
			entity.Span = &models.Span{Start: idx, End: idx + len(entity.Text)}
		}
		entities = append(entities, entity)
	}

	c.logger.Debug("AI extraction complete",
		zap.Int("entity_count", len(entities)),
		zap.Duration("elapsed", time.Since(start)))
	return entities, nil
}

// flexibleConfidence tolerates string, number or missing confidence
// values, clamping into [0,1]. Missing defaults to 0.5.
func flexibleConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0.5
	}
	var numeric float64
	if err := json.Unmarshal(raw, &numeric); err != nil {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0.5
		}
		if _, err := fmt.Sscanf(str, "%f", &numeric); err != nil {
			return 0.5
		}
	}
	if numeric < 0 {
		return 0
	}
	if numeric > 1 {
		return 1
	}
	return numeric
}

func knownEntityType(entityType models.EntityType) bool {
	for _, known := range models.AllEntityTypes {
		if known == entityType {
			return true
		}
	}
	return false
}
