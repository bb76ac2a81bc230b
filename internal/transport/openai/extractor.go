// Package openai implements slot extraction over an OpenAI-compatible chat API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/domain"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

const systemPrompt = `You extract photo search keywords from a user's request.
Return a JSON object {"slots": [...]} listing each visual subject the user asks for
(objects, animals, places, scenes) as a short lowercase phrase, in the order mentioned.
Ignore filler words such as "show me" or "photos of". Return {"slots": []} if none.`

// Config holds the chat provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	User    string
	Logger  *zap.Logger
}

// Extractor implements domain.SlotExtractor with a JSON-mode chat completion.
type Extractor struct {
	client *openai.Client
	model  string
	user   string
	logger *zap.Logger
}

// NewExtractor creates an OpenAI-compatible slot extractor.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		user:   cfg.User,
		logger: logger,
	}
}

type slotsResponse struct {
	Slots []string `json:"slots"`
}

// ExtractSlots implements domain.SlotExtractor.
func (e *Extractor) ExtractSlots(ctx context.Context, text string) ([]string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
		User:        e.user,
	})
	if err != nil {
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty chat response: %w", domain.ErrNLUUnavailable)
	}

	var parsed slotsResponse
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		e.logger.Debug("unparseable slot response", zap.String("content", content))
		return nil, fmt.Errorf("decode slots: %w: %w", domain.ErrNLUUnavailable, err)
	}

	slots := make([]string, 0, len(parsed.Slots))
	for _, s := range parsed.Slots {
		if s = strings.TrimSpace(s); s != "" {
			slots = append(slots, s)
		}
	}
	return slots, nil
}

// HealthCheck verifies API availability via ListModels.
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError wraps API failures with domain.ErrNLUUnavailable.
func parseAPIError(err error) error {
	wrap := domain.ErrNLUUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %w: %w", wrap, err)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
