// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the unified OpenAI-compatible implementation of answer
// generation. It works with any OpenAI-compatible provider via custom BaseURL.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiCompleter generates answers using an OpenAI-compatible API.
// It implements the Completer interface.
type openaiCompleter struct {
	client   openai.Client
	model    string
	provider Provider
}

// NewOpenAICompleter creates an OpenAI-compatible completer.
// Returns nil if apiKey is empty (generation disabled).
func NewOpenAICompleter(_ context.Context, provider Provider, apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: feature disabled when no API key
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqModel
		default:
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiCompleter{
		client:   client,
		model:    model,
		provider: provider,
	}, nil
}

// Complete generates a text completion for the given prompt.
func (c *openaiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("completer not configured")
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.3),
		MaxTokens:   openai.Int(1024),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "answer generation API call failed",
			"provider", c.provider,
			"model", c.model,
			"prompt_length", len(prompt),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty response from model")
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", fmt.Errorf("model returned no text")
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "answer generation completed",
			"provider", c.provider,
			"model", c.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
			"duration_ms", duration.Milliseconds())
	}

	return result, nil
}

// IsEnabled returns true if the completer is properly initialized.
func (c *openaiCompleter) IsEnabled() bool {
	return c != nil
}

// Provider returns the provider type for this completer.
func (c *openaiCompleter) Provider() Provider {
	if c == nil {
		return ""
	}
	return c.provider
}

// Close releases resources.
// Safe to call on nil receiver.
func (c *openaiCompleter) Close() error {
	return nil
}
