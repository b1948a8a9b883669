// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the Gemini implementation of answer generation.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiCompleter generates answers using Google's Gemini API.
// It implements the Completer interface.
type geminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter creates a Gemini-based completer.
// Returns nil if apiKey is empty (generation disabled).
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: feature disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiCompleter{
		client: client,
		model:  model,
	}, nil
}

// Complete generates a text completion for the given prompt.
func (c *geminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("gemini completer not configured")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: 1024,
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "answer generation API call failed",
			"provider", "gemini",
			"model", c.model,
			"prompt_length", len(prompt),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			answer.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(answer.String())
	if result == "" {
		return "", fmt.Errorf("model returned no text")
	}

	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "answer generation completed",
			"provider", "gemini",
			"model", c.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return result, nil
}

// IsEnabled returns true if the completer is properly initialized.
func (c *geminiCompleter) IsEnabled() bool {
	return c != nil && c.client != nil
}

// Provider returns the provider type for this completer.
func (c *geminiCompleter) Provider() Provider {
	return ProviderGemini
}

// Close releases resources.
// Safe to call on nil receiver.
func (c *geminiCompleter) Close() error {
	if c == nil {
		return nil
	}
	// genai.Client does not require explicit cleanup in current SDK version
	return nil
}
