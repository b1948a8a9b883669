// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains shared types, interfaces, and configuration for
// answer generation with multi-provider fallback support.
//
// Architecture:
// - Gemini: Uses google.golang.org/genai (official SDK)
// - Groq: Uses github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Fallback strategy:
// 1. Retry: same provider retried with exponential backoff on transient errors
// 2. Provider chain: next provider in the configured order
// 3. Graceful degradation: callers render a deterministic fallback response
package genai

import (
	"context"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible, fast inference).
	ProviderGroq Provider = "groq"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not included as it uses a different SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq: "https://api.groq.com/openai/v1/",
}

// IsOpenAICompatible returns true if the provider uses an OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	_, ok := ProviderEndpoint[p]
	return ok
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Completer defines the interface for answer generation.
// Implementations include Gemini (native SDK) and OpenAI-compatible
// providers (Groq).
type Completer interface {
	// Complete generates a text completion for the given prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// IsEnabled returns true if the completer is properly initialized.
	IsEnabled() bool
	// Close releases any resources held by the completer.
	Close() error
	// Provider returns the provider type for metrics and logging.
	Provider() Provider
}

// RetryConfig defines retry behavior for LLM API calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialDelay is the base delay before first retry.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration
}

// Default model configurations.
const (
	// DefaultGeminiModel offers strong instruction following with fast inference.
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultGroqModel is a production-grade model with strong accuracy.
	DefaultGroqModel = "llama-3.3-70b-versatile"

	// DefaultEmbeddingModel is Google's text embedding model, which supports
	// MRL truncation to smaller output dimensions.
	DefaultEmbeddingModel = "gemini-embedding-001"
)

// Retry configuration defaults.
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns the standard retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}
