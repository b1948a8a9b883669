// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the Gemini embedding client used for query and
// catalogue encoding.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/kona-labs/study-advisor-go/internal/errors"
	"github.com/kona-labs/study-advisor-go/internal/ratelimit"
)

const (
	// GeminiAPIRateLimit is the requests per minute limit for the embedding API.
	GeminiAPIRateLimit = 1000

	// geminiAPIBaseURL is the base URL for the Gemini API.
	geminiAPIBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// Retry configuration for transient embedding errors.
	embedMaxRetries    = 5
	embedInitialDelay  = 2 * time.Second
	embedBackoffFactor = 2.0
)

// EmbeddingClient generates embedding vectors via the Gemini API.
// Query vectors and stored catalogue vectors must come from the same model
// and dimension for distances to be meaningful, so both are fixed at
// construction.
type EmbeddingClient struct {
	apiKey      string
	model       string
	dimensions  int
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
}

// NewEmbeddingClient creates a Gemini embedding client producing vectors of
// the given dimension. An empty model selects DefaultEmbeddingModel.
func NewEmbeddingClient(apiKey, model string, dimensions int) *EmbeddingClient {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &EmbeddingClient{
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: ratelimit.NewPerMinute(GeminiAPIRateLimit),
	}
}

type embeddingRequest struct {
	Model                string           `json:"model"`
	Content              embeddingContent `json:"content"`
	OutputDimensionality int              `json:"outputDimensionality,omitempty"`
}

type embeddingContent struct {
	Parts []embeddingPart `json:"parts"`
}

type embeddingPart struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Embed generates an embedding vector for the given text.
// Transient errors (429, 5xx, network) are retried with exponential backoff.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty or whitespace-only text cannot be embedded")
	}

	var lastErr error
	delay := embedInitialDelay

	for attempt := 0; attempt <= embedMaxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", wrapDeadline(err))
		}

		result, retryable, err := c.embedOnce(ctx, text)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !retryable {
			return nil, err
		}
		if attempt == embedMaxRetries {
			break
		}

		if err := Sleep(ctx, CalculateBackoff(1, delay, delay)); err != nil {
			return nil, wrapDeadline(err)
		}

		delay = time.Duration(float64(delay) * embedBackoffFactor)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", wrapDeadline(lastErr))
}

// wrapDeadline maps context deadline expiry onto the timeout sentinel so
// callers can distinguish a slow backend from a broken one.
func wrapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
	}
	return err
}

// embedOnce performs a single embedding request.
// Returns (result, retryable, error).
func (c *EmbeddingClient) embedOnce(ctx context.Context, text string) ([]float32, bool, error) {
	url := fmt.Sprintf("%s/%s:embedContent?key=%s", geminiAPIBaseURL, c.model, c.apiKey)

	reqBody := embeddingRequest{
		Model: fmt.Sprintf("models/%s", c.model),
		Content: embeddingContent{
			Parts: []embeddingPart{{Text: text}},
		},
		OutputDimensionality: c.dimensions,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors are retryable
		return nil, true, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("HTTP %d: server error or rate limited", resp.StatusCode)
	}

	var embeddingResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}

	if embeddingResp.Error != nil {
		retryable := embeddingResp.Error.Code == http.StatusTooManyRequests ||
			embeddingResp.Error.Status == "RESOURCE_EXHAUSTED" ||
			embeddingResp.Error.Code >= 500

		return nil, retryable, fmt.Errorf("API error %d: %s - %s",
			embeddingResp.Error.Code,
			embeddingResp.Error.Status,
			embeddingResp.Error.Message)
	}

	values := embeddingResp.Embedding.Values
	if len(values) == 0 {
		return nil, false, fmt.Errorf("empty embedding returned")
	}
	if c.dimensions > 0 && len(values) != c.dimensions {
		return nil, false, fmt.Errorf("embedding has %d dimensions, want %d", len(values), c.dimensions)
	}

	return values, false, nil
}

// Model returns the embedding model name.
func (c *EmbeddingClient) Model() string {
	return c.model
}

// Dimensions returns the configured output dimension.
func (c *EmbeddingClient) Dimensions() int {
	return c.dimensions
}

// IsConfigured returns true if the API key is set.
func (c *EmbeddingClient) IsConfigured() bool {
	return c.apiKey != ""
}
