// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the fallback wrapper for cross-provider failover.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/kona-labs/study-advisor-go/internal/errors"
)

// GenerationRecorder records the outcome of generation attempts, keyed by
// provider name and "success"/"error" status.
type GenerationRecorder interface {
	RecordGeneration(provider, status string)
}

// FallbackCompleter wraps a primary and fallback Completer.
// It implements three-layer degradation:
// 1. Retry with backoff (same provider)
// 2. Provider fallback (primary then fallback provider)
// 3. Error return, letting the caller render a deterministic response
type FallbackCompleter struct {
	primary     Completer
	fallback    Completer
	retryConfig RetryConfig
	recorder    GenerationRecorder
}

// NewFallbackCompleter creates a fallback-enabled completer.
// If fallback is nil, only retry logic is applied to the primary provider.
func NewFallbackCompleter(primary, fallback Completer, cfg RetryConfig) *FallbackCompleter {
	return &FallbackCompleter{
		primary:     primary,
		fallback:    fallback,
		retryConfig: cfg,
	}
}

// WithRecorder attaches a per-provider outcome recorder and returns the
// completer for chaining.
func (f *FallbackCompleter) WithRecorder(r GenerationRecorder) *FallbackCompleter {
	f.recorder = r
	return f
}

func (f *FallbackCompleter) record(provider Provider, status string) {
	if f.recorder != nil {
		f.recorder.RecordGeneration(provider.String(), status)
	}
}

// Complete tries the primary completer first with retry, then falls back.
func (f *FallbackCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if f == nil || f.primary == nil {
		return "", fmt.Errorf("completer not configured: %w", apperrors.ErrBackendUnavailable)
	}

	start := time.Now()
	provider := f.primary.Provider()

	result, err := f.completeWithRetry(ctx, f.primary, prompt)
	if err == nil {
		f.record(provider, "success")
		return result, nil
	}
	f.record(provider, "error")

	action := ClassifyError(err)
	slog.WarnContext(ctx, "primary completer failed",
		"provider", provider,
		"error", err,
		"action", action,
		"duration", time.Since(start))

	if f.fallback == nil {
		return "", err
	}

	slog.InfoContext(ctx, "falling back to secondary provider",
		"from", provider,
		"to", f.fallback.Provider())

	result, err = f.completeWithRetry(ctx, f.fallback, prompt)
	if err == nil {
		f.record(f.fallback.Provider(), "success")
		return result, nil
	}
	f.record(f.fallback.Provider(), "error")

	slog.ErrorContext(ctx, "all completers failed",
		"primary", provider,
		"fallback", f.fallback.Provider(),
		"error", err)

	return "", fmt.Errorf("all providers failed: %w", err)
}

// completeWithRetry attempts completion with retry logic.
func (f *FallbackCompleter) completeWithRetry(ctx context.Context, completer Completer, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < f.retryConfig.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		result, err := completer.Complete(ctx, prompt)
		if err == nil {
			return result, nil
		}

		lastErr = err
		action := ClassifyError(err)

		if action != ActionRetry {
			return "", err
		}

		if attempt == f.retryConfig.MaxAttempts-1 {
			break
		}

		backoff := CalculateBackoff(attempt+1, f.retryConfig.InitialDelay, f.retryConfig.MaxDelay)

		if !HasSufficientBudget(ctx, backoff) {
			return "", fmt.Errorf("timeout during retry: %w", lastErr)
		}

		slog.DebugContext(ctx, "retrying completion",
			"provider", completer.Provider(),
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err)

		if err := Sleep(ctx, backoff); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

// IsEnabled returns true if at least one completer is enabled.
func (f *FallbackCompleter) IsEnabled() bool {
	if f == nil {
		return false
	}
	return (f.primary != nil && f.primary.IsEnabled()) ||
		(f.fallback != nil && f.fallback.IsEnabled())
}

// Provider returns the primary provider type.
func (f *FallbackCompleter) Provider() Provider {
	if f == nil || f.primary == nil {
		return ""
	}
	return f.primary.Provider()
}

// Close closes both completers.
func (f *FallbackCompleter) Close() error {
	if f == nil {
		return nil
	}

	var errs []error
	if f.primary != nil {
		if err := f.primary.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if f.fallback != nil {
		if err := f.fallback.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
