package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"nil", nil, ActionFail},
		{"context canceled", context.Canceled, ActionFail},
		{"deadline exceeded", context.DeadlineExceeded, ActionRetry},
		{"quota exhausted", errors.New("daily quota exceeded for project"), ActionFallback},
		{"billing issue", errors.New("billing account disabled"), ActionFallback},
		{"rate limited", errors.New("rate limit reached, too many requests"), ActionRetry},
		{"http 429", errors.New("HTTP 429: too many requests"), ActionRetry},
		{"server unavailable", errors.New("503 service temporarily unavailable"), ActionRetry},
		{"bad gateway", errors.New("502 bad gateway"), ActionRetry},
		{"internal error", errors.New("500 internal server error"), ActionRetry},
		{"gateway timeout", errors.New("504 gateway timeout"), ActionRetry},
		{"overloaded", errors.New("model is overloaded"), ActionRetry},
		{"connection reset", errors.New("connection reset by peer"), ActionRetry},
		{"request timeout", errors.New("408 request timeout"), ActionRetry},
		{"bad request", errors.New("400 bad request: malformed payload"), ActionFail},
		{"unauthorized", errors.New("401 unauthorized: invalid api key"), ActionFail},
		{"forbidden", errors.New("403 permission denied"), ActionFail},
		{"not found", errors.New("model not found"), ActionFail},
		{"unprocessable", errors.New("422 unprocessable entity"), ActionFail},
		{"unknown defaults to retry", errors.New("something odd happened"), ActionRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyWrappedError(t *testing.T) {
	t.Parallel()

	// Classification must see through fmt.Errorf wrapping for context errors.
	wrapped := fmt.Errorf("complete: %w", context.Canceled)
	if got := ClassifyError(wrapped); got != ActionFail {
		t.Errorf("ClassifyError(wrapped canceled) = %v, want fail", got)
	}
}

func TestErrorActionString(t *testing.T) {
	t.Parallel()

	if ActionRetry.String() != "retry" || ActionFallback.String() != "fallback" || ActionFail.String() != "fail" {
		t.Error("ErrorAction strings wrong")
	}
	if ErrorAction(99).String() != "unknown" {
		t.Error("out-of-range action should stringify as unknown")
	}
}
