package prompt

import (
	"strings"
	"testing"

	"github.com/kona-labs/study-advisor-go/internal/intent"
)

func TestForIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		intent intent.Intent
		want   Template
	}{
		{"search", intent.IntentSearch, searchTemplate},
		{"comparison", intent.IntentComparison, comparisonTemplate},
		{"recommendation", intent.IntentRecommendation, recommendationTemplate},
		{"error falls back to search", intent.IntentError, searchTemplate},
		{"unknown falls back to search", intent.Intent("bogus"), searchTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ForIntent(tt.intent); got != tt.want {
				t.Errorf("ForIntent(%v) returned wrong template", tt.intent)
			}
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	got := Build(intent.IntentSearch, "cheap MBA", "1. MBA\n   University: X\n")

	if strings.Contains(got, "{query}") || strings.Contains(got, "{programs}") {
		t.Errorf("unsubstituted placeholder in prompt:\n%s", got)
	}
	if !strings.Contains(got, "User Query: cheap MBA") {
		t.Errorf("query missing from prompt:\n%s", got)
	}
	if !strings.Contains(got, "1. MBA") {
		t.Errorf("programs missing from prompt:\n%s", got)
	}
}

func TestRenderLiteralSubstitution(t *testing.T) {
	t.Parallel()

	// Placeholder-like text in user input must not be expanded again.
	got := Build(intent.IntentSearch, "what is {programs}?", "context")
	if !strings.Contains(got, "User Query: what is {programs}?") {
		t.Errorf("user input was mangled:\n%s", got)
	}
}

func TestComparisonTemplateWording(t *testing.T) {
	t.Parallel()

	got := Build(intent.IntentComparison, "a vs b", "ctx")
	if !strings.Contains(got, "Programs to Compare:") {
		t.Errorf("comparison prompt missing section header:\n%s", got)
	}
	if !strings.Contains(got, "pros and cons") {
		t.Errorf("comparison prompt missing instruction:\n%s", got)
	}
}
