package intent

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  Intent
	}{
		{"compare keyword", "compare MSc programs in London", IntentComparison},
		{"vs keyword", "oxford vs cambridge for CS", IntentComparison},
		{"difference keyword", "what is the difference in fees", IntentComparison},
		{"between keyword", "between these two universities which is cheaper", IntentComparison},
		{"recommend keyword", "recommend a data science program", IntentRecommendation},
		{"best keyword", "best MBA under 30k", IntentRecommendation},
		{"should keyword", "should I pick a one year masters", IntentRecommendation},
		{"suggest keyword", "suggest affordable programs", IntentRecommendation},
		{"plain search", "masters in artificial intelligence", IntentSearch},
		{"empty query", "", IntentSearch},
		{"case insensitive", "COMPARE these SCHOOLS", IntentComparison},
		{"comparison outranks recommendation", "compare the best programs", IntentComparison},
		{"substring match", "seventy-vs-thirty split", IntentComparison},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.query); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassifyNeverReturnsError(t *testing.T) {
	t.Parallel()

	queries := []string{"", "error", "Error processing query", "panic"}
	for _, q := range queries {
		if got := Classify(q); got == IntentError {
			t.Errorf("Classify(%q) returned the error intent", q)
		}
	}
}
