// Package intent classifies user queries into answer-shaping intents.
// Classification is keyword-based and fully deterministic; the LLM never
// decides the intent, so prompt selection stays predictable and testable.
package intent

import "strings"

// Intent is the detected query intent.
type Intent string

const (
	// IntentSearch is the default catch-all intent.
	IntentSearch Intent = "search"
	// IntentComparison is detected for side-by-side program questions.
	IntentComparison Intent = "comparison"
	// IntentRecommendation is detected for advice-seeking questions.
	IntentRecommendation Intent = "recommendation"
	// IntentError marks a failed pipeline run. Never produced by Classify.
	IntentError Intent = "error"
)

// String returns the string representation of the intent.
func (i Intent) String() string {
	return string(i)
}

// rule maps trigger keywords to an intent. Rules are evaluated in order and
// the first match wins, so comparison outranks recommendation for queries
// containing keywords of both.
type rule struct {
	intent   Intent
	keywords []string
}

var rules = []rule{
	{IntentComparison, []string{"compare", "vs", "difference", "between"}},
	{IntentRecommendation, []string{"recommend", "best", "should", "suggest"}},
}

// Classify returns the intent for a query. Matching is case-insensitive
// substring containment; unmatched queries default to IntentSearch.
func Classify(query string) Intent {
	q := strings.ToLower(query)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.intent
			}
		}
	}
	return IntentSearch
}
