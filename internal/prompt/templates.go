// Package prompt assembles LLM prompts from a query and formatted program
// context. Templates are plain strings with {query} and {programs}
// placeholders; substitution is literal, so user input never changes the
// template structure.
package prompt

import (
	"strings"

	"github.com/kona-labs/study-advisor-go/internal/intent"
)

// Template is a prompt template with {query} and {programs} placeholders.
type Template string

const (
	searchTemplate Template = `You are a helpful university advisor.

User Query: {query}

Found Programs:
{programs}

Provide a helpful response recommending the best options.`

	comparisonTemplate Template = `You are a university advisor specializing in program comparison.

User Query: {query}

Programs to Compare:
{programs}

Provide a detailed comparison with pros and cons.`

	recommendationTemplate Template = `You are an expert university advisor.

User Query: {query}

Available Programs:
{programs}

Recommend the best options with reasoning.`
)

var templates = map[intent.Intent]Template{
	intent.IntentSearch:         searchTemplate,
	intent.IntentComparison:     comparisonTemplate,
	intent.IntentRecommendation: recommendationTemplate,
}

// ForIntent returns the template for the given intent.
// Unknown intents fall back to the search template.
func ForIntent(i intent.Intent) Template {
	if t, ok := templates[i]; ok {
		return t
	}
	return searchTemplate
}

// Render substitutes the query and programs text into the template.
func (t Template) Render(query, programs string) string {
	r := strings.NewReplacer(
		"{query}", query,
		"{programs}", programs,
	)
	return r.Replace(string(t))
}

// Build assembles the prompt for a query: template selection by intent plus
// placeholder substitution.
func Build(i intent.Intent, query, programs string) string {
	return ForIntent(i).Render(query, programs)
}
