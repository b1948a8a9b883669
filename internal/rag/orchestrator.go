package rag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kona-labs/study-advisor-go/internal/catalog"
	apperrors "github.com/kona-labs/study-advisor-go/internal/errors"
	"github.com/kona-labs/study-advisor-go/internal/intent"
	"github.com/kona-labs/study-advisor-go/internal/logger"
	"github.com/kona-labs/study-advisor-go/internal/metrics"
	"github.com/kona-labs/study-advisor-go/internal/prompt"
	"github.com/kona-labs/study-advisor-go/internal/vecindex"
)

// Encoder produces an embedding vector for a piece of text.
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer generates a text completion for a prompt.
// An absent or failing completer is never fatal; the pipeline degrades to a
// deterministic listing response.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	IsEnabled() bool
}

// QueryResult is the outcome of one answered query.
// Errors are reported in-band: Intent is "error", Programs is nil and
// Response carries the error text. Answer never returns a Go error.
type QueryResult struct {
	Response  string                  `json:"response"`
	Programs  []catalog.ProgramRecord `json:"programs"`
	Intent    intent.Intent           `json:"intent"`
	Count     int                     `json:"count"`
	Indices   []int                   `json:"indices,omitempty"`
	Distances []float32               `json:"distances,omitempty"`
}

// Turn is one entry of the conversation history.
type Turn struct {
	Query     string        `json:"query"`
	Intent    intent.Intent `json:"intent"`
	Response  string        `json:"response"`
	Indices   []int         `json:"indices"`
	Distances []float32     `json:"distances"`
	Timestamp time.Time     `json:"timestamp"`
}

// Orchestrator runs the answer pipeline over an immutable catalogue and
// index pair. Safe for concurrent Answer calls; history appends are
// serialized by a mutex.
type Orchestrator struct {
	store     *catalog.Store
	index     *vecindex.FlatIndex
	encoder   Encoder
	completer Completer
	metrics   *metrics.Metrics
	log       *logger.Logger

	defaultK   int
	genTimeout time.Duration

	mu      sync.Mutex
	history []Turn
}

// Options configures an Orchestrator.
type Options struct {
	// DefaultTopK is used when Answer is called with k <= 0.
	DefaultTopK int
	// GenerateTimeout bounds a single LLM generation call.
	GenerateTimeout time.Duration
	// Completer is optional; nil disables generation entirely.
	Completer Completer
	// Metrics is optional; nil disables instrumentation.
	Metrics *metrics.Metrics
}

// New creates an Orchestrator. The catalogue and index must be row-aligned:
// a mismatch means the artifacts were built from different catalogue versions
// and every retrieved index would point at the wrong record.
func New(store *catalog.Store, index *vecindex.FlatIndex, encoder Encoder, log *logger.Logger, opts Options) (*Orchestrator, error) {
	if store.Len() != index.Len() {
		return nil, fmt.Errorf("catalogue has %d records, index has %d vectors: %w",
			store.Len(), index.Len(), apperrors.ErrRowCountMismatch)
	}
	if encoder == nil {
		return nil, fmt.Errorf("orchestrator requires an encoder: %w", apperrors.ErrInvalidInput)
	}

	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 5
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 20 * time.Second
	}

	o := &Orchestrator{
		store:      store,
		index:      index,
		encoder:    encoder,
		completer:  opts.Completer,
		metrics:    opts.Metrics,
		log:        log.WithModule("rag"),
		defaultK:   opts.DefaultTopK,
		genTimeout: opts.GenerateTimeout,
	}

	if o.metrics != nil {
		o.metrics.CatalogueSize.Set(float64(store.Len()))
		o.metrics.IndexSize.Set(float64(index.Len()))
	}

	return o, nil
}

// Answer runs the full pipeline for a query and returns the result.
// It never returns an error and never panics: any failure, including panics
// from deeper layers, is converted into an error-intent result so one bad
// query cannot take down the serving loop.
func (o *Orchestrator) Answer(ctx context.Context, query string, k int) (result QueryResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.log.WithField("panic", fmt.Sprint(r)).Error("Answer pipeline panicked")
			result = o.errorResult(fmt.Errorf("%v", r))
		}
	}()

	if k <= 0 {
		k = o.defaultK
	}

	// Encode
	encodeStart := time.Now()
	queryVec, err := o.encoder.Embed(ctx, query)
	o.observeStage("encode", encodeStart)
	if err != nil {
		o.log.WithError(err).Warn("Query encoding failed")
		return o.errorResult(err)
	}

	// Search
	searchStart := time.Now()
	distances, indices, err := o.index.Search(queryVec, k)
	o.observeStage("search", searchStart)
	if err != nil {
		o.log.WithError(err).Warn("Index search failed")
		return o.errorResult(err)
	}

	// Classify
	queryIntent := intent.Classify(query)

	// Format
	formatStart := time.Now()
	records := make([]catalog.ProgramRecord, 0, len(indices))
	for _, idx := range indices {
		rec, ok := o.store.Get(idx)
		if !ok {
			return o.errorResult(fmt.Errorf("retrieved row %d out of catalogue range: %w",
				idx, apperrors.ErrNotFound))
		}
		records = append(records, rec)
	}
	programsText := FormatPrograms(records, distances)
	o.observeStage("format", formatStart)

	// Generate, or fall back to the deterministic listing
	promptText := prompt.Build(queryIntent, query, programsText)
	response, generated := o.generate(ctx, promptText)
	if !generated {
		response = fmt.Sprintf("Found %d programs:\n\n%s", len(indices), programsText)
		if o.metrics != nil {
			o.metrics.GenerationFallbackTotal.Inc()
		}
	}

	result = QueryResult{
		Response:  response,
		Programs:  records,
		Intent:    queryIntent,
		Count:     len(indices),
		Indices:   indices,
		Distances: distances,
	}

	o.appendHistory(Turn{
		Query:     query,
		Intent:    queryIntent,
		Response:  response,
		Indices:   indices,
		Distances: distances,
		Timestamp: time.Now(),
	})

	if o.metrics != nil {
		o.metrics.QueriesTotal.WithLabelValues(queryIntent.String(), "success").Inc()
		o.metrics.QueryDurationSeconds.WithLabelValues(queryIntent.String()).Observe(time.Since(start).Seconds())
	}

	o.log.WithField("intent", queryIntent.String()).
		WithField("results", len(indices)).
		WithField("generated", generated).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Query answered")

	return result
}

// generate attempts LLM generation and reports whether it produced a usable
// answer. All failure modes (no completer, timeout, provider errors, empty
// output) collapse into ok=false.
func (o *Orchestrator) generate(ctx context.Context, promptText string) (string, bool) {
	if o.completer == nil || !o.completer.IsEnabled() {
		return "", false
	}

	genCtx, cancel := context.WithTimeout(ctx, o.genTimeout)
	defer cancel()

	genStart := time.Now()
	text, err := o.completer.Complete(genCtx, promptText)
	o.observeStage("generate", genStart)

	if err != nil {
		o.log.WithError(err).Warn("Generation failed, using fallback response")
		return "", false
	}
	if text == "" {
		return "", false
	}
	return text, true
}

// errorResult builds the in-band error result for a failed query.
func (o *Orchestrator) errorResult(err error) QueryResult {
	if o.metrics != nil {
		o.metrics.QueriesTotal.WithLabelValues(intent.IntentError.String(), "error").Inc()
	}
	return QueryResult{
		Response: fmt.Sprintf("Error processing query: %v", err),
		Intent:   intent.IntentError,
		Count:    0,
	}
}

func (o *Orchestrator) observeStage(stage string, start time.Time) {
	if o.metrics == nil {
		return
	}
	o.metrics.StageDurationSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (o *Orchestrator) appendHistory(t Turn) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, t)
}

// History returns a copy of the conversation history in append order.
func (o *Orchestrator) History() []Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Turn, len(o.history))
	copy(out, o.history)
	return out
}

// HistorySize returns the number of recorded turns.
func (o *Orchestrator) HistorySize() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.history)
}

// CatalogueLen returns the number of catalogue records.
func (o *Orchestrator) CatalogueLen() int {
	return o.store.Len()
}

// IndexLen returns the number of indexed vectors.
func (o *Orchestrator) IndexLen() int {
	return o.index.Len()
}
