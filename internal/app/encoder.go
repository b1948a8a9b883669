package app

import (
	"context"

	"github.com/kona-labs/study-advisor-go/internal/metrics"
	"github.com/kona-labs/study-advisor-go/internal/storage"
)

// embedder is the encoder surface the cache wrapper needs.
type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
	Dimensions() int
}

// cachedEncoder wraps an embedder with the SQLite embedding cache so a
// repeated query skips the embedding API entirely. It shares the cache
// schema the index builder populates.
type cachedEncoder struct {
	inner embedder
	cache *storage.DB
	m     *metrics.Metrics
}

func newCachedEncoder(inner embedder, cache *storage.DB, m *metrics.Metrics) *cachedEncoder {
	return &cachedEncoder{inner: inner, cache: cache, m: m}
}

// Embed returns the cached vector when present, otherwise calls through and
// stores the result. Cache read and write failures never fail the query.
func (e *cachedEncoder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := storage.CacheKey(text, e.inner.Model(), e.inner.Dimensions())

	if cached, err := e.cache.GetEmbedding(ctx, key); err == nil && cached != nil {
		e.m.RecordEmbedCacheHit()
		return cached, nil
	}
	e.m.RecordEmbedCacheMiss()

	vector, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	_ = e.cache.PutEmbedding(ctx, key, e.inner.Model(), vector)
	return vector, nil
}
