// Package app wires the serving components together: catalogue, index,
// encoder, generative backend and orchestrator. The HTTP server and the
// interactive chat share this startup path so they cannot drift apart.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kona-labs/study-advisor-go/internal/artifact"
	"github.com/kona-labs/study-advisor-go/internal/catalog"
	"github.com/kona-labs/study-advisor-go/internal/config"
	apperrors "github.com/kona-labs/study-advisor-go/internal/errors"
	"github.com/kona-labs/study-advisor-go/internal/genai"
	"github.com/kona-labs/study-advisor-go/internal/logger"
	"github.com/kona-labs/study-advisor-go/internal/metrics"
	"github.com/kona-labs/study-advisor-go/internal/rag"
	"github.com/kona-labs/study-advisor-go/internal/storage"
	"github.com/kona-labs/study-advisor-go/internal/vecindex"
)

// Artifact object keys in the remote store. The catalogue travels with the
// index because the two are only meaningful as a row-aligned pair.
const (
	IndexObjectKey      = "flat_index.bin.gz"
	EmbeddingsObjectKey = "embeddings.bin.gz"
	CatalogueObjectKey  = "universities_data.csv"
)

// App holds the assembled serving components.
type App struct {
	Config       *config.Config
	Log          *logger.Logger
	Store        *catalog.Store
	Index        *vecindex.FlatIndex
	Orchestrator *rag.Orchestrator

	completer genai.Completer
	cache     *storage.DB
}

// New assembles the serving pipeline. Any failure here is fatal for the
// process: a node without catalogue, index or encoder cannot answer anything.
// A missing generative backend is NOT a failure; the pipeline degrades to
// deterministic listing responses.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*App, error) {
	// Fetch the serving artifacts from the object store when they are absent
	// locally and a store is configured. Catalogue and index must come from
	// the same build, so both are fetched through the same path.
	if cfg.Artifact.Enabled() {
		remote, err := artifact.New(ctx, artifact.Config{
			Endpoint:    cfg.Artifact.Endpoint,
			AccessKeyID: cfg.Artifact.AccessKeyID,
			SecretKey:   cfg.Artifact.SecretKey,
			BucketName:  cfg.Artifact.Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("create artifact store: %w", err)
		}
		if err := remote.EnsureLocal(ctx, CatalogueObjectKey, cfg.CataloguePath()); err != nil {
			return nil, fmt.Errorf("fetch catalogue artifact: %w", err)
		}
		if err := remote.EnsureLocal(ctx, IndexObjectKey, cfg.IndexPath()); err != nil {
			return nil, fmt.Errorf("fetch index artifact: %w", err)
		}
		log.WithField("catalogue", cfg.CataloguePath()).
			WithField("index", cfg.IndexPath()).
			Info("Serving artifacts present")
	}

	store, err := catalog.Load(cfg.CataloguePath(), log)
	if err != nil {
		return nil, err
	}

	index, err := vecindex.ReadIndex(cfg.IndexPath())
	if err != nil {
		return nil, err
	}

	if index.Len() > 0 && index.Dim() != cfg.EmbedDimensions {
		return nil, fmt.Errorf("index dimension %d does not match configured %d: %w",
			index.Dim(), cfg.EmbedDimensions, apperrors.ErrDimensionMismatch)
	}

	encoder := genai.NewEmbeddingClient(cfg.EmbedAPIKey, cfg.EmbedModel, cfg.EmbedDimensions)

	// Query embeddings go through the same SQLite cache the index builder
	// fills; a repeated query never pays for a second API call.
	var queryEncoder rag.Encoder = encoder
	cache, err := storage.New(cfg.EmbedCachePath())
	if err != nil {
		log.WithError(err).Warn("Embedding cache unavailable, queries hit the API directly")
		cache = nil
	} else {
		queryEncoder = newCachedEncoder(encoder, cache, m)
	}

	completer, err := buildCompleter(ctx, cfg, log, m)
	if err != nil {
		return nil, err
	}

	orchestrator, err := rag.New(store, index, queryEncoder, log, rag.Options{
		DefaultTopK:     cfg.DefaultTopK,
		GenerateTimeout: cfg.GenerateTimeout,
		Completer:       completerOrNil(completer),
		Metrics:         m,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:       cfg,
		Log:          log,
		Store:        store,
		Index:        index,
		Orchestrator: orchestrator,
		completer:    completer,
		cache:        cache,
	}, nil
}

// buildCompleter constructs the generation chain: Gemini primary, Groq
// fallback. Returns nil when neither provider is configured.
func buildCompleter(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (genai.Completer, error) {
	var primary, fallback genai.Completer

	if cfg.GeminiAPIKey != "" {
		c, err := genai.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("create gemini completer: %w", err)
		}
		primary = c
	}

	if cfg.GroqAPIKey != "" {
		c, err := genai.NewOpenAICompleter(ctx, genai.ProviderGroq, cfg.GroqAPIKey, cfg.GroqModel)
		if err != nil {
			return nil, fmt.Errorf("create groq completer: %w", err)
		}
		if primary == nil {
			primary = c
		} else {
			fallback = c
		}
	}

	if primary == nil {
		log.Info("No generative backend configured, answers use deterministic fallback")
		return nil, nil
	}

	log.WithField("primary", primary.Provider().String()).
		WithField("has_fallback", fallback != nil).
		Info("Generative backend configured")

	fc := genai.NewFallbackCompleter(primary, fallback, genai.DefaultRetryConfig())
	if m != nil {
		fc = fc.WithRecorder(m)
	}
	return fc, nil
}

// completerOrNil converts a nil genai.Completer interface holding a nil
// concrete value into a plain nil for the orchestrator.
func completerOrNil(c genai.Completer) rag.Completer {
	if c == nil || !c.IsEnabled() {
		return nil
	}
	return c
}

// Close releases backend resources.
func (a *App) Close() error {
	var errs []error
	if a.completer != nil {
		if err := a.completer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
