// Package main builds the serving artifacts: it embeds every catalogue row
// and writes the embeddings and flat index files. Vectors are cached in
// SQLite keyed by content, so rebuilding after a catalogue edit only
// re-embeds the changed rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kona-labs/study-advisor-go/internal/app"
	"github.com/kona-labs/study-advisor-go/internal/artifact"
	"github.com/kona-labs/study-advisor-go/internal/catalog"
	"github.com/kona-labs/study-advisor-go/internal/config"
	apperrors "github.com/kona-labs/study-advisor-go/internal/errors"
	"github.com/kona-labs/study-advisor-go/internal/genai"
	"github.com/kona-labs/study-advisor-go/internal/logger"
	"github.com/kona-labs/study-advisor-go/internal/storage"
	"github.com/kona-labs/study-advisor-go/internal/vecindex"
)

func main() {
	upload := flag.Bool("upload", false, "upload artifacts to the configured object store after building")
	noCache := flag.Bool("no-cache", false, "bypass the embedding cache and re-embed every row")
	dataDir := flag.String("data", "", "override DATA_DIR")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	log := logger.New(cfg.LogLevel).WithModule("indexer")

	if err := run(context.Background(), cfg, log, *upload, *noCache); err != nil {
		log.WithError(err).Fatal("Index build failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, upload, noCache bool) error {
	start := time.Now()

	store, err := catalog.Load(cfg.CataloguePath(), log)
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		return fmt.Errorf("catalogue %q has no rows, nothing to index: %w",
			cfg.CataloguePath(), apperrors.ErrEmptyIndex)
	}

	cache, err := storage.New(cfg.EmbedCachePath())
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	encoder := genai.NewEmbeddingClient(cfg.EmbedAPIKey, cfg.EmbedModel, cfg.EmbedDimensions)

	vectors, cacheHits, err := embedCatalogue(ctx, store, cache, encoder, cfg.EmbedConcurrency, noCache)
	if err != nil {
		return err
	}

	log.WithField("rows", store.Len()).
		WithField("cache_hits", cacheHits).
		WithField("embedded", store.Len()-cacheHits).
		Info("Catalogue embedded")

	if err := vecindex.WriteEmbeddings(cfg.EmbeddingsPath(), vectors); err != nil {
		return fmt.Errorf("write embeddings artifact: %w", err)
	}

	index, err := vecindex.Build(vectors)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := vecindex.WriteIndex(cfg.IndexPath(), index); err != nil {
		return fmt.Errorf("write index artifact: %w", err)
	}

	log.WithField("vectors", index.Len()).
		WithField("dimensions", index.Dim()).
		WithField("embeddings_path", cfg.EmbeddingsPath()).
		WithField("index_path", cfg.IndexPath()).
		WithField("duration", time.Since(start).Round(time.Millisecond).String()).
		Info("Artifacts written")

	if upload {
		if !cfg.Artifact.Enabled() {
			return fmt.Errorf("-upload requires the ARTIFACT_* configuration")
		}
		if err := uploadArtifacts(ctx, cfg, log); err != nil {
			return err
		}
	}

	return nil
}

// embedCatalogue produces one vector per catalogue row, in row order.
// Rows are embedded concurrently; the cache short-circuits rows whose
// description, model and dimension are unchanged.
func embedCatalogue(ctx context.Context, store *catalog.Store, cache *storage.DB, encoder *genai.EmbeddingClient, concurrency int, noCache bool) ([][]float32, int, error) {
	vectors := make([][]float32, store.Len())
	var cacheHits atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := 0; i < store.Len(); i++ {
		g.Go(func() error {
			description := store.Description(i)
			key := storage.CacheKey(description, encoder.Model(), encoder.Dimensions())

			if !noCache {
				cached, err := cache.GetEmbedding(gctx, key)
				if err != nil {
					return fmt.Errorf("row %d: %w", i, err)
				}
				if cached != nil {
					vectors[i] = cached
					cacheHits.Add(1)
					return nil
				}
			}

			vector, err := encoder.Embed(gctx, description)
			if err != nil {
				return fmt.Errorf("embed row %d: %w", i, err)
			}
			if err := cache.PutEmbedding(gctx, key, encoder.Model(), vector); err != nil {
				return fmt.Errorf("cache row %d: %w", i, err)
			}

			vectors[i] = vector
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return vectors, int(cacheHits.Load()), nil
}

func uploadArtifacts(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := artifact.New(ctx, artifact.Config{
		Endpoint:    cfg.Artifact.Endpoint,
		AccessKeyID: cfg.Artifact.AccessKeyID,
		SecretKey:   cfg.Artifact.SecretKey,
		BucketName:  cfg.Artifact.Bucket,
	})
	if err != nil {
		return fmt.Errorf("create artifact store: %w", err)
	}

	// The catalogue ships alongside the binary artifacts so serving nodes
	// always pull a row-aligned set.
	uploads := []struct {
		key         string
		path        string
		contentType string
	}{
		{app.CatalogueObjectKey, cfg.CataloguePath(), "text/csv"},
		{app.EmbeddingsObjectKey, cfg.EmbeddingsPath(), "application/gzip"},
		{app.IndexObjectKey, cfg.IndexPath(), "application/gzip"},
	}
	for _, u := range uploads {
		etag, err := store.UploadFile(ctx, u.key, u.path, u.contentType)
		if err != nil {
			return err
		}
		log.WithField("key", u.key).WithField("etag", etag).Info("Artifact uploaded")
	}

	return nil
}
