package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// CacheKey derives the cache key for a description embedded with a specific
// model at a specific dimension. Changing any of the three invalidates the
// entry, since vectors from different models or dimensions are not
// comparable.
func CacheKey(description, model string, dimensions int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d", description, model, dimensions)
	return hex.EncodeToString(h.Sum(nil))
}

// GetEmbedding returns the cached vector for the key, or (nil, nil) on a
// cache miss.
func (db *DB) GetEmbedding(ctx context.Context, key string) ([]float32, error) {
	var blob []byte
	var dimensions int

	err := db.conn.QueryRowContext(ctx,
		`SELECT vector, dimensions FROM embedding_cache WHERE content_hash = ?`,
		key,
	).Scan(&blob, &dimensions)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query embedding cache: %w", err)
	}

	vector, err := decodeVector(blob)
	if err != nil {
		return nil, fmt.Errorf("decode cached vector: %w", err)
	}
	if len(vector) != dimensions {
		return nil, fmt.Errorf("cached vector has %d values, row says %d", len(vector), dimensions)
	}

	return vector, nil
}

// PutEmbedding stores a vector under the key, replacing any existing entry.
func (db *DB) PutEmbedding(ctx context.Context, key, model string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("refusing to cache empty vector")
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO embedding_cache (content_hash, model, dimensions, vector, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		key, model, len(vector), encodeVector(vector), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert embedding cache: %w", err)
	}
	return nil
}

// CountEmbeddings returns the number of cached vectors.
func (db *DB) CountEmbeddings(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM embedding_cache`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count embedding cache: %w", err)
	}
	return count, nil
}

// encodeVector packs float32 values as little-endian bytes.
func encodeVector(vector []float32) []byte {
	blob := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// decodeVector unpacks little-endian float32 bytes.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("blob length %d not a multiple of 4", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector, nil
}
