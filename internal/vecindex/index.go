// Package vecindex provides an exact flat nearest-neighbor index over the
// pre-computed program embeddings. The scan is deliberately brute-force:
// squared Euclidean distance against every stored vector gives deterministic,
// reproducible neighbor ordering, which the answer pipeline's tests rely on.
package vecindex

import (
	"fmt"
	"sort"

	apperrors "github.com/kona-labs/study-advisor-go/internal/errors"
)

// FlatIndex is a read-only flat L2 index. Vector position i corresponds 1:1
// to catalogue row i. Safe for concurrent Search calls after construction.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

// Build constructs a flat index from row-aligned vectors.
// All vectors must share the same dimension.
func Build(vectors [][]float32) (*FlatIndex, error) {
	if len(vectors) == 0 {
		return &FlatIndex{}, nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("vecindex: zero-dimension vector at row 0")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vecindex: row %d has dimension %d, want %d: %w",
				i, len(v), dim, apperrors.ErrDimensionMismatch)
		}
	}

	return &FlatIndex{dim: dim, vectors: vectors}, nil
}

// Len returns the number of stored vectors.
func (ix *FlatIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.vectors)
}

// Dim returns the vector dimension, or 0 for an empty index.
func (ix *FlatIndex) Dim() int {
	if ix == nil {
		return 0
	}
	return ix.dim
}

// Vector returns the stored vector at row i. The slice is shared; callers
// must not mutate it.
func (ix *FlatIndex) Vector(i int) ([]float32, bool) {
	if ix == nil || i < 0 || i >= len(ix.vectors) {
		return nil, false
	}
	return ix.vectors[i], true
}

// Search returns the k nearest stored vectors to query, ordered by ascending
// squared Euclidean distance, ties broken by ascending row index.
// k is clamped to the index size; a too-large k is never an error.
func (ix *FlatIndex) Search(query []float32, k int) (distances []float32, indices []int, err error) {
	if ix == nil || len(ix.vectors) == 0 {
		return nil, nil, nil
	}
	if len(query) != ix.dim {
		return nil, nil, fmt.Errorf("vecindex: query dimension %d, index dimension %d: %w",
			len(query), ix.dim, apperrors.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil, fmt.Errorf("vecindex: k must be positive, got %d: %w", k, apperrors.ErrInvalidInput)
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	dists := make([]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		dists[i] = squaredL2(query, v)
	}

	order := make([]int, len(ix.vectors))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if dists[order[a]] != dists[order[b]] {
			return dists[order[a]] < dists[order[b]]
		}
		return order[a] < order[b]
	})

	indices = make([]int, k)
	distances = make([]float32, k)
	for i := 0; i < k; i++ {
		indices[i] = order[i]
		distances[i] = dists[order[i]]
	}
	return distances, indices, nil
}

// squaredL2 computes the squared Euclidean distance between two vectors of
// equal length.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
