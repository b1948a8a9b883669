package vecindex

import (
	"errors"
	"path/filepath"
	"testing"

	apperrors "github.com/kona-labs/study-advisor-go/internal/errors"
)

func TestEmbeddingsRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "embeddings.bin.gz")
	vectors := [][]float32{
		{1.5, -2.25, 0},
		{0.001, 42, -7.125},
	}

	if err := WriteEmbeddings(path, vectors); err != nil {
		t.Fatalf("WriteEmbeddings: %v", err)
	}

	got, err := ReadEmbeddings(path)
	if err != nil {
		t.Fatalf("ReadEmbeddings: %v", err)
	}

	if len(got) != len(vectors) {
		t.Fatalf("got %d rows, want %d", len(got), len(vectors))
	}
	for i := range vectors {
		for j := range vectors[i] {
			if got[i][j] != vectors[i][j] {
				t.Errorf("row %d col %d: got %v, want %v", i, j, got[i][j], vectors[i][j])
			}
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flat_index.bin.gz")
	ix, err := Build([][]float32{{1, 2}, {3, 4}, {5, 6}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := WriteIndex(path, ix); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}

	got, err := ReadIndex(path)
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if got.Len() != 3 || got.Dim() != 2 {
		t.Errorf("Len=%d Dim=%d, want 3 2", got.Len(), got.Dim())
	}

	// The reloaded index must search identically.
	_, indices, err := got.Search([]float32{5, 6}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if indices[0] != 2 {
		t.Errorf("nearest = %d, want 2", indices[0])
	}
}

func TestArtifactTypeMismatch(t *testing.T) {
	t.Parallel()

	// An embeddings file must not load as an index: the magics differ.
	path := filepath.Join(t.TempDir(), "embeddings.bin.gz")
	if err := WriteEmbeddings(path, [][]float32{{1, 2}}); err != nil {
		t.Fatalf("WriteEmbeddings: %v", err)
	}

	_, err := ReadIndex(path)
	if err == nil {
		t.Fatal("expected magic mismatch error")
	}
	var loadErr *apperrors.LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("expected LoadError, got %T", err)
	}
}

func TestReadMissingArtifact(t *testing.T) {
	t.Parallel()

	_, err := ReadIndex(filepath.Join(t.TempDir(), "missing.bin.gz"))
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
	var loadErr *apperrors.LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("expected LoadError, got %T", err)
	}
	if loadErr.Artifact != "index" {
		t.Errorf("Artifact = %q, want index", loadErr.Artifact)
	}
}

func TestWriteRaggedMatrix(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.bin.gz")
	err := WriteEmbeddings(path, [][]float32{{1, 2}, {3}})
	if !errors.Is(err, apperrors.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEmptyMatrixRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.bin.gz")
	if err := WriteEmbeddings(path, nil); err != nil {
		t.Fatalf("WriteEmbeddings(nil): %v", err)
	}

	got, err := ReadEmbeddings(path)
	if err != nil {
		t.Fatalf("ReadEmbeddings: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d rows, want 0", len(got))
	}
}
