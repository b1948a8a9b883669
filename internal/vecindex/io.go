package vecindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"

	apperrors "github.com/kona-labs/study-advisor-go/internal/errors"
)

// Artifact framing: gzip stream wrapping a little-endian binary payload of
//
//	magic  uint32
//	version uint32
//	rows   uint32
//	dim    uint32
//	rows*dim float32 (row-major)
//
// The embeddings artifact and the index artifact share the payload layout but
// carry distinct magics so a swapped pair fails loudly at load time.
const (
	embeddingsMagic uint32 = 0x53414d45 // "SAME" study-advisor embeddings
	indexMagic      uint32 = 0x53414958 // "SAIX" study-advisor index
	artifactVersion uint32 = 1

	// maxArtifactRows bounds allocation when reading untrusted headers.
	maxArtifactRows = 10_000_000
	maxArtifactDim  = 16_384
)

// WriteEmbeddings writes the row-aligned embedding matrix to path.
func WriteEmbeddings(path string, vectors [][]float32) error {
	return writeMatrix(path, embeddingsMagic, vectors)
}

// ReadEmbeddings reads the embedding matrix from path.
func ReadEmbeddings(path string) ([][]float32, error) {
	vectors, err := readMatrix(path, embeddingsMagic)
	if err != nil {
		return nil, apperrors.NewLoadError("embeddings", path, err)
	}
	return vectors, nil
}

// WriteIndex persists the flat index to path.
func WriteIndex(path string, ix *FlatIndex) error {
	if ix == nil {
		return fmt.Errorf("vecindex: nil index")
	}
	return writeMatrix(path, indexMagic, ix.vectors)
}

// ReadIndex loads a flat index from path.
func ReadIndex(path string) (*FlatIndex, error) {
	vectors, err := readMatrix(path, indexMagic)
	if err != nil {
		return nil, apperrors.NewLoadError("index", path, err)
	}
	return Build(vectors)
}

func writeMatrix(path string, magic uint32, vectors [][]float32) error {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vecindex: row %d has dimension %d, want %d: %w",
				i, len(v), dim, apperrors.ErrDimensionMismatch)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	zw := gzip.NewWriter(f)
	w := bufio.NewWriter(zw)

	header := []uint32{magic, artifactVersion, uint32(len(vectors)), uint32(dim)}
	for _, h := range header {
		if err := binary.Write(w, binary.LittleEndian, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	buf := make([]byte, 4)
	for _, row := range vectors {
		for _, v := range row {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("write vector data: %w", err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush artifact: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close gzip stream: %w", err)
	}
	return f.Close()
}

func readMatrix(path string, magic uint32) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer func() { _ = zr.Close() }()

	r := bufio.NewReader(zr)

	var header [4]uint32
	for i := range header {
		if err := binary.Read(r, binary.LittleEndian, &header[i]); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
	}
	if header[0] != magic {
		return nil, fmt.Errorf("bad magic 0x%08x (artifact type mismatch?)", header[0])
	}
	if header[1] != artifactVersion {
		return nil, fmt.Errorf("unsupported artifact version %d", header[1])
	}

	rows, dim := header[2], header[3]
	if rows > maxArtifactRows || dim > maxArtifactDim {
		return nil, fmt.Errorf("implausible artifact shape (%d, %d)", rows, dim)
	}
	if rows > 0 && dim == 0 {
		return nil, fmt.Errorf("artifact has %d rows but zero dimension", rows)
	}

	vectors := make([][]float32, rows)
	buf := make([]byte, 4)
	for i := range vectors {
		row := make([]float32, dim)
		for j := range row {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("read vector data at row %d: %w", i, err)
			}
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf))
		}
		vectors[i] = row
	}

	return vectors, nil
}
