// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates caller provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates a query vector's length differs from
	// the dimension the vector index was built with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRowCountMismatch indicates the embeddings artifact and the catalogue
	// disagree on the number of rows. The row alignment invariant is broken
	// and the process must not serve.
	ErrRowCountMismatch = errors.New("embeddings/catalogue row count mismatch")

	// ErrEmptyIndex indicates the vector index holds no vectors.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrBackendUnavailable indicates no generative backend is configured.
	ErrBackendUnavailable = errors.New("generative backend unavailable")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")
)

// LoadError represents a fatal load-time failure for one of the serving
// artifacts (catalogue, embeddings, index). Startup must abort on these.
type LoadError struct {
	Artifact string // "catalogue", "embeddings" or "index"
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (path=%s): %v", e.Artifact, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new load error.
func NewLoadError(artifact, path string, err error) *LoadError {
	return &LoadError{
		Artifact: artifact,
		Path:     path,
		Err:      err,
	}
}
