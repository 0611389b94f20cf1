// Package embedding turns text into fixed-length vectors.
//
// A Provider wraps a primary Model that is loaded lazily on first use. When
// the model cannot be loaded, or fails on a call, the Provider answers with
// HashEmbedding so callers always receive a Dimension-length vector.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Dimension is the vector length produced by every strategy in this package.
const Dimension = 384

// ErrDimensionMismatch is returned when a model yields a vector of the wrong length.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder converts text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// Model is a primary embedding strategy that may need a one-time load.
type Model interface {
	Name() string
	Load(ctx context.Context) error
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EmbeddingError wraps a primary model failure. The Provider recovers from it
// by falling back; it is only ever logged.
type EmbeddingError struct {
	Model string
	Op    string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding model %s: %s: %v", e.Model, e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// normalize scales v to unit length in place. Zero vectors are left untouched.
func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
	return v
}
