package embedding

import (
	"context"
	"math"
	"unicode/utf16"
)

// HashEmbedding is the deterministic fallback strategy. It folds the UTF-16
// code units of text into a wrapping int32 hash (hash*31 + unit) and spreads
// it over Dimension values as sin(hash+i)*0.1.
//
// The result is stable across runs and dimensionally compatible with the
// primary models, but it carries no semantic information.
func HashEmbedding(text string) []float64 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(text)) {
		hash = hash*31 + int32(unit)
	}
	vec := make([]float64, Dimension)
	for i := range vec {
		vec[i] = math.Sin(float64(hash)+float64(i)) * 0.1
	}
	return vec
}

// FallbackEmbedder always uses HashEmbedding.
type FallbackEmbedder struct{}

func (FallbackEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	return HashEmbedding(text), nil
}

func (FallbackEmbedder) Dimension() int { return Dimension }
