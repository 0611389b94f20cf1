package embedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

// LexicalModel is a local model that hashes word tokens into Dimension signed
// buckets and L2-normalizes the counts. Texts sharing words get a positive
// cosine similarity, which makes it a usable primary model when no remote
// embedding service is configured.
type LexicalModel struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewLexicalModel creates a LexicalModel with the default English stopword list.
func NewLexicalModel() *LexicalModel {
	return &LexicalModel{
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this model.
func (m *LexicalModel) Name() string { return "lexical" }

// Load has nothing to load.
func (m *LexicalModel) Load(context.Context) error { return nil }

// Embed returns the hashed bag-of-words vector of text.
func (m *LexicalModel) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, Dimension)
	for _, tok := range m.tokenize(text) {
		bucket, sign := featureHash(tok)
		vec[bucket] += sign
	}
	return normalize(vec), nil
}

func (m *LexicalModel) tokenize(text string) []string {
	raw := m.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := m.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func featureHash(token string) (int, float64) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	sum := h.Sum32()
	sign := 1.0
	if sum&(1<<31) != 0 {
		sign = -1.0
	}
	return int(sum % Dimension), sign
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "so", "such", "into", "about", "what", "which", "who", "how", "do", "does", "can", "will", "should",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
