package milvus

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

const (
	defaultEmbeddingDim = 256

	wordWeight    = 1.0
	trigramWeight = 0.5
)

// HashingEmbedder produces deterministic text embeddings by signed feature
// hashing: every word and every character trigram is hashed into one of dim
// buckets with a hash-derived sign, and the accumulated vector is
// L2-normalized. The same text always yields the same vector, so embeddings
// are stable across runs and cacheable, and near-identical descriptions land
// close in cosine space through shared words and trigrams.
type HashingEmbedder struct {
	dim int
}

var _ enginecommon.EmbeddingProvider = (*HashingEmbedder)(nil)

// NewHashingEmbedder creates an embedder of the given dimension.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = defaultEmbeddingDim
	}
	return &HashingEmbedder{dim: dim}
}

// Dim returns the embedding dimension.
func (e *HashingEmbedder) Dim() int { return e.dim }

// Embed maps text to its feature-hash vector. Text with no extractable
// tokens is an error; callers treat that as a zero semantic score.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	words := tokenize(text)
	if len(words) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "text has no embeddable tokens")
	}

	vec := make([]float32, e.dim)
	for _, w := range words {
		e.accumulate(vec, w, wordWeight)
		for _, tg := range trigrams(w) {
			e.accumulate(vec, tg, trigramWeight)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "degenerate embedding")
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec, nil
}

// Similarity is cosine similarity; the vectors are unit-length so this is
// their dot product, but the general form keeps mixed inputs safe.
func (e *HashingEmbedder) Similarity(a, b []float32) float64 {
	return enginecommon.CosineSimilarity(a, b)
}

func (e *HashingEmbedder) accumulate(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(e.dim))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func trigrams(word string) []string {
	runes := []rune(word)
	if len(runes) < 3 {
		return nil
	}
	out := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}

//Personal.AI order the ending
