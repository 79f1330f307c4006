package milvus

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(64)

	a, err := e.Embed(context.Background(), "camiseta de algodón para hombre")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "camiseta de algodón para hombre")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestEmbed_UnitLength(t *testing.T) {
	e := NewHashingEmbedder(128)

	vec, err := e.Embed(context.Background(), "instant coffee in retail packaging")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbed_SimilarTextsScoreHigherThanUnrelated(t *testing.T) {
	e := NewHashingEmbedder(256)
	ctx := context.Background()

	coffee1, err := e.Embed(ctx, "roasted coffee beans not decaffeinated")
	require.NoError(t, err)
	coffee2, err := e.Embed(ctx, "roasted coffee not decaffeinated in bulk")
	require.NoError(t, err)
	bikes, err := e.Embed(ctx, "motorcycle with piston engine displacement 50cc")
	require.NoError(t, err)

	related := e.Similarity(coffee1, coffee2)
	unrelated := e.Similarity(coffee1, bikes)
	assert.Greater(t, related, unrelated)
	assert.Greater(t, related, 0.3)
}

func TestEmbed_NoTokens(t *testing.T) {
	e := NewHashingEmbedder(32)

	_, err := e.Embed(context.Background(), "  --- !!! ")
	assert.Error(t, err)
}

func TestEmbed_CaseAndPunctuationInsensitive(t *testing.T) {
	e := NewHashingEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "Camiseta, de Algodón")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "camiseta de algodón")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestNewHashingEmbedder_DefaultDim(t *testing.T) {
	e := NewHashingEmbedder(0)
	assert.Equal(t, defaultEmbeddingDim, e.Dim())
}

//Personal.AI order the ending
