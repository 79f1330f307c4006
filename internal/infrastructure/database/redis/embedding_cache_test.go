package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
)

type countingProvider struct {
	calls  int
	vector []float32
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.calls++
	return p.vector, nil
}

func (p *countingProvider) Similarity(a, b []float32) float64 {
	return enginecommon.CosineSimilarity(a, b)
}

func TestCachedEmbeddingProvider_SecondCallHitsCache(t *testing.T) {
	cache := newTestCache(t)
	delegate := &countingProvider{vector: []float32{0.1, 0.2, 0.3}}
	provider := NewCachedEmbeddingProvider(delegate, cache, time.Minute, logging.NewNopLogger())
	ctx := context.Background()

	first, err := provider.Embed(ctx, "Café tostado en grano")
	require.NoError(t, err)
	assert.Equal(t, delegate.vector, first)

	second, err := provider.Embed(ctx, "Café tostado en grano")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, delegate.calls)
}

func TestCachedEmbeddingProvider_KeyNormalisesWhitespaceAndCase(t *testing.T) {
	cache := newTestCache(t)
	delegate := &countingProvider{vector: []float32{1, 0}}
	provider := NewCachedEmbeddingProvider(delegate, cache, time.Minute, logging.NewNopLogger())
	ctx := context.Background()

	_, err := provider.Embed(ctx, "Camiseta  de   algodón")
	require.NoError(t, err)
	_, err = provider.Embed(ctx, "camiseta de algodón")
	require.NoError(t, err)

	assert.Equal(t, 1, delegate.calls)
}

func TestCachedEmbeddingProvider_DistinctTextsMissSeparately(t *testing.T) {
	cache := newTestCache(t)
	delegate := &countingProvider{vector: []float32{1, 0}}
	provider := NewCachedEmbeddingProvider(delegate, cache, time.Minute, logging.NewNopLogger())
	ctx := context.Background()

	_, err := provider.Embed(ctx, "laptop portátil")
	require.NoError(t, err)
	_, err = provider.Embed(ctx, "motocicleta 125cc")
	require.NoError(t, err)

	assert.Equal(t, 2, delegate.calls)
}

func TestCachedEmbeddingProvider_SimilarityDelegates(t *testing.T) {
	provider := NewCachedEmbeddingProvider(&countingProvider{}, newTestCache(t), 0, nil)
	assert.InDelta(t, 1.0, provider.Similarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
}

//Personal.AI order the ending
