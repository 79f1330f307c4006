package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
)

// defaultEmbeddingTTL keeps vectors around long enough to absorb repeated
// classifications of the same product text without growing unbounded.
const defaultEmbeddingTTL = 24 * time.Hour

// CachedEmbeddingProvider decorates an EmbeddingProvider with a Redis cache
// keyed by the normalised text, so repeated case texts skip the vector
// backend entirely. Cache failures fall through to the delegate.
type CachedEmbeddingProvider struct {
	delegate enginecommon.EmbeddingProvider
	cache    Cache
	ttl      time.Duration
	logger   logging.Logger
}

// NewCachedEmbeddingProvider wraps delegate with the given cache. A zero ttl
// uses the 24h default.
func NewCachedEmbeddingProvider(delegate enginecommon.EmbeddingProvider, cache Cache, ttl time.Duration, log logging.Logger) *CachedEmbeddingProvider {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if ttl == 0 {
		ttl = defaultEmbeddingTTL
	}
	return &CachedEmbeddingProvider{
		delegate: delegate,
		cache:    cache,
		ttl:      ttl,
		logger:   log,
	}
}

// Embed returns the cached vector for text, or computes and caches it.
func (p *CachedEmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := embeddingKey(text)

	var cached []float32
	if err := p.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	} else if err != nil && err != ErrCacheMiss {
		p.logger.Warn("embedding cache read failed", logging.Err(err))
	}

	vec, err := p.delegate.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if setErr := p.cache.Set(ctx, key, vec, p.ttl); setErr != nil {
		p.logger.Warn("embedding cache write failed", logging.Err(setErr))
	}
	return vec, nil
}

// Similarity delegates to the wrapped provider.
func (p *CachedEmbeddingProvider) Similarity(a, b []float32) float64 {
	return p.delegate.Similarity(a, b)
}

func embeddingKey(text string) string {
	normalised := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(normalised))
	return "emb:" + hex.EncodeToString(sum[:])
}

//Personal.AI order the ending
