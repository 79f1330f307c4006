// Package common defines the narrow contracts through which the decision
// engine reaches its external collaborators: embedding generation, catalog
// search, the legal-notes store, and the two output sinks (audit persistence
// and the feedback stream). Infrastructure adapters implement these; engine
// stages depend only on the interfaces.
package common

import (
	"context"
	"math"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// EmbeddingProvider generates text embeddings and compares them. Failures
// are recoverable: callers treat an error as a zero semantic score, never as
// a fatal condition.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Similarity(a, b []float32) float64
}

// CatalogSearcher runs the keyword catalog search, optionally constrained to
// a chapter set.
type CatalogSearcher interface {
	Search(ctx context.Context, q catalog.SearchQuery) ([]catalog.Entry, error)
}

// NotesStore supplies the legal notes the textual-interpretation stage
// matches against.
type NotesStore interface {
	Notes(ctx context.Context) ([]catalog.LegalNote, error)
}

// CandidateSink persists the decided classification as an append-only audit
// record. Failures are logged and swallowed by the caller; the classification
// result has already been computed.
type CandidateSink interface {
	Persist(ctx context.Context, c *classification.Case, r *classification.Result) error
}

// FeedbackSink receives every classification attempt's outcome for the
// adaptive tuning loop and operational dashboards.
type FeedbackSink interface {
	Notify(ctx context.Context, ev ctypes.ClassificationEvent) error
}

// CosineSimilarity computes the cosine similarity of two vectors, 0 when
// either is empty, zero-length, or of mismatched dimension.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

//Personal.AI order the ending
