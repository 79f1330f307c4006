package common

import (
	"context"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// MockEmbeddingProvider is a function-backed test double.
type MockEmbeddingProvider struct {
	EmbedFunc      func(ctx context.Context, text string) ([]float32, error)
	SimilarityFunc func(a, b []float32) float64
	EmbedCalls     int
}

func (m *MockEmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	m.EmbedCalls++
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *MockEmbeddingProvider) Similarity(a, b []float32) float64 {
	if m.SimilarityFunc != nil {
		return m.SimilarityFunc(a, b)
	}
	return CosineSimilarity(a, b)
}

// MockCatalogSearcher is a function-backed test double.
type MockCatalogSearcher struct {
	SearchFunc  func(ctx context.Context, q catalog.SearchQuery) ([]catalog.Entry, error)
	SearchCalls int
}

func (m *MockCatalogSearcher) Search(ctx context.Context, q catalog.SearchQuery) ([]catalog.Entry, error) {
	m.SearchCalls++
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q)
	}
	return nil, nil
}

// MockNotesStore is a fixed-notes test double.
type MockNotesStore struct {
	Fixed []catalog.LegalNote
	Err   error
}

func (m *MockNotesStore) Notes(ctx context.Context) ([]catalog.LegalNote, error) {
	return m.Fixed, m.Err
}

// MockCandidateSink records persisted results.
type MockCandidateSink struct {
	Persisted []*classification.Result
	Err       error
}

func (m *MockCandidateSink) Persist(ctx context.Context, c *classification.Case, r *classification.Result) error {
	if m.Err != nil {
		return m.Err
	}
	m.Persisted = append(m.Persisted, r)
	return nil
}

// MockFeedbackSink records published events.
type MockFeedbackSink struct {
	Events []ctypes.ClassificationEvent
	Err    error
}

func (m *MockFeedbackSink) Notify(ctx context.Context, ev ctypes.ClassificationEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, ev)
	return nil
}

//Personal.AI order the ending
