package assemble

import (
	"context"
	"errors"
	"testing"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/features"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

func testEntries() []catalog.Entry {
	return []catalog.Entry{
		{ID: 1, Code: "847130", Title: "Máquinas automáticas portátiles", Keywords: []string{"laptop", "portatil"}},
		{ID: 2, Code: "847150", Title: "Unidades de proceso", Keywords: []string{"procesador"}},
	}
}

func TestAssemble_EmptyText(t *testing.T) {
	searcher := &enginecommon.MockCatalogSearcher{}
	a := New(searcher, logging.NewNopLogger())
	if got := a.Assemble(context.Background(), "   ", classification.FeatureSet{}); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
	if searcher.SearchCalls != 0 {
		t.Error("empty text must not reach the searcher")
	}
}

func TestAssemble_PriorityRuleFirst(t *testing.T) {
	searcher := &enginecommon.MockCatalogSearcher{
		SearchFunc: func(ctx context.Context, q catalog.SearchQuery) ([]catalog.Entry, error) {
			return testEntries(), nil
		},
	}
	a := New(searcher, logging.NewNopLogger())
	text := "Laptop profesional 16GB"
	fs := features.Extract(text)

	cands := a.Assemble(context.Background(), text, fs)
	if len(cands) == 0 {
		t.Fatal("expected candidates")
	}
	first := cands[0]
	if !first.PriorityRule || first.Source != classification.SourcePriorityRule {
		t.Errorf("expected priority candidate first, got %+v", first)
	}
	if first.TotalScore != catalog.PriorityRuleBaseScore {
		t.Errorf("expected base score %v, got %v", catalog.PriorityRuleBaseScore, first.TotalScore)
	}
	if first.Code != ctypes.HSCode("8471300000") {
		t.Errorf("expected laptop rule code, got %s", first.Code)
	}
	if first.KeywordHits < 1 {
		t.Errorf("matched triggers must count as keyword evidence, got %d", first.KeywordHits)
	}
}

func TestAssemble_PriorityTriggerHitsCounted(t *testing.T) {
	a := New(&enginecommon.MockCatalogSearcher{}, logging.NewNopLogger())
	text := "Laptop notebook profesional"
	cands := a.Assemble(context.Background(), text, features.Extract(text))

	if len(cands) == 0 {
		t.Fatal("expected candidates")
	}
	if cands[0].KeywordHits != 2 {
		t.Errorf("two trigger keywords matched, got %d hits", cands[0].KeywordHits)
	}
}

func TestAssemble_DuplicateCodeMergesEvidence(t *testing.T) {
	searcher := &enginecommon.MockCatalogSearcher{
		SearchFunc: func(ctx context.Context, q catalog.SearchQuery) ([]catalog.Entry, error) {
			return []catalog.Entry{
				{ID: 9, Code: "1905000000", Title: "Galletas dulces", Keywords: []string{"galleta", "dulce"}},
			}, nil
		},
	}
	a := New(searcher, logging.NewNopLogger(), WithRules([]catalog.PriorityRule{
		{Keywords: []string{"galleta"}, Code: "1905000000", Title: "Productos de galletería"},
	}))
	fs := classification.FeatureSet{Tokens: []string{"galletas", "dulces"}}
	cands := a.Assemble(context.Background(), "galletas dulces de mantequilla", fs)

	if len(cands) != 1 {
		t.Fatalf("expected the duplicate folded into one candidate, got %d", len(cands))
	}
	c := cands[0]
	if !c.PriorityRule || c.TotalScore != catalog.PriorityRuleBaseScore {
		t.Fatalf("priority candidate must keep its base score, got %+v", c)
	}
	if c.KeywordHits < 2 {
		t.Errorf("search-entry hits must survive the merge, got %d", c.KeywordHits)
	}
	if len(c.Keywords) == 0 {
		t.Error("catalog keywords must be folded into the merged candidate")
	}
}

func TestAssemble_DeduplicatesByCode(t *testing.T) {
	dup := []catalog.Entry{
		{ID: 1, Code: "090121", Title: "Café tostado"},
		{ID: 2, Code: "090121", Title: "Café tostado duplicado"},
		{ID: 3, Code: "090122", Title: "Café tostado descafeinado"},
	}
	searcher := &enginecommon.MockCatalogSearcher{
		SearchFunc: func(ctx context.Context, q catalog.SearchQuery) ([]catalog.Entry, error) {
			return dup, nil
		},
	}
	a := New(searcher, logging.NewNopLogger(), WithRules(nil))
	cands := a.Assemble(context.Background(), "café molido oscuro", classification.FeatureSet{Tokens: []string{"cafe"}})
	if len(cands) != 2 {
		t.Fatalf("expected 2 unique candidates, got %d", len(cands))
	}
	// First occurrence wins.
	if cands[0].Title != "Café tostado" {
		t.Errorf("expected first occurrence kept, got %q", cands[0].Title)
	}
}

func TestAssemble_ComputingChapterFilter(t *testing.T) {
	var captured catalog.SearchQuery
	searcher := &enginecommon.MockCatalogSearcher{
		SearchFunc: func(ctx context.Context, q catalog.SearchQuery) ([]catalog.Entry, error) {
			captured = q
			return nil, nil
		},
	}
	a := New(searcher, logging.NewNopLogger(), WithRules(nil))
	text := "Mouse gaming inalámbrico"
	a.Assemble(context.Background(), text, features.Extract(text))

	if len(captured.Chapters) != 2 || captured.Chapters[0] != "84" || captured.Chapters[1] != "85" {
		t.Errorf("expected chapters [84 85], got %v", captured.Chapters)
	}
	// Synonym expansion must include "ratón" for "mouse".
	found := false
	for _, w := range captured.Words {
		if w == "ratón" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected synonym expansion in search words: %v", captured.Words)
	}
}

func TestAssemble_SearchFailureDegrades(t *testing.T) {
	searcher := &enginecommon.MockCatalogSearcher{
		SearchFunc: func(ctx context.Context, q catalog.SearchQuery) ([]catalog.Entry, error) {
			return nil, errors.New("opensearch unavailable")
		},
	}
	a := New(searcher, logging.NewNopLogger())
	text := "Laptop profesional"
	cands := a.Assemble(context.Background(), text, features.Extract(text))

	// Priority rule still injects its candidate.
	if len(cands) != 1 || !cands[0].PriorityRule {
		t.Errorf("expected priority-only degradation, got %v", cands)
	}
}

func TestFallback(t *testing.T) {
	a := New(&enginecommon.MockCatalogSearcher{}, logging.NewNopLogger())
	got := a.Fallback("una laptop vieja")
	if len(got) != 1 || got[0].Source != classification.SourceFallbackTable {
		t.Fatalf("expected one fallback candidate, got %v", got)
	}
	if got[0].Code != ctypes.HSCode("847130") {
		t.Errorf("expected 847130, got %s", got[0].Code)
	}
	if got := a.Fallback("objeto sin tabla"); len(got) != 0 {
		t.Errorf("expected empty fallback, got %v", got)
	}
}

//Personal.AI order the ending
