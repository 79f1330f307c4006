package scoring

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/tuning"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

func newScorer(embedder *enginecommon.MockEmbeddingProvider) *HybridScorer {
	return New(embedder, logging.NewNopLogger())
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScore_PriorityCandidateKeepsBaseScore(t *testing.T) {
	embedder := &enginecommon.MockEmbeddingProvider{}
	s := newScorer(embedder)
	cfg := tuning.DefaultConfig()

	c := &classification.Candidate{
		Code:         "6109100000",
		Title:        "Camisetas de punto, de algodón",
		TotalScore:   catalog.PriorityRuleBaseScore,
		PriorityRule: true,
	}
	s.Score(context.Background(), "camiseta de algodon", classification.DefaultFeatureSet(),
		[]*classification.Candidate{c}, cfg)

	if !almostEqual(c.TotalScore, catalog.PriorityRuleBaseScore) {
		t.Fatalf("priority score changed: %f", c.TotalScore)
	}
}

func TestScore_PriorityMonopolyCodePenalized(t *testing.T) {
	embedder := &enginecommon.MockEmbeddingProvider{}
	s := newScorer(embedder)
	cfg := tuning.DefaultConfig()

	c := &classification.Candidate{
		Code:         "8471300000",
		Title:        "Máquinas automáticas para tratamiento de datos",
		TotalScore:   catalog.PriorityRuleBaseScore,
		PriorityRule: true,
	}
	s.Score(context.Background(), "laptop", classification.DefaultFeatureSet(),
		[]*classification.Candidate{c}, cfg)

	if !almostEqual(c.TotalScore, catalog.PriorityRuleBaseScore-monopolyPenalty) {
		t.Fatalf("expected monopoly penalty applied, got %f", c.TotalScore)
	}
	if c.PenaltyTotal() == 0 {
		t.Fatal("expected a recorded penalty")
	}
}

func TestScore_MonopolyPenaltyIndependentOfSuspectSet(t *testing.T) {
	embedder := &enginecommon.MockEmbeddingProvider{}
	s := newScorer(embedder)
	cfg := tuning.DefaultConfig()
	cfg.SuspectCodes = nil

	// The monopoly table is a scoring policy of its own; emptying the
	// review-policy suspect list must not disable the deduction.
	c := &classification.Candidate{
		Code:         "8471300000",
		Title:        "Máquinas automáticas para tratamiento de datos",
		TotalScore:   catalog.PriorityRuleBaseScore,
		PriorityRule: true,
	}
	s.Score(context.Background(), "laptop", classification.DefaultFeatureSet(),
		[]*classification.Candidate{c}, cfg)

	if !almostEqual(c.PenaltyTotal(), monopolyPenalty) {
		t.Fatalf("expected monopoly penalty %f, got %f", monopolyPenalty, c.PenaltyTotal())
	}
}

func TestScore_EmbeddingFailureDegradesSemanticOnly(t *testing.T) {
	embedder := &enginecommon.MockEmbeddingProvider{
		EmbedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("vector store down")
		},
	}
	s := newScorer(embedder)
	cfg := tuning.DefaultConfig()

	c := &classification.Candidate{Code: "610910", Title: "camiseta de algodon"}
	s.Score(context.Background(), "camiseta de algodon", classification.DefaultFeatureSet(),
		[]*classification.Candidate{c}, cfg)

	if c.SemanticScore != 0 {
		t.Fatalf("expected zero semantic score, got %f", c.SemanticScore)
	}
	if c.LexicalScore < 0.99 {
		t.Fatalf("expected near-perfect lexical score, got %f", c.LexicalScore)
	}
	if c.TotalScore <= 0 {
		t.Fatal("lexical and contextual components should still contribute")
	}
}

func TestScore_IdenticalVectorsMaxSemantic(t *testing.T) {
	embedder := &enginecommon.MockEmbeddingProvider{} // fixed vector, cosine 1
	s := newScorer(embedder)
	cfg := tuning.DefaultConfig()

	c := &classification.Candidate{Code: "090121", Title: "cafe tostado"}
	s.Score(context.Background(), "cafe tostado en grano", classification.DefaultFeatureSet(),
		[]*classification.Candidate{c}, cfg)

	if !almostEqual(c.SemanticScore, 1.0) {
		t.Fatalf("expected semantic 1.0 for identical vectors, got %f", c.SemanticScore)
	}
}

func TestScore_MinSemanticZeroesWeakComponent(t *testing.T) {
	embedder := &enginecommon.MockEmbeddingProvider{
		SimilarityFunc: func(a, b []float32) float64 { return 0 }, // transform -> 0.5
	}
	s := newScorer(embedder)
	cfg := tuning.DefaultConfig()
	cfg.MinSemantic = 0.60

	c := &classification.Candidate{Code: "090121", Title: "producto sin relacion alguna"}
	s.Score(context.Background(), "cafe tostado", classification.DefaultFeatureSet(),
		[]*classification.Candidate{c}, cfg)

	if !almostEqual(c.SemanticScore, 0.5) {
		t.Fatalf("raw semantic score should be recorded, got %f", c.SemanticScore)
	}
	// Below MinSemantic the component is excluded from the weighted total:
	// only the contextual channel remains (lexical is below its own cutoff).
	want := cfg.ContextualWeight * c.ContextualScore
	if !almostEqual(c.TotalScore, want) {
		t.Fatalf("total %f, want %f", c.TotalScore, want)
	}
}

func TestLexicalScore_TokenOrderInsensitive(t *testing.T) {
	a := lexicalScore("camiseta de algodon blanca", "blanca camiseta algodon de")
	if a < 0.99 {
		t.Fatalf("token order should not matter, got %f", a)
	}
	b := lexicalScore("motocicleta 250cc", "semillas de hortalizas")
	if b >= lexicalCutoff {
		t.Fatalf("unrelated titles should fall below the cutoff, got %f", b)
	}
}

func TestContextualScore_UseCoherence(t *testing.T) {
	fs := classification.DefaultFeatureSet()
	fs.PrincipalUse = ctypes.UseComputing

	coherent := &classification.Candidate{Code: "847130", Title: "maquinas de datos"}
	incoherent := &classification.Candidate{Code: "090121", Title: "cafe tostado"}

	sc := contextualScore(fs, coherent)
	si := contextualScore(fs, incoherent)
	if sc <= si {
		t.Fatalf("coherent chapter should outscore incoherent: %f vs %f", sc, si)
	}
}

func TestContextualScore_KeywordBonusCapped(t *testing.T) {
	fs := classification.DefaultFeatureSet()
	few := &classification.Candidate{Code: "610910", KeywordHits: 2}
	many := &classification.Candidate{Code: "610910", KeywordHits: 50}

	delta := contextualScore(fs, many) - contextualScore(fs, few)
	if !almostEqual(delta, keywordBonusMax-2*keywordBonusPer) {
		t.Fatalf("bonus should cap at %f, delta %f", keywordBonusMax, delta)
	}
}

func TestContextualScore_MaterialAffinity(t *testing.T) {
	fs := classification.DefaultFeatureSet()
	fs.Material = ctypes.MaterialMetal

	matched := &classification.Candidate{Code: "720711"}
	unmatched := &classification.Candidate{Code: "610910"}
	if contextualScore(fs, matched) <= contextualScore(fs, unmatched) {
		t.Fatal("material-affine chapter should outscore others")
	}
}

func TestContextualScore_SpecificityBonus(t *testing.T) {
	fs := classification.DefaultFeatureSet()
	national := &classification.Candidate{Code: "6109100000"}
	hs6 := &classification.Candidate{Code: "610910"}
	heading := &classification.Candidate{Code: "6109"}

	n, s6, h := contextualScore(fs, national), contextualScore(fs, hs6), contextualScore(fs, heading)
	if !(n > s6 && s6 > h) {
		t.Fatalf("expected national > hs6 > heading, got %f %f %f", n, s6, h)
	}
}

func TestScore_LearnedPenaltyMergedByMaximum(t *testing.T) {
	embedder := &enginecommon.MockEmbeddingProvider{}
	s := newScorer(embedder)
	cfg := tuning.DefaultConfig()
	cfg.CodePenalties = map[ctypes.HSCode]float64{"8471300000": 0.25}

	c := &classification.Candidate{Code: "8471300000", Title: "maquinas de datos"}
	s.Score(context.Background(), "laptop gamer", classification.DefaultFeatureSet(),
		[]*classification.Candidate{c}, cfg)

	// Learned 0.25 beats the static 0.10; the deductions never stack.
	if !almostEqual(c.PenaltyTotal(), 0.25) {
		t.Fatalf("expected max-merged penalty 0.25, got %f", c.PenaltyTotal())
	}
}

func TestScore_PreservesOrder(t *testing.T) {
	embedder := &enginecommon.MockEmbeddingProvider{}
	s := newScorer(embedder)
	cfg := tuning.DefaultConfig()

	cands := []*classification.Candidate{
		{Code: "090121", Title: "cafe tostado"},
		{Code: "610910", Title: "camisetas de algodon"},
		{Code: "847130", Title: "maquinas de datos"},
	}
	s.Score(context.Background(), "cafe tostado", classification.DefaultFeatureSet(), cands, cfg)

	want := []ctypes.HSCode{"090121", "610910", "847130"}
	for i, c := range cands {
		if c.Code != want[i] {
			t.Fatalf("order changed at %d: %s", i, c.Code)
		}
	}
}

//Personal.AI order the ending
