// Package scoring computes the hybrid candidate score: a weighted blend of
// semantic (embedding cosine), lexical (token-sort edit distance) and
// contextual (feature/chapter agreement) components. The scorer mutates
// candidates in place and never reorders the list; ranking is the rule
// pipeline's job.
package scoring

import (
	"context"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/features"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/tuning"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

const (
	// lexicalCutoff zeroes the lexical component below this similarity, so
	// near-random title overlap contributes nothing.
	lexicalCutoff = 0.50

	// keywordBonusPer and keywordBonusMax shape the contextual reward for
	// catalog keyword hits.
	keywordBonusPer = 0.05
	keywordBonusMax = 0.20

	// monopolyPenalty is the static deduction for codes in the monopoly
	// table; learned per-code penalties merge with it by maximum.
	monopolyPenalty = 0.10

	penaltyReasonMonopoly = "monopoly_code"
)

// materialChapters maps an extracted material to the chapters goods made of
// it usually land in.
var materialChapters = map[ctypes.Material][]string{
	ctypes.MaterialMetal:   {"72", "73", "74", "76", "82", "83"},
	ctypes.MaterialPlastic: {"39"},
	ctypes.MaterialRubber:  {"40"},
	ctypes.MaterialWood:    {"44", "94"},
	ctypes.MaterialGlass:   {"70"},
	ctypes.MaterialTextile: {"50", "51", "52", "61", "62", "63"},
	ctypes.MaterialLeather: {"41", "42", "64"},
	ctypes.MaterialCeramic: {"69"},
	ctypes.MaterialPaper:   {"48"},
}

// HybridScorer scores candidates against the case text and features.
type HybridScorer struct {
	embedder enginecommon.EmbeddingProvider
	logger   logging.Logger
}

// New creates a HybridScorer over the given embedding provider.
func New(embedder enginecommon.EmbeddingProvider, logger logging.Logger) *HybridScorer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HybridScorer{embedder: embedder, logger: logger}
}

// Score fills the component and total scores of every candidate in place.
// Priority-rule candidates keep their elevated base score untouched. The
// candidate order is preserved.
func (s *HybridScorer) Score(ctx context.Context, text string, fs classification.FeatureSet,
	cands []*classification.Candidate, cfg *tuning.CalibrationConfig) {

	if len(cands) == 0 {
		return
	}

	caseVec := s.embedText(ctx, text)

	for _, c := range cands {
		if c.PriorityRule {
			s.applyCodePenalties(c, cfg)
			continue
		}

		c.SemanticScore = s.semanticScore(ctx, caseVec, c.Title)
		c.LexicalScore = lexicalScore(text, c.Title)
		c.ContextualScore = contextualScore(fs, c)

		semantic := c.SemanticScore
		if semantic < cfg.MinSemantic {
			semantic = 0
		}
		lexical := c.LexicalScore
		if lexical < lexicalCutoff {
			lexical = 0
		}

		c.TotalScore = cfg.SemanticWeight*semantic +
			cfg.LexicalWeight*lexical +
			cfg.ContextualWeight*c.ContextualScore

		s.applyCodePenalties(c, cfg)
	}
}

func (s *HybridScorer) applyCodePenalties(c *classification.Candidate,
	cfg *tuning.CalibrationConfig) {

	penalty := cfg.PenaltyFor(c.Code)
	if catalog.DefaultMonopolyCodes.Contains(c.Code) && monopolyPenalty > penalty {
		penalty = monopolyPenalty
	}
	if penalty > 0 {
		c.ApplyPenalty(penaltyReasonMonopoly, penalty)
	}
}

// embedText returns the case embedding, or nil when the provider fails. The
// failure degrades every semantic component to zero for this case.
func (s *HybridScorer) embedText(ctx context.Context, text string) []float32 {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("case embedding unavailable, semantic channel degraded", logging.Err(err))
		return nil
	}
	return vec
}

// semanticScore maps the cosine between the case and title embeddings through
// 1/(1+(1-cos)) and clamps to [0,1]. Any embedding failure yields 0.
func (s *HybridScorer) semanticScore(ctx context.Context, caseVec []float32, title string) float64 {
	if caseVec == nil {
		return 0
	}
	titleVec, err := s.embedder.Embed(ctx, title)
	if err != nil {
		return 0
	}
	cos := s.embedder.Similarity(caseVec, titleVec)
	score := 1.0 / (1.0 + (1.0 - cos))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// lexicalScore is the token-sort similarity of the normalized case text and
// candidate title.
func lexicalScore(text, title string) float64 {
	a := tokenSort(text)
	b := tokenSort(title)
	if a == "" || b == "" {
		return 0
	}
	return levenshtein.Similarity(a, b, levenshtein.NewParams())
}

func tokenSort(text string) string {
	tokens := strings.Fields(features.Normalize(text))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// contextualScore rates feature/chapter agreement in [0,1]: principal-use
// coherence, material affinity, catalog keyword hits and code specificity.
func contextualScore(fs classification.FeatureSet, c *classification.Candidate) float64 {
	score := 0.5
	chapter := c.Chapter()

	if fs.PrincipalUse != ctypes.UseGeneral {
		if catalog.ChapterCoherent(fs.PrincipalUse, chapter) {
			score += 0.2
		} else {
			score -= 0.2
		}
	}

	if chapters, ok := materialChapters[fs.Material]; ok {
		for _, ch := range chapters {
			if ch == chapter {
				score += 0.1
				break
			}
		}
	}

	bonus := float64(c.KeywordHits) * keywordBonusPer
	if bonus > keywordBonusMax {
		bonus = keywordBonusMax
	}
	score += bonus

	switch {
	case len(c.Code) >= 8:
		score += 0.1
	case len(c.Code) >= 6:
		score += 0.05
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

//Personal.AI order the ending
