package classification

import (
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// ─────────────────────────────────────────────────────────────────────────────
// Candidate
// ─────────────────────────────────────────────────────────────────────────────

// CandidateSource tags where a candidate entered the pipeline.
type CandidateSource string

const (
	SourceCatalogSearch CandidateSource = "catalog_search"
	SourcePriorityRule  CandidateSource = "priority_rule"
	SourceFallbackTable CandidateSource = "fallback_table"
)

// Candidate is one tariff code under consideration for a case, together with
// the evidence accumulated for it as the pipeline advances. Scores start at
// zero and are filled in by the scoring stage; hit counters are filled in by
// the rule pipeline and the calibrator.
type Candidate struct {
	Code     ctypes.HSCode   `json:"code"`
	Title    string          `json:"title"`
	Keywords []string        `json:"keywords,omitempty"`
	Source   CandidateSource `json:"source"`

	// Score components. TotalScore is the weighted combination plus any
	// priority-rule base, minus penalties.
	SemanticScore   float64 `json:"semantic_score"`
	LexicalScore    float64 `json:"lexical_score"`
	ContextualScore float64 `json:"contextual_score"`
	TotalScore      float64 `json:"total_score"`

	// Evidence counters.
	KeywordHits int `json:"keyword_hits"`
	NoteHits    int `json:"note_hits"`

	// PriorityRule marks candidates injected by a matched priority rule;
	// they carry a fixed base score and bypass the low-score cutoff.
	PriorityRule bool `json:"priority_rule"`

	// Penalties maps a penalty reason to the deduction applied. The same
	// reason applied twice keeps the larger deduction.
	Penalties map[string]float64 `json:"penalties,omitempty"`
}

// Chapter returns the candidate code's 2-digit chapter.
func (c *Candidate) Chapter() string { return c.Code.Chapter() }

// Heading returns the candidate code's 4-digit heading.
func (c *Candidate) Heading() string { return c.Code.Heading() }

// ApplyPenalty records a score deduction under the given reason. When the
// reason is already present the larger deduction wins; the total score is
// re-adjusted by the difference only, so penalties never stack for one
// reason.
func (c *Candidate) ApplyPenalty(reason string, amount float64) {
	if amount <= 0 {
		return
	}
	if c.Penalties == nil {
		c.Penalties = make(map[string]float64, 2)
	}
	prev := c.Penalties[reason]
	if amount <= prev {
		return
	}
	c.Penalties[reason] = amount
	c.TotalScore -= amount - prev
	if c.TotalScore < 0 {
		c.TotalScore = 0
	}
}

// PenaltyTotal sums all recorded deductions.
func (c *Candidate) PenaltyTotal() float64 {
	var total float64
	for _, v := range c.Penalties {
		total += v
	}
	return total
}

// ToDTO converts the candidate to its transport representation.
func (c *Candidate) ToDTO() ctypes.CandidateDTO {
	return ctypes.CandidateDTO{
		Code:            c.Code,
		Title:           c.Title,
		Keywords:        c.Keywords,
		SemanticScore:   c.SemanticScore,
		LexicalScore:    c.LexicalScore,
		ContextualScore: c.ContextualScore,
		TotalScore:      c.TotalScore,
		KeywordHits:     c.KeywordHits,
		NoteHits:        c.NoteHits,
		PriorityRule:    c.PriorityRule,
		Penalties:       c.Penalties,
	}
}

// CandidatesToDTO maps a candidate slice to DTOs, preserving order.
func CandidatesToDTO(cands []*Candidate) []ctypes.CandidateDTO {
	out := make([]ctypes.CandidateDTO, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.ToDTO())
	}
	return out
}

//Personal.AI order the ending
