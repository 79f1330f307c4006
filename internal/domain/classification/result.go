package classification

import (
	"time"

	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// ─────────────────────────────────────────────────────────────────────────────
// Validation flags
// ─────────────────────────────────────────────────────────────────────────────

// ValidationFlags records everything the calibrator concluded about the
// winning candidate: coherence checks, evidence counters, penalties applied,
// and the reasons the result was (or was not) routed to manual review.
type ValidationFlags struct {
	ChapterCoherent bool               `json:"chapter_coherent"`
	SuspectCode     bool               `json:"suspect_code"`
	KeywordHits     int                `json:"keyword_hits"`
	NoteHits        int                `json:"note_hits"`
	ValidationScore float64            `json:"validation_score"`
	Penalties       map[string]float64 `json:"penalties,omitempty"`
	ReviewReasons   []ctypes.ReviewReason `json:"review_reasons,omitempty"`
}

// AddReason appends a review reason, ignoring duplicates.
func (v *ValidationFlags) AddReason(r ctypes.ReviewReason) {
	for _, existing := range v.ReviewReasons {
		if existing == r {
			return
		}
	}
	v.ReviewReasons = append(v.ReviewReasons, r)
}

// RequiresReview reports whether any review reason was recorded.
func (v *ValidationFlags) RequiresReview() bool {
	return len(v.ReviewReasons) > 0
}

// ToDTO converts the flags to their transport representation.
func (v ValidationFlags) ToDTO() ctypes.ValidationFlagsDTO {
	return ctypes.ValidationFlagsDTO{
		ChapterCoherent: v.ChapterCoherent,
		SuspectCode:     v.SuspectCode,
		KeywordHits:     v.KeywordHits,
		NoteHits:        v.NoteHits,
		ValidationScore: v.ValidationScore,
		Penalties:       v.Penalties,
		ReviewReasons:   v.ReviewReasons,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Classification result
// ─────────────────────────────────────────────────────────────────────────────

// Result is the full outcome of one classification attempt for a case. It is
// a value produced by the pipeline and attached to the Case aggregate; it is
// never mutated after construction.
type Result struct {
	CaseID       common.ID     `json:"case_id"`
	HS6          string        `json:"hs6"`
	NationalCode ctypes.HSCode `json:"national_code"`
	Title        string        `json:"title"`

	Confidence     float64       `json:"confidence"`
	Method         ctypes.Method `json:"method"`
	RequiresReview bool          `json:"requires_review"`
	Rationale      string        `json:"rationale"`

	Features   FeatureSet      `json:"features"`
	Validation ValidationFlags `json:"validation"`
	Trace      []TraceStep     `json:"trace"`

	// TopCandidates preserves the final ranked shortlist for audit, winner
	// first.
	TopCandidates []*Candidate `json:"top_candidates,omitempty"`

	Duration     time.Duration `json:"-"`
	ClassifiedAt time.Time     `json:"classified_at"`
}

// ToDTO converts the result to its transport representation.
func (r *Result) ToDTO() ctypes.ClassificationResultDTO {
	return ctypes.ClassificationResultDTO{
		CaseID:         r.CaseID,
		HS6:            r.HS6,
		NationalCode:   r.NationalCode,
		Title:          r.Title,
		Confidence:     r.Confidence,
		Method:         r.Method,
		RequiresReview: r.RequiresReview,
		Rationale:      r.Rationale,
		Features:       r.Features.ToDTO(),
		Validation:     r.Validation.ToDTO(),
		Trace:          traceStepsToDTO(r.Trace),
		TopCandidates:  CandidatesToDTO(r.TopCandidates),
		DurationMillis: r.Duration.Milliseconds(),
		ClassifiedAt:   common.Timestamp(r.ClassifiedAt),
	}
}

// ToEvent builds the feedback-stream event published after the attempt.
func (r *Result) ToEvent() ctypes.ClassificationEvent {
	return ctypes.ClassificationEvent{
		CaseID:         r.CaseID,
		Code:           r.NationalCode,
		Confidence:     r.Confidence,
		Method:         r.Method,
		RequiresReview: r.RequiresReview,
		DurationMillis: r.Duration.Milliseconds(),
		Timestamp:      common.Timestamp(r.ClassifiedAt),
	}
}

func traceStepsToDTO(steps []TraceStep) []ctypes.TraceStepDTO {
	out := make([]ctypes.TraceStepDTO, 0, len(steps))
	for _, s := range steps {
		out = append(out, ctypes.TraceStepDTO{
			Rule:           s.Rule,
			Decision:       s.Decision,
			AffectedCodes:  s.AffectedCodes,
			NoteIDs:        s.NoteIDs,
			LegalSourceIDs: s.LegalSourceIDs,
		})
	}
	return out
}

//Personal.AI order the ending
