// Package calibrate turns a winning candidate's raw score into a calibrated
// confidence and a review decision. Both steps are pure functions of the
// candidate, its validation flags and the active calibration snapshot, so a
// calibration run is fully reproducible from its inputs.
package calibrate

import (
	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/tuning"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// Strong-evidence thresholds: a suspect-code result skips manual review when
// the candidate carries this much corroboration. The confidence ceiling still
// applies either way.
const (
	strongKeywordHits    = 2
	strongNoteHits       = 1
	strongValidationBase = 0.80
)

// BuildFlags derives the validation flags for a winning candidate from the
// extracted features and the active snapshot.
func BuildFlags(c *classification.Candidate, fs classification.FeatureSet,
	cfg *tuning.CalibrationConfig) *classification.ValidationFlags {

	chapter := c.Chapter()
	flags := &classification.ValidationFlags{
		ChapterCoherent: catalog.ChapterCoherent(fs.PrincipalUse, chapter) &&
			catalog.CategoryCoherent(fs.GoodCategory, chapter),
		SuspectCode: cfg.SuspectSet().Contains(c.Code),
		KeywordHits:     c.KeywordHits,
		NoteHits:        c.NoteHits,
	}
	if len(c.Penalties) > 0 {
		flags.Penalties = make(map[string]float64, len(c.Penalties))
		for reason, amount := range c.Penalties {
			flags.Penalties[reason] = amount
		}
	}
	flags.ValidationScore = validationScore(c, flags.ChapterCoherent)
	return flags
}

// validationScore is a [0,1] composite of the independent evidence channels:
// lexical agreement, catalog keyword hits and chapter coherence.
func validationScore(c *classification.Candidate, coherent bool) float64 {
	keywordEvidence := float64(c.KeywordHits) / 4.0
	if keywordEvidence > 1 {
		keywordEvidence = 1
	}
	coherence := 0.0
	if coherent {
		coherence = 1.0
	}
	score := 0.4*clamp01(c.LexicalScore) + 0.3*keywordEvidence + 0.3*coherence
	if c.NoteHits > 0 {
		score += 0.1
	}
	return clamp01(score)
}

// StrongEvidence reports whether the flags corroborate the candidate enough
// for a suspect-code result to clear manual review.
func StrongEvidence(flags *classification.ValidationFlags) bool {
	return flags.KeywordHits >= strongKeywordHits ||
		flags.NoteHits >= strongNoteHits ||
		flags.ValidationScore >= strongValidationBase
}

// Calibrate computes the final confidence and review decision for a winning
// candidate, recording every review reason on the flags. The candidate and
// snapshot are not modified.
func Calibrate(c *classification.Candidate, flags *classification.ValidationFlags,
	cfg *tuning.CalibrationConfig) (float64, bool) {

	confidence := clamp01(c.TotalScore)
	review := false
	strong := StrongEvidence(flags)

	// An incoherent chapter is the hardest failure: the confidence collapses
	// and review is mandatory, never auto-cleared.
	if !flags.ChapterCoherent {
		if confidence > cfg.LowConfidenceCutoff {
			confidence = cfg.LowConfidenceCutoff
		}
		flags.AddReason(ctypes.ReasonChapterIncoherent)
		review = true
	}

	// A suspect code is always capped at the ceiling, no matter how well the
	// scorer liked it. Corroborating evidence only decides whether a human
	// still has to look at it.
	if flags.SuspectCode {
		if confidence > cfg.SuspectCeiling {
			confidence = cfg.SuspectCeiling
		}
		flags.AddReason(ctypes.ReasonSuspectCode)
		if !strong {
			flags.AddReason(ctypes.ReasonWeakEvidence)
			review = true
		}
	}

	if confidence < cfg.LowConfidenceCutoff {
		flags.AddReason(ctypes.ReasonLowConfidence)
		review = true
	}

	if flags.ValidationScore < cfg.LowConfidenceCutoff {
		flags.AddReason(ctypes.ReasonLowValidation)
		review = true
	}

	// A well-scored coherent result whose only concern is soft clears review
	// on its own. Suspect codes never auto-clear: only strong evidence keeps
	// them out of review, and that path never set review in the first place.
	if review && flags.ChapterCoherent && !flags.SuspectCode &&
		confidence >= cfg.AutoClearThreshold &&
		flags.ValidationScore >= cfg.LowConfidenceCutoff {
		review = false
	}

	return confidence, review
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

//Personal.AI order the ending
