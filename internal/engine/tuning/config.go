// Package tuning owns the calibration parameters of the classification
// engine and their adaptive refresh from batch-evaluation summaries. The
// active configuration is an immutable snapshot swapped atomically, so
// concurrent classifications always read a consistent parameter set.
package tuning

import (
	"math"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// Default calibration parameters. The weights are the hybrid-score mix, the
// thresholds gate the confidence calibration.
const (
	DefaultSemanticWeight   = 0.30
	DefaultLexicalWeight    = 0.25
	DefaultContextualWeight = 0.45

	DefaultMinSemantic         = 0.30
	DefaultSuspectCeiling      = 0.65
	DefaultAutoClearThreshold  = 0.58
	DefaultLowConfidenceCutoff = 0.20

	// minAutoClear bounds how far adaptive refresh may lower the auto-clear
	// threshold.
	minAutoClear = 0.50

	// maxCodePenalty bounds the per-code semantic penalty accumulated over
	// refresh cycles.
	maxCodePenalty = 0.30
)

// CalibrationConfig is one immutable snapshot of the engine's tunable
// parameters. Snapshots must not be mutated after publication; Clone first.
type CalibrationConfig struct {
	// Score weights; Validate requires them to sum to 1.0.
	SemanticWeight   float64 `json:"semantic_weight"`
	LexicalWeight    float64 `json:"lexical_weight"`
	ContextualWeight float64 `json:"contextual_weight"`

	// MinSemantic is the floor below which the semantic component
	// contributes nothing.
	MinSemantic float64 `json:"min_semantic"`

	// SuspectCeiling caps the confidence of codes in the suspect set unless
	// strong evidence clears them.
	SuspectCeiling float64 `json:"suspect_ceiling"`

	// AutoClearThreshold is the confidence at which a review flag raised for
	// weak evidence alone is cleared again.
	AutoClearThreshold float64 `json:"auto_clear_threshold"`

	// LowConfidenceCutoff marks results for review regardless of other
	// evidence.
	LowConfidenceCutoff float64 `json:"low_confidence_cutoff"`

	// CodePenalties are per-code semantic penalties learned from evaluation
	// runs, merged into candidate scores by maximum.
	CodePenalties map[ctypes.HSCode]float64 `json:"code_penalties,omitempty"`

	// SuspectCodes is the over-predicted code set the ceiling applies to.
	SuspectCodes []ctypes.HSCode `json:"suspect_codes"`
}

// DefaultConfig returns the compiled-in calibration snapshot.
func DefaultConfig() *CalibrationConfig {
	return &CalibrationConfig{
		SemanticWeight:      DefaultSemanticWeight,
		LexicalWeight:       DefaultLexicalWeight,
		ContextualWeight:    DefaultContextualWeight,
		MinSemantic:         DefaultMinSemantic,
		SuspectCeiling:      DefaultSuspectCeiling,
		AutoClearThreshold:  DefaultAutoClearThreshold,
		LowConfidenceCutoff: DefaultLowConfidenceCutoff,
		CodePenalties:       map[ctypes.HSCode]float64{},
		SuspectCodes:        catalog.DefaultSuspectCodes.Codes(),
	}
}

// Validate checks the snapshot's internal consistency.
func (c *CalibrationConfig) Validate() error {
	if c.SemanticWeight < 0 || c.LexicalWeight < 0 || c.ContextualWeight < 0 {
		return errors.New(errors.CodeInvalidParam, "calibration weights must be non-negative")
	}
	sum := c.SemanticWeight + c.LexicalWeight + c.ContextualWeight
	if math.Abs(sum-1.0) > 1e-6 {
		return errors.Newf(errors.CodeInvalidParam, "calibration weights must sum to 1.0, got %.4f", sum)
	}
	for _, th := range []float64{c.MinSemantic, c.SuspectCeiling, c.AutoClearThreshold, c.LowConfidenceCutoff} {
		if th < 0 || th > 1 {
			return errors.New(errors.CodeInvalidParam, "calibration thresholds must lie in [0,1]")
		}
	}
	if c.LowConfidenceCutoff >= c.AutoClearThreshold {
		return errors.New(errors.CodeInvalidParam, "low-confidence cutoff must be below the auto-clear threshold")
	}
	return nil
}

// Clone returns a deep copy safe to mutate before publishing.
func (c *CalibrationConfig) Clone() *CalibrationConfig {
	out := *c
	out.CodePenalties = make(map[ctypes.HSCode]float64, len(c.CodePenalties))
	for k, v := range c.CodePenalties {
		out.CodePenalties[k] = v
	}
	out.SuspectCodes = append([]ctypes.HSCode(nil), c.SuspectCodes...)
	return &out
}

// normalizeWeights rescales the weight triple to sum to exactly 1.0.
func (c *CalibrationConfig) normalizeWeights() {
	sum := c.SemanticWeight + c.LexicalWeight + c.ContextualWeight
	if sum <= 0 {
		c.SemanticWeight = DefaultSemanticWeight
		c.LexicalWeight = DefaultLexicalWeight
		c.ContextualWeight = DefaultContextualWeight
		return
	}
	c.SemanticWeight /= sum
	c.LexicalWeight /= sum
	c.ContextualWeight /= sum
}

// SuspectSet builds the lookup over the snapshot's suspect codes.
func (c *CalibrationConfig) SuspectSet() catalog.SuspectSet {
	codes := make([]string, len(c.SuspectCodes))
	for i, code := range c.SuspectCodes {
		codes[i] = string(code)
	}
	return catalog.NewSuspectSet(codes...)
}

// PenaltyFor returns the learned semantic penalty for a code, 0 when none.
func (c *CalibrationConfig) PenaltyFor(code ctypes.HSCode) float64 {
	if c.CodePenalties == nil {
		return 0
	}
	return c.CodePenalties[code]
}

//Personal.AI order the ending
