package classification

import (
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// ─────────────────────────────────────────────────────────────────────────────
// FeatureSet value object
// ─────────────────────────────────────────────────────────────────────────────

// FeatureSet is the structured record extracted from a case text before the
// rule pipeline runs. It is immutable once produced by the extractor; every
// downstream stage (candidate assembly, contextual scoring, calibration)
// reads from it but never writes to it.
type FeatureSet struct {
	GoodCategory    ctypes.GoodCategory    `json:"good_category"`
	PrincipalUse    ctypes.PrincipalUse    `json:"principal_use"`
	ProcessingLevel ctypes.ProcessingLevel `json:"processing_level"`
	Material        ctypes.Material        `json:"material"`

	// Disambiguation flags for goods whose heading depends on preparation
	// state rather than substance (instant coffee vs. roasted beans, seed vs.
	// edible grain).
	IsInstant      bool `json:"is_instant"`
	IsReadyToDrink bool `json:"is_ready_to_drink_beverage"`
	IsSeed         bool `json:"is_seed"`
	IsFertilizer   bool `json:"is_fertilizer"`

	// Tokens is the normalized token sequence of the case text, stop words
	// removed, in original order.
	Tokens []string `json:"-"`
}

// DefaultFeatureSet is the neutral record used when extraction finds nothing:
// every enum at its unknown/general value, every flag false.
func DefaultFeatureSet() FeatureSet {
	return FeatureSet{
		GoodCategory:    ctypes.GoodUnknown,
		PrincipalUse:    ctypes.UseGeneral,
		ProcessingLevel: ctypes.ProcessingFinished,
		Material:        ctypes.MaterialUnspecified,
	}
}

// IsNeutral reports whether the feature set carries no extracted signal
// beyond the defaults.
func (f FeatureSet) IsNeutral() bool {
	return f.GoodCategory == ctypes.GoodUnknown &&
		f.PrincipalUse == ctypes.UseGeneral &&
		f.Material == ctypes.MaterialUnspecified &&
		!f.IsInstant && !f.IsReadyToDrink && !f.IsSeed && !f.IsFertilizer
}

// ToDTO converts the feature set to its transport representation.
func (f FeatureSet) ToDTO() ctypes.FeatureSetDTO {
	return ctypes.FeatureSetDTO{
		GoodCategory:    f.GoodCategory,
		PrincipalUse:    f.PrincipalUse,
		ProcessingLevel: f.ProcessingLevel,
		Material:        f.Material,
		IsInstant:       f.IsInstant,
		IsReadyToDrink:  f.IsReadyToDrink,
		IsSeed:          f.IsSeed,
		IsFertilizer:    f.IsFertilizer,
	}
}

//Personal.AI order the ending
