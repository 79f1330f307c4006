package calibrate

import (
	"testing"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/tuning"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

func hasReason(flags *classification.ValidationFlags, r ctypes.ReviewReason) bool {
	for _, existing := range flags.ReviewReasons {
		if existing == r {
			return true
		}
	}
	return false
}

func TestBuildFlags_CoherentNonSuspect(t *testing.T) {
	cfg := tuning.DefaultConfig()
	fs := classification.DefaultFeatureSet()
	fs.PrincipalUse = ctypes.UseApparel

	c := &classification.Candidate{
		Code: "6109100000", LexicalScore: 0.9, KeywordHits: 3, NoteHits: 1,
	}
	flags := BuildFlags(c, fs, cfg)

	if !flags.ChapterCoherent {
		t.Fatal("chapter 61 is coherent for apparel")
	}
	if flags.SuspectCode {
		t.Fatal("6109100000 is not a suspect code")
	}
	if flags.ValidationScore < 0.8 {
		t.Fatalf("strong evidence should score high, got %f", flags.ValidationScore)
	}
}

func TestBuildFlags_SuspectDetected(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "1905000000"}
	flags := BuildFlags(c, classification.DefaultFeatureSet(), cfg)
	if !flags.SuspectCode {
		t.Fatal("1905000000 must be flagged as suspect")
	}

	// The laptop code carries a monopoly scoring penalty but is not part of
	// the review policy, so it must not be flagged here.
	c = &classification.Candidate{Code: "8471300000"}
	flags = BuildFlags(c, classification.DefaultFeatureSet(), cfg)
	if flags.SuspectCode {
		t.Fatal("8471300000 must not be flagged as suspect")
	}
}

func TestBuildFlags_CategoryRestrictsChapter(t *testing.T) {
	cfg := tuning.DefaultConfig()
	fs := classification.DefaultFeatureSet()
	fs.GoodCategory = ctypes.GoodLiveAnimal

	c := &classification.Candidate{Code: "8471300000"}
	if flags := BuildFlags(c, fs, cfg); flags.ChapterCoherent {
		t.Fatal("a live animal outside chapter 01 must be incoherent")
	}

	c = &classification.Candidate{Code: "0102290000"}
	if flags := BuildFlags(c, fs, cfg); !flags.ChapterCoherent {
		t.Fatal("chapter 01 is coherent for a live animal")
	}
}

func TestCalibrate_CleanHighScorePasses(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "6109100000", TotalScore: 0.82}
	flags := &classification.ValidationFlags{ChapterCoherent: true, ValidationScore: 0.7}

	conf, review := Calibrate(c, flags, cfg)
	if conf != 0.82 {
		t.Fatalf("confidence %f, want 0.82", conf)
	}
	if review {
		t.Fatal("clean result must not be routed to review")
	}
}

func TestCalibrate_ClampsAboveOne(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "6109100000", TotalScore: 1.05}
	flags := &classification.ValidationFlags{ChapterCoherent: true, ValidationScore: 0.9}

	conf, _ := Calibrate(c, flags, cfg)
	if conf != 1.0 {
		t.Fatalf("priority base score must clamp to 1.0, got %f", conf)
	}
}

func TestCalibrate_IncoherentChapterCollapses(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "0901210000", TotalScore: 0.9}
	flags := &classification.ValidationFlags{ChapterCoherent: false, ValidationScore: 0.9}

	conf, review := Calibrate(c, flags, cfg)
	if conf > cfg.LowConfidenceCutoff {
		t.Fatalf("incoherent confidence %f must not exceed %f", conf, cfg.LowConfidenceCutoff)
	}
	if !review {
		t.Fatal("incoherent chapter must force review")
	}
	if !hasReason(flags, ctypes.ReasonChapterIncoherent) {
		t.Fatal("missing chapter_incoherent reason")
	}
}

func TestCalibrate_IncoherenceNeverAutoCleared(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "0901210000", TotalScore: 0.95}
	flags := &classification.ValidationFlags{ChapterCoherent: false, ValidationScore: 0.95}

	_, review := Calibrate(c, flags, cfg)
	if !review {
		t.Fatal("auto-clear must not apply to incoherent chapters")
	}
}

func TestCalibrate_SuspectCappedWithoutEvidence(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "1905000000", TotalScore: 0.9}
	flags := &classification.ValidationFlags{
		ChapterCoherent: true, SuspectCode: true, ValidationScore: 0.4,
	}

	conf, review := Calibrate(c, flags, cfg)
	if conf != cfg.SuspectCeiling {
		t.Fatalf("confidence %f, want ceiling %f", conf, cfg.SuspectCeiling)
	}
	if !hasReason(flags, ctypes.ReasonSuspectCode) || !hasReason(flags, ctypes.ReasonWeakEvidence) {
		t.Fatalf("missing suspect reasons: %v", flags.ReviewReasons)
	}
	if !review {
		t.Fatal("an unevidenced suspect must never auto-clear review")
	}
}

func TestCalibrate_SuspectCapHoldsUnderStrongEvidence(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "1905000000", TotalScore: 0.95}
	flags := &classification.ValidationFlags{
		ChapterCoherent: true, SuspectCode: true,
		KeywordHits: 3, ValidationScore: 0.6,
	}

	conf, review := Calibrate(c, flags, cfg)
	// The ceiling applies no matter how high the raw score is; strong
	// evidence only decides the review routing.
	if conf != cfg.SuspectCeiling {
		t.Fatalf("confidence %f, want ceiling %f", conf, cfg.SuspectCeiling)
	}
	if review {
		t.Fatal("evidenced suspect must not be reviewed")
	}
	if !hasReason(flags, ctypes.ReasonSuspectCode) {
		t.Fatal("the applied cap must be recorded as a suspect reason")
	}
	if hasReason(flags, ctypes.ReasonWeakEvidence) {
		t.Fatal("no weak-evidence reason when evidence is strong")
	}
}

func TestCalibrate_SuspectClearedByNoteHit(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "1905000000", TotalScore: 0.85}
	flags := &classification.ValidationFlags{
		ChapterCoherent: true, SuspectCode: true,
		NoteHits: 1, ValidationScore: 0.5,
	}

	conf, review := Calibrate(c, flags, cfg)
	if conf != cfg.SuspectCeiling {
		t.Fatalf("confidence %f, want ceiling %f", conf, cfg.SuspectCeiling)
	}
	if review {
		t.Fatal("a legal-note hit is strong evidence and skips review")
	}
}

func TestCalibrate_LowConfidenceReviewed(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "610910", TotalScore: 0.12}
	flags := &classification.ValidationFlags{ChapterCoherent: true, ValidationScore: 0.5}

	conf, review := Calibrate(c, flags, cfg)
	if conf != 0.12 {
		t.Fatalf("confidence %f, want raw 0.12", conf)
	}
	if !review || !hasReason(flags, ctypes.ReasonLowConfidence) {
		t.Fatal("sub-cutoff confidence must be reviewed")
	}
}

func TestCalibrate_LowValidationReviewed(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "610910", TotalScore: 0.7}
	flags := &classification.ValidationFlags{ChapterCoherent: true, ValidationScore: 0.1}

	_, review := Calibrate(c, flags, cfg)
	if !review || !hasReason(flags, ctypes.ReasonLowValidation) {
		t.Fatal("a near-zero validation score must block auto-clear and force review")
	}
}

func TestCalibrate_SuspectBelowAutoClearStaysReviewed(t *testing.T) {
	cfg := tuning.DefaultConfig()
	c := &classification.Candidate{Code: "1905000000", TotalScore: 0.45}
	flags := &classification.ValidationFlags{
		ChapterCoherent: true, SuspectCode: true, ValidationScore: 0.4,
	}

	conf, review := Calibrate(c, flags, cfg)
	if conf != 0.45 {
		t.Fatalf("confidence %f, want 0.45 (already under the ceiling)", conf)
	}
	if !review {
		t.Fatal("sub-threshold suspect must stay in review")
	}
}

func TestCalibrate_Deterministic(t *testing.T) {
	cfg := tuning.DefaultConfig()
	for i := 0; i < 3; i++ {
		c := &classification.Candidate{Code: "1905000000", TotalScore: 0.9}
		flags := &classification.ValidationFlags{
			ChapterCoherent: true, SuspectCode: true, ValidationScore: 0.4,
		}
		conf, review := Calibrate(c, flags, cfg)
		if conf != cfg.SuspectCeiling || !review {
			t.Fatalf("run %d diverged: conf=%f review=%v", i, conf, review)
		}
	}
}

//Personal.AI order the ending
