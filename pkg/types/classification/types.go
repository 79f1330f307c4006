package classification

import (
	"fmt"
	"strings"

	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
)

// HSCode is a hierarchical commodity classification code: 6 shared digits
// (chapter, heading, subheading) optionally extended to a 10-digit national
// code. Stored digits-only; dotted input forms ("84.71.30") are accepted by
// NormalizeHSCode.
type HSCode string

// NormalizeHSCode strips every non-digit character from s and returns the
// resulting HSCode. An input with no digits yields the empty code.
func NormalizeHSCode(s string) HSCode {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return HSCode(b.String())
}

// Chapter returns the first 2 digits, or "" when the code is too short.
func (c HSCode) Chapter() string {
	if len(c) < 2 {
		return ""
	}
	return string(c[:2])
}

// Heading returns the first 4 digits, or "" when the code is too short.
func (c HSCode) Heading() string {
	if len(c) < 4 {
		return ""
	}
	return string(c[:4])
}

// HS6 returns the first 6 digits, or "" when the code is too short.
func (c HSCode) HS6() string {
	if len(c) < 6 {
		return ""
	}
	return string(c[:6])
}

// IsNational reports whether the code carries the full 10-digit national
// extension.
func (c HSCode) IsNational() bool {
	return len(c) == 10
}

// Validate checks that the code is digits-only and at least heading-level.
func (c HSCode) Validate() error {
	if len(c) < 4 {
		return fmt.Errorf("hs code %q is shorter than a heading", string(c))
	}
	for _, r := range c {
		if r < '0' || r > '9' {
			return fmt.Errorf("hs code %q contains non-digit characters", string(c))
		}
	}
	return nil
}

// GoodCategory is the broad category assigned to a described good.
type GoodCategory string

const (
	GoodFinished      GoodCategory = "finished_good"
	GoodRawMaterial   GoodCategory = "raw_material"
	GoodPartAccessory GoodCategory = "part_accessory"
	GoodSeed          GoodCategory = "seed"
	GoodFertilizer    GoodCategory = "fertilizer"
	GoodLiveAnimal    GoodCategory = "live_animal"
	GoodUnknown       GoodCategory = "unknown"
)

// IsValid checks if the GoodCategory is one of the supported values.
func (g GoodCategory) IsValid() bool {
	switch g {
	case GoodFinished, GoodRawMaterial, GoodPartAccessory, GoodSeed, GoodFertilizer, GoodLiveAnimal, GoodUnknown:
		return true
	default:
		return false
	}
}

// PrincipalUse is the primary application domain inferred from the text.
type PrincipalUse string

const (
	UseComputing     PrincipalUse = "computing"
	UseTelecom       PrincipalUse = "telecom"
	UseConstruction  PrincipalUse = "construction"
	UseFood          PrincipalUse = "food"
	UseBeverage      PrincipalUse = "beverage"
	UseApparel       PrincipalUse = "apparel"
	UseFootwear      PrincipalUse = "footwear"
	UseMedical       PrincipalUse = "medical"
	UseAutomotive    PrincipalUse = "automotive"
	UseAgriculture   PrincipalUse = "agriculture"
	UseLivestock     PrincipalUse = "livestock"
	UseChemical      PrincipalUse = "chemical"
	UseCosmetics     PrincipalUse = "cosmetics"
	UseCleaning      PrincipalUse = "cleaning"
	UseFurniture     PrincipalUse = "furniture"
	UseLighting      PrincipalUse = "lighting"
	UseToys          PrincipalUse = "toys"
	UseSports        PrincipalUse = "sports"
	UseOffice        PrincipalUse = "office"
	UseArt           PrincipalUse = "art"
	UseJewelry       PrincipalUse = "jewelry"
	UseHorology      PrincipalUse = "horology"
	UseOptics        PrincipalUse = "optics"
	UseMachinery     PrincipalUse = "machinery"
	UseElectrical    PrincipalUse = "electrical"
	UseMetallurgy    PrincipalUse = "metallurgy"
	UseHomeTextile   PrincipalUse = "home_textile"
	UseKitchen       PrincipalUse = "kitchen"
	UseGardening     PrincipalUse = "gardening"
	UsePackaging     PrincipalUse = "packaging"
	UseGeneral       PrincipalUse = "general"
)

// ProcessingLevel describes how far along the production chain a good is.
type ProcessingLevel string

const (
	ProcessingRaw      ProcessingLevel = "raw"
	ProcessingSemi     ProcessingLevel = "semi"
	ProcessingFinished ProcessingLevel = "finished"
)

// Material is the dominant material inferred from the text.
type Material string

const (
	MaterialMetal       Material = "metal"
	MaterialPlastic     Material = "plastic"
	MaterialWood        Material = "wood"
	MaterialGlass       Material = "glass"
	MaterialCeramic     Material = "ceramic"
	MaterialTextile     Material = "textile"
	MaterialPaper       Material = "paper"
	MaterialLeather     Material = "leather"
	MaterialRubber      Material = "rubber"
	MaterialUnspecified Material = "unspecified"
)

// Method tags how a classification decision was reached.
type Method string

const (
	MethodPriorityRule Method = "priority_rule"
	MethodRulePipeline Method = "rule_pipeline"
	MethodError        Method = "error"
)

// ReviewReason identifies why a classification was flagged for manual review.
type ReviewReason string

const (
	ReasonChapterIncoherent ReviewReason = "chapter_incoherent"
	ReasonSuspectCode       ReviewReason = "suspect_code"
	ReasonWeakEvidence      ReviewReason = "weak_evidence"
	ReasonLowConfidence     ReviewReason = "low_confidence"
	ReasonLowValidation     ReviewReason = "low_validation"
	ReasonNoCandidates      ReviewReason = "no_candidates"
	ReasonTextTooShort      ReviewReason = "text_too_short"
)

// RuleID identifies a stage of the interpretation-rule pipeline.
type RuleID string

const (
	RuleTextualNotes  RuleID = "RGI1"
	RuleIncomplete    RuleID = "RGI2"
	RuleSpecificity   RuleID = "RGI3"
	RuleSameLevel     RuleID = "RGI6"
)

// FeatureSetDTO is the structured feature record extracted from case text.
type FeatureSetDTO struct {
	GoodCategory    GoodCategory    `json:"good_category"`
	PrincipalUse    PrincipalUse    `json:"principal_use"`
	ProcessingLevel ProcessingLevel `json:"processing_level"`
	Material        Material        `json:"material"`
	IsInstant       bool            `json:"is_instant"`
	IsReadyToDrink  bool            `json:"is_ready_to_drink_beverage"`
	IsSeed          bool            `json:"is_seed"`
	IsFertilizer    bool            `json:"is_fertilizer"`
}

// CandidateDTO carries one candidate code with its score breakdown.
type CandidateDTO struct {
	Code            HSCode             `json:"code"`
	Title           string             `json:"title"`
	Keywords        []string           `json:"keywords,omitempty"`
	SemanticScore   float64            `json:"semantic_score"`
	LexicalScore    float64            `json:"lexical_score"`
	ContextualScore float64            `json:"contextual_score"`
	TotalScore      float64            `json:"total_score"`
	KeywordHits     int                `json:"keyword_hits"`
	NoteHits        int                `json:"note_hits"`
	PriorityRule    bool               `json:"priority_rule"`
	Penalties       map[string]float64 `json:"penalties,omitempty"`
}

// TraceStepDTO is one rule-pipeline decision with its legal references.
type TraceStepDTO struct {
	Rule            RuleID   `json:"rule"`
	Decision        string   `json:"decision"`
	AffectedCodes   []HSCode `json:"affected_codes"`
	NoteIDs         []int64  `json:"note_ids,omitempty"`
	LegalSourceIDs  []int64  `json:"legal_source_ids,omitempty"`
}

// ValidationFlagsDTO records the calibration verdicts for one classification.
type ValidationFlagsDTO struct {
	ChapterCoherent bool           `json:"chapter_coherent"`
	SuspectCode     bool           `json:"suspect_code"`
	KeywordHits     int            `json:"keyword_hits"`
	NoteHits        int            `json:"note_hits"`
	ValidationScore float64        `json:"validation_score"`
	Penalties       map[string]float64 `json:"penalties,omitempty"`
	ReviewReasons   []ReviewReason `json:"review_reasons,omitempty"`
}

// ClassifyRequest is the external input to the classify operation.
type ClassifyRequest struct {
	CaseID      common.ID         `json:"case_id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Text joins title and description into the classifiable text.
func (r ClassifyRequest) Text() string {
	return strings.TrimSpace(strings.TrimSpace(r.Title) + " " + strings.TrimSpace(r.Description))
}

// ClassificationResultDTO is the full outcome of one classify call.
type ClassificationResultDTO struct {
	CaseID         common.ID          `json:"case_id"`
	HS6            string             `json:"hs6"`
	NationalCode   HSCode             `json:"national_code"`
	Title          string             `json:"title"`
	Confidence     float64            `json:"confidence"`
	Method         Method             `json:"method"`
	RequiresReview bool               `json:"requires_review"`
	Rationale      string             `json:"rationale"`
	Features       FeatureSetDTO      `json:"features"`
	Validation     ValidationFlagsDTO `json:"validation"`
	Trace          []TraceStepDTO     `json:"trace"`
	TopCandidates  []CandidateDTO     `json:"top_candidates,omitempty"`
	DurationMillis int64              `json:"duration_ms"`
	ClassifiedAt   common.Timestamp   `json:"classified_at"`
}

// ClassificationEvent is published to the feedback/metrics sink after every
// classification attempt.
type ClassificationEvent struct {
	CaseID         common.ID        `json:"case_id"`
	Code           HSCode           `json:"code"`
	Confidence     float64          `json:"confidence"`
	Method         Method           `json:"method"`
	RequiresReview bool             `json:"requires_review"`
	DurationMillis int64            `json:"duration_ms"`
	Timestamp      common.Timestamp `json:"timestamp"`
}

// CodeFrequency pairs a code with its occurrence count in an evaluation run.
type CodeFrequency struct {
	Code  HSCode `json:"hs"`
	Count int    `json:"count"`
}

// EvaluationSummary is the aggregate produced by a batch evaluation run and
// consumed by the adaptive tuning refresh.
type EvaluationSummary struct {
	GeneratedAt       common.Timestamp `json:"generated_at"`
	Total             int              `json:"total"`
	ExactMatches      int              `json:"exact_matches"`
	AvgConfidence     float64          `json:"avg_confidence"`
	SuspiciousRatio   float64          `json:"suspicious_ratio"`
	ReviewRatio       float64          `json:"review_ratio"`
	TopCodes          []CodeFrequency  `json:"top_hs_codes"`
	PredictedSuspects []CodeFrequency  `json:"predicted_suspects,omitempty"`
}

// Accuracy returns the exact-match ratio, 0 when the run was empty.
func (s EvaluationSummary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.ExactMatches) / float64(s.Total)
}

//Personal.AI order the ending
