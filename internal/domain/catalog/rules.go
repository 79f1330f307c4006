package catalog

import (
	"sort"
	"strings"

	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// ─────────────────────────────────────────────────────────────────────────────
// Priority rules
// ─────────────────────────────────────────────────────────────────────────────

// PriorityRuleBaseScore is the fixed elevated base score a candidate injected
// by a matched priority rule starts with. It deliberately exceeds 1.0 so a
// priority match outranks any purely weighted combination.
const PriorityRuleBaseScore = 1.05

// PriorityRule maps trigger keywords or a feature category directly to a
// code. Rules are evaluated before the catalog search; a match injects the
// rule's code as a candidate with PriorityRuleBaseScore.
//
// Rules are either curated by hand or learned from evaluation runs by the
// adaptive tuner.
type PriorityRule struct {
	Keywords []string            `json:"keywords,omitempty"`
	Category ctypes.GoodCategory `json:"category,omitempty"`
	Code     ctypes.HSCode       `json:"code"`
	Title    string              `json:"title"`

	// Confidence is set on learned rules only; curated rules leave it zero.
	Confidence float64 `json:"confidence,omitempty"`
}

// Matches reports whether the rule fires for the given lowercase text and
// feature category: any trigger keyword found in the text, or a non-empty
// rule category equal to the extracted one.
func (r PriorityRule) Matches(text string, category ctypes.GoodCategory) bool {
	return r.MatchCount(text, category) > 0
}

// MatchCount counts the rule's trigger keywords found in the text, plus one
// when the rule's category matches the extracted one. The count feeds the
// injected candidate's keyword-hit evidence so downstream validation sees the
// same corroboration a catalog entry would carry.
func (r PriorityRule) MatchCount(text string, category ctypes.GoodCategory) int {
	n := 0
	if r.Category != "" && r.Category == category {
		n++
	}
	text = strings.ToLower(text)
	for _, kw := range r.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────────
// Suspect codes
// ─────────────────────────────────────────────────────────────────────────────

// SuspectSet is the set of codes the engine has historically over-predicted;
// confidence for these codes is capped unless strong evidence backs them.
type SuspectSet map[ctypes.HSCode]struct{}

// NewSuspectSet builds a set from normalized codes.
func NewSuspectSet(codes ...string) SuspectSet {
	s := make(SuspectSet, len(codes))
	for _, c := range codes {
		s[ctypes.NormalizeHSCode(c)] = struct{}{}
	}
	return s
}

// Codes returns the set's codes in ascending order.
func (s SuspectSet) Codes() []ctypes.HSCode {
	out := make([]ctypes.HSCode, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether the code, or its 10-digit national form, is
// suspect. 6-digit codes are compared against the set's national entries by
// prefix.
func (s SuspectSet) Contains(code ctypes.HSCode) bool {
	if _, ok := s[code]; ok {
		return true
	}
	if len(code) == 6 {
		for suspect := range s {
			if suspect.HS6() == string(code) {
				return true
			}
		}
	}
	return false
}

//Personal.AI order the ending
