package classification

import (
	"fmt"
	"strings"

	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// ─────────────────────────────────────────────────────────────────────────────
// Decision trace
// ─────────────────────────────────────────────────────────────────────────────

// TraceStep records one rule-pipeline decision: which rule fired, a
// human-readable statement of what it did, the codes it affected, and the
// legal-note identifiers that justified it.
type TraceStep struct {
	Rule           ctypes.RuleID  `json:"rule"`
	Decision       string         `json:"decision"`
	AffectedCodes  []ctypes.HSCode `json:"affected_codes,omitempty"`
	NoteIDs        []int64        `json:"note_ids,omitempty"`
	LegalSourceIDs []int64        `json:"legal_source_ids,omitempty"`
}

// Trace is the append-only sequence of pipeline decisions for one case. Steps
// are recorded in execution order and never removed or reordered.
type Trace struct {
	steps []TraceStep
}

// Append adds a step to the trace.
func (t *Trace) Append(step TraceStep) {
	t.steps = append(t.steps, step)
}

// Record is a convenience wrapper building a step from a rule and a formatted
// decision statement.
func (t *Trace) Record(rule ctypes.RuleID, format string, args ...interface{}) {
	t.Append(TraceStep{Rule: rule, Decision: fmt.Sprintf(format, args...)})
}

// Steps returns a copy of the recorded steps.
func (t *Trace) Steps() []TraceStep {
	out := make([]TraceStep, len(t.steps))
	copy(out, t.steps)
	return out
}

// Len returns the number of recorded steps.
func (t *Trace) Len() int { return len(t.steps) }

// Rationale renders the trace as the compact audit string attached to a
// result: each step as "RULE: decision", steps joined by " | ".
func (t *Trace) Rationale() string {
	if len(t.steps) == 0 {
		return ""
	}
	parts := make([]string, 0, len(t.steps))
	for _, s := range t.steps {
		parts = append(parts, fmt.Sprintf("%s: %s", s.Rule, s.Decision))
	}
	return strings.Join(parts, " | ")
}

// ToDTO converts the trace to its transport representation.
func (t *Trace) ToDTO() []ctypes.TraceStepDTO {
	out := make([]ctypes.TraceStepDTO, 0, len(t.steps))
	for _, s := range t.steps {
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
