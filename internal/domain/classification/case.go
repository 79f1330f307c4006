// Package classification implements the classification bounded context for
// the HSCode-Intelligence platform: the Case aggregate root, the extracted
// feature set, scored candidates, the decision trace, and the final
// classification result. All business rules that decide which tariff code a
// described good receives live here; infrastructure concerns (persistence,
// search, embeddings) are handled by separate repository and adapter layers.
package classification

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// MinTextRunes is the minimum number of runes (after trimming) a case text
// must contain to be classifiable.
const MinTextRunes = 3

// ─────────────────────────────────────────────────────────────────────────────
// State machine: allowed case status transitions
// ─────────────────────────────────────────────────────────────────────────────

// CaseStatus is the lifecycle state of a classification case.
type CaseStatus string

const (
	CaseOpen       CaseStatus = "open"
	CaseClassified CaseStatus = "classified"
	CaseInReview   CaseStatus = "in_review"
	CaseClosed     CaseStatus = "closed"
	CaseFailed     CaseStatus = "failed"
)

// allowedTransitions defines the valid next states reachable from each status.
// Transitions not listed are illegal and will be rejected.
//
//	Open ──► Classified ──► Closed
//	  │           │
//	  │           └──► InReview ──► Closed
//	  └──► Failed ──► Open (retry)
var allowedTransitions = map[CaseStatus][]CaseStatus{
	CaseOpen:       {CaseClassified, CaseInReview, CaseFailed},
	CaseClassified: {CaseInReview, CaseClosed, CaseOpen},
	CaseInReview:   {CaseClosed, CaseOpen},
	CaseFailed:     {CaseOpen},
	// Terminal state: no outgoing transitions.
	CaseClosed: {},
}

// ─────────────────────────────────────────────────────────────────────────────
// Case aggregate root
// ─────────────────────────────────────────────────────────────────────────────

// Case is the aggregate root of the classification bounded context. It holds
// the free-text description of a good, its structured attributes, the
// lifecycle status, and — once the decision pipeline has run — the resulting
// classification.
//
// Consumers must never modify its fields directly; all mutations go through
// the exported methods so that invariants and domain events are correctly
// maintained.
type Case struct {
	common.BaseEntity

	Title       string            `json:"title"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes,omitempty"`

	Status CaseStatus `json:"status"`

	// Result is set once a classification attempt has completed, including
	// failed attempts (Method == MethodError).
	Result *Result `json:"result,omitempty"`

	events []common.DomainEvent
}

// NewCase creates a new Case aggregate, enforcing construction invariants:
//   - the combined title+description text must contain at least MinTextRunes
//     runes after trimming whitespace.
//
// On success the case starts in CaseOpen and a CaseCreated domain event is
// recorded.
func NewCase(title, description string, attributes map[string]string) (*Case, error) {
	text := joinText(title, description)
	if utf8.RuneCountInString(text) < MinTextRunes {
		return nil, errors.New(errors.CodeTextTooShort,
			fmt.Sprintf("case text must contain at least %d characters", MinTextRunes))
	}

	now := time.Now().UTC()
	c := &Case{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Attributes:  attributes,
		Status:      CaseOpen,
	}

	c.recordEvent(NewCaseCreatedEvent(c))
	return c, nil
}

// joinText combines title and description into the classifiable text.
func joinText(title, description string) string {
	return strings.TrimSpace(strings.TrimSpace(title) + " " + strings.TrimSpace(description))
}

// Text returns the combined title+description the pipeline classifies.
func (c *Case) Text() string {
	return joinText(c.Title, c.Description)
}

// TransitionTo moves the case to the given status, rejecting transitions not
// present in the state machine.
func (c *Case) TransitionTo(next CaseStatus) error {
	for _, s := range allowedTransitions[c.Status] {
		if s == next {
			c.Status = next
			c.touch()
			return nil
		}
	}
	return errors.InvalidState(
		fmt.Sprintf("illegal case transition %s -> %s", c.Status, next))
}

// AttachResult stores the outcome of a classification attempt and moves the
// case to the matching status: CaseInReview when the result demands review,
// CaseFailed when the pipeline errored, CaseClassified otherwise. The case
// must be open.
func (c *Case) AttachResult(r *Result) error {
	if c.Status != CaseOpen {
		return errors.InvalidState(
			fmt.Sprintf("case %s is not open (status %s)", c.ID, c.Status))
	}
	if r == nil {
		return errors.InvalidParam("result must not be nil")
	}

	next := CaseClassified
	switch {
	case r.Method == ctypes.MethodError:
		next = CaseFailed
	case r.RequiresReview:
		next = CaseInReview
	}
	if err := c.TransitionTo(next); err != nil {
		return err
	}

	c.Result = r
	c.recordEvent(NewCaseClassifiedEvent(c, r))
	if next == CaseInReview {
		c.recordEvent(NewReviewRequestedEvent(c, r))
	}
	return nil
}

// Reopen returns a classified, reviewed, or failed case to CaseOpen so it can
// be re-classified, discarding the previous result.
func (c *Case) Reopen() error {
	if err := c.TransitionTo(CaseOpen); err != nil {
		return err
	}
	c.Result = nil
	return nil
}

// touch bumps the audit metadata after a mutation.
func (c *Case) touch() {
	c.UpdatedAt = time.Now().UTC()
	c.Version++
}

// recordEvent appends e to the unpublished event buffer.
func (c *Case) recordEvent(e common.DomainEvent) {
	c.events = append(c.events, e)
}

// Events returns the buffered domain events and clears the buffer.
func (c *Case) Events() []common.DomainEvent {
	out := c.events
	c.events = nil
	return out
}

//Personal.AI order the ending
