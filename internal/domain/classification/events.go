package classification

import (
	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// Audit event names, stable across releases because stored entries are
// write-once.
const (
	EventCaseCreated     = "case_created"
	EventCaseClassified  = "case_classified"
	EventReviewRequested = "review_requested"
)

type CaseCreatedEvent struct {
	common.BaseEvent
	Title   string `json:"title"`
	Version int    `json:"version"`
}

func NewCaseCreatedEvent(c *Case) *CaseCreatedEvent {
	return &CaseCreatedEvent{
		BaseEvent: common.NewBaseEvent(string(c.ID)),
		Title:     c.Title,
		Version:   c.Version,
	}
}

// Name identifies the event type in the audit trail.
func (e *CaseCreatedEvent) Name() string { return EventCaseCreated }

type CaseClassifiedEvent struct {
	common.BaseEvent
	NationalCode   ctypes.HSCode `json:"national_code"`
	Confidence     float64       `json:"confidence"`
	Method         ctypes.Method `json:"method"`
	RequiresReview bool          `json:"requires_review"`
	Version        int           `json:"version"`
}

func NewCaseClassifiedEvent(c *Case, r *Result) *CaseClassifiedEvent {
	return &CaseClassifiedEvent{
		BaseEvent:      common.NewBaseEvent(string(c.ID)),
		NationalCode:   r.NationalCode,
		Confidence:     r.Confidence,
		Method:         r.Method,
		RequiresReview: r.RequiresReview,
		Version:        c.Version,
	}
}

func (e *CaseClassifiedEvent) Name() string { return EventCaseClassified }

type ReviewRequestedEvent struct {
	common.BaseEvent
	NationalCode ctypes.HSCode         `json:"national_code"`
	Reasons      []ctypes.ReviewReason `json:"reasons"`
	Version      int                   `json:"version"`
}

func NewReviewRequestedEvent(c *Case, r *Result) *ReviewRequestedEvent {
	return &ReviewRequestedEvent{
		BaseEvent:    common.NewBaseEvent(string(c.ID)),
		NationalCode: r.NationalCode,
		Reasons:      r.Validation.ReviewReasons,
		Version:      c.Version,
	}
}

func (e *ReviewRequestedEvent) Name() string { return EventReviewRequested }

//Personal.AI order the ending
