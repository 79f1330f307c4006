package classification

import (
	"context"
	"time"

	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
)

// ListFilter narrows case listings.
type ListFilter struct {
	Status     CaseStatus
	From       time.Time
	To         time.Time
	Pagination common.Pagination
}

// CaseRepository defines the persistence contract for classification cases
// and their attached results.
type CaseRepository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id common.ID) (*Case, error)
	Update(ctx context.Context, c *Case) error
	List(ctx context.Context, filter ListFilter) ([]*Case, int64, error)

	// SaveResult persists the result attached to the case together with the
	// case status change, atomically.
	SaveResult(ctx context.Context, c *Case) error

	CountByStatus(ctx context.Context) (map[CaseStatus]int64, error)
}

// AuditEntry is one immutable audit-log record for a classification attempt.
type AuditEntry struct {
	ID         common.ID `json:"id"`
	CaseID     common.ID `json:"case_id"`
	Event      string    `json:"event"`
	Payload    []byte    `json:"payload"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AuditRepository appends and reads the classification audit trail. Entries
// are write-once.
type AuditRepository interface {
	Append(ctx context.Context, entry AuditEntry) error
	ListByCase(ctx context.Context, caseID common.ID) ([]AuditEntry, error)
}

//Personal.AI order the ending
