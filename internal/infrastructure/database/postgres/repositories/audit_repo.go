package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	domaincls "github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/HSCode-Intelligence/pkg/errors"
	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
)

// AuditRepository is the PostgreSQL implementation of the write-once
// classification audit trail. Entries are never updated or deleted.
type AuditRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewAuditRepository constructs a ready-to-use AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool, logger logging.Logger) *AuditRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AuditRepository{pool: pool, logger: logger}
}

// Append inserts one audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry domaincls.AuditEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO classification_audit (id, case_id, event, payload, recorded_at)
		VALUES ($1,$2,$3,$4,$5)`,
		entry.ID, entry.CaseID, entry.Event, entry.Payload, entry.RecordedAt,
	)
	if err != nil {
		r.logger.Error("audit append failed",
			logging.String("case_id", string(entry.CaseID)),
			logging.String("event", entry.Event), logging.Err(err))
		return appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to append audit entry")
	}
	return nil
}

// ListByCase returns a case's audit trail in recording order.
func (r *AuditRepository) ListByCase(ctx context.Context, caseID common.ID) ([]domaincls.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, event, payload, recorded_at
		FROM classification_audit
		WHERE case_id = $1
		ORDER BY recorded_at ASC`, caseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to list audit entries")
	}
	defer rows.Close()

	var out []domaincls.AuditEntry
	for rows.Next() {
		var e domaincls.AuditEntry
		if err := rows.Scan(&e.ID, &e.CaseID, &e.Event, &e.Payload, &e.RecordedAt); err != nil {
			return nil, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to scan audit entry")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

//Personal.AI order the ending
