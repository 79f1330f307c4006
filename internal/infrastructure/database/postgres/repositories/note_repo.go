package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

// NoteRepository is the PostgreSQL implementation of the legal-note store.
// It also satisfies the engine's NotesStore contract, so the textual
// interpretation stage can read straight from it.
type NoteRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewNoteRepository constructs a ready-to-use NoteRepository.
func NewNoteRepository(pool *pgxpool.Pool, logger logging.Logger) *NoteRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NoteRepository{pool: pool, logger: logger}
}

// All returns every legal note.
func (r *NoteRepository) All(ctx context.Context) ([]catalog.LegalNote, error) {
	return r.query(ctx, `
		SELECT id, scope, scope_code, note_number, text, legal_source_id
		FROM legal_notes
		ORDER BY scope, scope_code, note_number`)
}

// ByScope returns the notes bound to one nomenclature level.
func (r *NoteRepository) ByScope(ctx context.Context, scope catalog.NoteScope) ([]catalog.LegalNote, error) {
	if !scope.IsValid() {
		return nil, appErrors.InvalidParam("unknown note scope")
	}
	return r.query(ctx, `
		SELECT id, scope, scope_code, note_number, text, legal_source_id
		FROM legal_notes
		WHERE scope = $1
		ORDER BY scope_code, note_number`, scope)
}

// Notes satisfies the engine's NotesStore contract.
func (r *NoteRepository) Notes(ctx context.Context) ([]catalog.LegalNote, error) {
	return r.All(ctx)
}

func (r *NoteRepository) query(ctx context.Context, sql string, args ...interface{}) ([]catalog.LegalNote, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error("legal note query failed", logging.Err(err))
		return nil, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to query legal notes")
	}
	defer rows.Close()

	var out []catalog.LegalNote
	for rows.Next() {
		var n catalog.LegalNote
		if err := rows.Scan(&n.ID, &n.Scope, &n.ScopeCode, &n.Number, &n.Text, &n.LegalSourceID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to scan legal note")
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

//Personal.AI order the ending
