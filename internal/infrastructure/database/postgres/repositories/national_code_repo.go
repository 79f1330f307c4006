package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

// NationalCodeRepository is the PostgreSQL implementation of the 10-digit
// national extension store.
type NationalCodeRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewNationalCodeRepository constructs a ready-to-use NationalCodeRepository.
func NewNationalCodeRepository(pool *pgxpool.Pool, logger logging.Logger) *NationalCodeRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NationalCodeRepository{pool: pool, logger: logger}
}

// ByHS6 returns the national extensions under one HS6 prefix, lowest code
// first so refinement fallbacks stay deterministic.
func (r *NationalCodeRepository) ByHS6(ctx context.Context, hs6 string) ([]catalog.NationalCode, error) {
	if len(hs6) != 6 {
		return nil, appErrors.InvalidParam("hs6 prefix must be 6 digits")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT hs6, code, title, attr_keywords
		FROM national_codes
		WHERE hs6 = $1
		ORDER BY code ASC`, hs6)
	if err != nil {
		r.logger.Error("national code query failed",
			logging.String("hs6", hs6), logging.Err(err))
		return nil, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to query national codes")
	}
	defer rows.Close()

	var out []catalog.NationalCode
	for rows.Next() {
		var n catalog.NationalCode
		if err := rows.Scan(&n.HS6, &n.Code, &n.Title, &n.AttrKeywords); err != nil {
			return nil, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to scan national code")
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Upsert inserts or refreshes national code rows, returning how many were
// written. Invalid rows abort before any write.
func (r *NationalCodeRepository) Upsert(ctx context.Context, codes []catalog.NationalCode) (int, error) {
	for _, n := range codes {
		if err := n.Validate(); err != nil {
			return 0, err
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.CodeDBConnectionError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	written := 0
	for _, n := range codes {
		_, err := tx.Exec(ctx, `
			INSERT INTO national_codes (hs6, code, title, attr_keywords)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (code) DO UPDATE
			SET title = EXCLUDED.title, attr_keywords = EXCLUDED.attr_keywords`,
			n.HS6, n.Code, n.Title, n.AttrKeywords,
		)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to upsert national code")
		}
		written++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, appErrors.Wrap(err, appErrors.CodeDBConnectionError, "failed to commit transaction")
	}
	return written, nil
}

//Personal.AI order the ending
