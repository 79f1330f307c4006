// Package repositories provides PostgreSQL-backed implementations of the
// domain repository interfaces for the HSCode-Intelligence platform.
package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domaincls "github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/HSCode-Intelligence/pkg/errors"
	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
)

// CaseRepository is the PostgreSQL implementation of the classification
// domain's CaseRepository. Every method accepts a context.Context for
// cancellation propagation and uses parameterised queries exclusively. The
// attached result is stored as a JSONB document next to the case row so that
// SaveResult is a single atomic update.
type CaseRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewCaseRepository constructs a ready-to-use CaseRepository.
func NewCaseRepository(pool *pgxpool.Pool, logger logging.Logger) *CaseRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CaseRepository{pool: pool, logger: logger}
}

// Create inserts a new open case.
func (r *CaseRepository) Create(ctx context.Context, c *domaincls.Case) error {
	attrs, err := json.Marshal(c.Attributes)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeInternal, "marshal case attributes")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO cases (
			id, title, description, attributes, status,
			created_at, updated_at, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.Title, c.Description, attrs, c.Status,
		c.CreatedAt, c.UpdatedAt, c.Version,
	)
	if err != nil {
		r.logger.Error("case insert failed",
			logging.String("case_id", string(c.ID)), logging.Err(err))
		return appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to insert case")
	}
	return nil
}

// GetByID loads one case with its attached result, if any.
func (r *CaseRepository) GetByID(ctx context.Context, id common.ID) (*domaincls.Case, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, description, attributes, status, result,
		       created_at, updated_at, version
		FROM cases WHERE id = $1`, id)

	c, err := scanCase(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, appErrors.New(appErrors.CodeCaseNotFound, "case not found")
		}
		r.logger.Error("case lookup failed",
			logging.String("case_id", string(id)), logging.Err(err))
		return nil, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to load case")
	}
	return c, nil
}

// Update persists mutable case fields using optimistic concurrency on the
// version column.
func (r *CaseRepository) Update(ctx context.Context, c *domaincls.Case) error {
	attrs, err := json.Marshal(c.Attributes)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeInternal, "marshal case attributes")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE cases
		SET title = $2, description = $3, attributes = $4, status = $5,
		    updated_at = $6, version = $7
		WHERE id = $1 AND version = $7 - 1`,
		c.ID, c.Title, c.Description, attrs, c.Status, c.UpdatedAt, c.Version,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to update case")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.Conflict("case was modified concurrently")
	}
	return nil
}

// List returns a page of cases matching the filter, newest first, together
// with the unpaginated total.
func (r *CaseRepository) List(ctx context.Context, filter domaincls.ListFilter) ([]*domaincls.Case, int64, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	n := 0

	if filter.Status != "" {
		n++
		where += " AND status = $" + itoa(n)
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		n++
		where += " AND created_at >= $" + itoa(n)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		n++
		where += " AND created_at <= $" + itoa(n)
		args = append(args, filter.To)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM cases "+where, args...).Scan(&total); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to count cases")
	}

	limit, offset := pageBounds(filter.Pagination)
	query := `
		SELECT id, title, description, attributes, status, result,
		       created_at, updated_at, version
		FROM cases ` + where + `
		ORDER BY created_at DESC
		LIMIT $` + itoa(n+1) + ` OFFSET $` + itoa(n+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to list cases")
	}
	defer rows.Close()

	var out []*domaincls.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to scan case")
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// SaveResult persists the attached result and the status change in one
// atomic update.
func (r *CaseRepository) SaveResult(ctx context.Context, c *domaincls.Case) error {
	if c.Result == nil {
		return appErrors.InvalidParam("case has no attached result")
	}
	result, err := json.Marshal(c.Result)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeInternal, "marshal classification result")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE cases
		SET result = $2, status = $3, updated_at = $4, version = $5
		WHERE id = $1`,
		c.ID, result, c.Status, c.UpdatedAt, c.Version,
	)
	if err != nil {
		r.logger.Error("result persistence failed",
			logging.String("case_id", string(c.ID)), logging.Err(err))
		return appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to save result")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.CodeCaseNotFound, "case not found")
	}
	return nil
}

// CountByStatus aggregates the case backlog per lifecycle state.
func (r *CaseRepository) CountByStatus(ctx context.Context) (map[domaincls.CaseStatus]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, count(*) FROM cases GROUP BY status`)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to count cases by status")
	}
	defer rows.Close()

	out := map[domaincls.CaseStatus]int64{}
	for rows.Next() {
		var status domaincls.CaseStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, appErrors.Wrap(err, appErrors.CodeDBQueryError, "failed to scan status count")
		}
		out[status] = count
	}
	return out, rows.Err()
}

// scanCase maps one row to the aggregate, rehydrating the JSONB columns.
func scanCase(row pgx.Row) (*domaincls.Case, error) {
	var (
		c         domaincls.Case
		attrsJSON []byte
		resJSON   []byte
	)
	err := row.Scan(&c.ID, &c.Title, &c.Description, &attrsJSON, &c.Status,
		&resJSON, &c.CreatedAt, &c.UpdatedAt, &c.Version)
	if err != nil {
		return nil, err
	}
	if len(attrsJSON) > 0 {
		if err := json.Unmarshal(attrsJSON, &c.Attributes); err != nil {
			return nil, err
		}
	}
	if len(resJSON) > 0 {
		var result domaincls.Result
		if err := json.Unmarshal(resJSON, &result); err != nil {
			return nil, err
		}
		c.Result = &result
	}
	return &c, nil
}

//Personal.AI order the ending
