// Package repository provides transactional, partial-update access to
// the resumes table, with whitelist validation and deadlock retry.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ats-ingest/resumeforge/pkg/models"
)

const (
	maxUpdateAttempts  = 3
	deadlockBaseBackoff = 100 * time.Millisecond
)

// deadlockSQLStates are the Postgres SQLSTATE codes that indicate a
// transient transactional conflict worth retrying: deadlock_detected and
// serialization_failure.
var deadlockSQLStates = map[string]bool{
	"40P01": true,
	"40001": true,
}

// notNullWhitelist holds columns that must never be set to nil.
var notNullWhitelist = map[string]bool{
	"filename": true,
}

// nullableWhitelist holds columns that may be set to nil alongside their
// regular value.
var nullableWhitelist = map[string]bool{
	"raw_text":        true,
	"master_category": true,
	"category":        true,
	"candidate_name":  true,
	"designation":     true,
	"job_role":        true,
	"experience":      true,
	"domain":          true,
	"mobile":          true,
	"email":           true,
	"education":       true,
	"location":        true,
	"skillset":        true,
	"status":          true,
	"indexed":         true,
}

// Repository provides partial-update and read access to the resumes
// table.
type Repository struct {
	db *sql.DB
}

// New constructs a Repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Update applies a partial set of column updates to one resume row.
// Every call is validated against the fixed whitelist and enforced
// NOT-NULL rule before any SQL is issued, then run in its own short
// transaction with deadlock retry.
func (r *Repository) Update(ctx context.Context, resumeID int64, fields map[string]any) error {
	if err := validateFields(fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	var lastErr error
	backoff := deadlockBaseBackoff
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.updateOnce(ctx, resumeID, fields)
		if err == nil {
			return nil
		}

		sqlState, isDeadlock := deadlockSQLState(err)
		if !isDeadlock {
			return err
		}
		lastErr = err

		if attempt == maxUpdateAttempts {
			return &DeadlockError{SQLState: sqlState, Attempts: attempt, Err: err}
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}

	return lastErr
}

func validateFields(fields map[string]any) error {
	for col, val := range fields {
		if !notNullWhitelist[col] && !nullableWhitelist[col] {
			return fmt.Errorf("%w: %q", ErrColumnNotWhitelisted, col)
		}
		if notNullWhitelist[col] && val == nil {
			return fmt.Errorf("%w: %q", ErrNotNullViolation, col)
		}
	}
	return nil
}

func (r *Repository) updateOnce(ctx context.Context, resumeID int64, fields map[string]any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query, args := buildUpdateQuery(resumeID, fields)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrResumeNotFound
	}

	return tx.Commit()
}

func buildUpdateQuery(resumeID int64, fields map[string]any) (string, []any) {
	query := "UPDATE resumes SET "
	args := make([]any, 0, len(fields)+1)
	i := 1
	first := true
	for col, val := range fields {
		if !first {
			query += ", "
		}
		first = false
		query += fmt.Sprintf("%s = $%d", col, i)
		args = append(args, val)
		i++
	}
	query += fmt.Sprintf(", updated_at = now() WHERE id = $%d", i)
	args = append(args, resumeID)
	return query, args
}

func deadlockSQLState(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && deadlockSQLStates[pgErr.Code] {
		return pgErr.Code, true
	}
	return "", false
}

// Get returns a shallow Resume struct for resumeID.
func (r *Repository) Get(ctx context.Context, resumeID int64) (*models.Resume, error) {
	const query = `
		SELECT id, filename, raw_text, master_category, category, candidate_name,
		       designation, job_role, experience, domain, mobile, email, education,
		       location, skillset, status, indexed, created_at, updated_at
		FROM resumes WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, resumeID)

	var resume models.Resume
	var masterCategory *string
	err := row.Scan(
		&resume.ID, &resume.Filename, &resume.RawText, &masterCategory, &resume.Category,
		&resume.CandidateName, &resume.Designation, &resume.JobRole, &resume.Experience,
		&resume.Domain, &resume.Mobile, &resume.Email, &resume.Education, &resume.Location,
		&resume.Skillset, &resume.Status, &resume.Indexed, &resume.CreatedAt, &resume.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resume %d: %w", resumeID, err)
	}

	if masterCategory != nil {
		mc := models.MasterCategory(*masterCategory)
		resume.MasterCategory = &mc
	}

	return &resume, nil
}

// GetAsMap returns a plain map representation of the resume row. This
// form is mandatory inside background tasks to avoid holding a stale
// struct reference across asynchronous boundaries.
func (r *Repository) GetAsMap(ctx context.Context, resumeID int64) (map[string]any, error) {
	resume, err := r.Get(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	m := map[string]any{
		"id":              resume.ID,
		"filename":        resume.Filename,
		"raw_text":        resume.RawText,
		"category":        resume.Category,
		"candidate_name":  resume.CandidateName,
		"designation":     resume.Designation,
		"job_role":        resume.JobRole,
		"experience":      resume.Experience,
		"domain":          resume.Domain,
		"mobile":          resume.Mobile,
		"email":           resume.Email,
		"education":       resume.Education,
		"location":        resume.Location,
		"skillset":        resume.Skillset,
		"status":          resume.Status,
		"indexed":         resume.Indexed,
		"created_at":      resume.CreatedAt,
		"updated_at":      resume.UpdatedAt,
	}
	if resume.MasterCategory != nil {
		m["master_category"] = string(*resume.MasterCategory)
	} else {
		m["master_category"] = nil
	}

	return m, nil
}

// ListPendingForIndex returns resumes ready for the Vector Indexer: rows
// with non-null text and master-category, filtered to resumeIDs when
// non-empty, and to indexed=false unless force requests a full reindex.
// Results are ordered by id for deterministic batching and capped at
// limit (0 means no cap).
func (r *Repository) ListPendingForIndex(ctx context.Context, limit int, resumeIDs []int64, force bool) ([]*models.Resume, error) {
	query := `
		SELECT id, filename, raw_text, master_category, category, candidate_name,
		       designation, job_role, experience, domain, mobile, email, education,
		       location, skillset, status, indexed, created_at, updated_at
		FROM resumes
		WHERE raw_text IS NOT NULL AND master_category IS NOT NULL`
	args := []any{}
	argN := 1

	if !force {
		query += " AND indexed = false"
	}
	if len(resumeIDs) > 0 {
		query += fmt.Sprintf(" AND id = ANY($%d)", argN)
		args = append(args, resumeIDs)
		argN++
	}
	query += " ORDER BY id"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argN)
		args = append(args, limit)
		argN++
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing resumes pending indexing: %w", err)
	}
	defer rows.Close()

	var resumes []*models.Resume
	for rows.Next() {
		var resume models.Resume
		var masterCategory *string
		if err := rows.Scan(
			&resume.ID, &resume.Filename, &resume.RawText, &masterCategory, &resume.Category,
			&resume.CandidateName, &resume.Designation, &resume.JobRole, &resume.Experience,
			&resume.Domain, &resume.Mobile, &resume.Email, &resume.Education, &resume.Location,
			&resume.Skillset, &resume.Status, &resume.Indexed, &resume.CreatedAt, &resume.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning resume pending indexing: %w", err)
		}
		if masterCategory != nil {
			mc := models.MasterCategory(*masterCategory)
			resume.MasterCategory = &mc
		}
		resumes = append(resumes, &resume)
	}
	return resumes, rows.Err()
}

// Insert creates a new pending resume row and returns its ID.
func (r *Repository) Insert(ctx context.Context, filename string) (int64, error) {
	const query = `INSERT INTO resumes (filename, status) VALUES ($1, $2) RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, filename, models.StatusPending).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert resume: %w", err)
	}
	return id, nil
}
