package database

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateGINIndexes creates full-text search GIN indexes that golang-migrate
// SQL files intentionally leave out, since they depend on runtime text
// configuration rather than schema structure.
func CreateGINIndexes(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_resumes_raw_text_gin
		ON resumes USING gin(to_tsvector('english', COALESCE(raw_text, '')))`)
	if err != nil {
		return fmt.Errorf("failed to create raw_text GIN index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_resumes_skillset_gin
		ON resumes USING gin(to_tsvector('english', COALESCE(skillset, '')))`)
	if err != nil {
		return fmt.Errorf("failed to create skillset GIN index: %w", err)
	}

	return nil
}
