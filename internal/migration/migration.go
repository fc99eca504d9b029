package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gotypo/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createLanguagesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create languages table")
	}
	if err := r.createParametersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create parameters table")
	}
	if err := r.createQuestionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create questions table")
	}
	if err := r.createAnswersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create answers table")
	}
	if err := r.createValueTables(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create value tables")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createLanguagesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS languages (
			id VARCHAR(16) PRIMARY KEY,
			name_full VARCHAR(255) NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			grp VARCHAR(100) NOT NULL DEFAULT '',
			isocode VARCHAR(16) NOT NULL DEFAULT '',
			glottocode VARCHAR(16) NOT NULL DEFAULT ''
		)
	`)
	return err
}

func (r *MigrationRunner) createParametersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS parameters (
			id VARCHAR(32) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			short_description TEXT NOT NULL DEFAULT '',
			implicational_condition TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT true,
			position INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

func (r *MigrationRunner) createQuestionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS questions (
			id VARCHAR(64) PRIMARY KEY,
			parameter_id VARCHAR(32) NOT NULL REFERENCES parameters(id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			instruction TEXT NOT NULL DEFAULT '',
			is_stop_question BOOLEAN NOT NULL DEFAULT false
		)
	`)
	return err
}

func (r *MigrationRunner) createAnswersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS answers (
			language_id VARCHAR(16) NOT NULL REFERENCES languages(id) ON DELETE CASCADE,
			question_id VARCHAR(64) NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			response_text VARCHAR(8) NOT NULL
				CHECK (response_text IN ('yes', 'no')),
			status VARCHAR(32) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'waiting', 'waiting_for_approval', 'approved', 'rejected')),
			modifiable BOOLEAN NOT NULL DEFAULT true,
			comments TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (language_id, question_id)
		)
	`)
	return err
}

func (r *MigrationRunner) createValueTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS language_parameters (
			language_id VARCHAR(16) NOT NULL REFERENCES languages(id) ON DELETE CASCADE,
			parameter_id VARCHAR(32) NOT NULL REFERENCES parameters(id) ON DELETE CASCADE,
			value_orig VARCHAR(1) NOT NULL DEFAULT ''
				CHECK (value_orig IN ('+', '-', '0', '')),
			warning_orig BOOLEAN NOT NULL DEFAULT false,
			PRIMARY KEY (language_id, parameter_id)
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS language_parameter_evals (
			language_id VARCHAR(16) NOT NULL REFERENCES languages(id) ON DELETE CASCADE,
			parameter_id VARCHAR(32) NOT NULL REFERENCES parameters(id) ON DELETE CASCADE,
			value_eval VARCHAR(1) NOT NULL DEFAULT ''
				CHECK (value_eval IN ('+', '-', '0', '')),
			warning_eval BOOLEAN NOT NULL DEFAULT false,
			PRIMARY KEY (language_id, parameter_id)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_questions_parameter ON questions(parameter_id)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_language ON answers(language_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parameters_active ON parameters(is_active) WHERE is_active`,
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
