package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gotypo/domain/core"
	"gotypo/domain/survey"
	"gotypo/ports"
)

// ValueRepositoryImpl implements ValueRepository for PostgreSQL. The
// per-language exclusive scope is a transaction holding a row lock on
// the language, so concurrent consolidations and evaluation runs for
// the same language serialize at the database.
type ValueRepositoryImpl struct {
	db *sqlx.DB
}

// NewValueRepository creates a new PostgreSQL value repository
func NewValueRepository(db *sqlx.DB) ports.ValueRepository {
	return &ValueRepositoryImpl{db: db}
}

// RunExclusive locks the language row FOR UPDATE and runs fn inside the
// transaction. The lock also confirms existence: no row means the
// language was deleted, and its values with it.
func (r *ValueRepositoryImpl) RunExclusive(ctx context.Context, languageID string, fn func(ctx context.Context, tx ports.ValueTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin value tx: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.GetContext(ctx, &id, `SELECT id FROM languages WHERE id = $1 FOR UPDATE`, languageID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrLanguageNotFound
	}
	if err != nil {
		return fmt.Errorf("lock language %s: %w", languageID, err)
	}

	if err := fn(ctx, &valueTx{tx: tx, languageID: languageID}); err != nil {
		return err
	}
	return tx.Commit()
}

// RawValues reads the raw rows without locking
func (r *ValueRepositoryImpl) RawValues(ctx context.Context, languageID string) (map[string]survey.LanguageParameter, error) {
	return selectRawValues(ctx, r.db, languageID)
}

// Evals reads the evaluated rows without locking
func (r *ValueRepositoryImpl) Evals(ctx context.Context, languageID string) (map[string]survey.LanguageParameterEval, error) {
	rows := []survey.LanguageParameterEval{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT language_id, parameter_id, value_eval, warning_eval
		FROM language_parameter_evals
		WHERE language_id = $1
	`, languageID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]survey.LanguageParameterEval, len(rows))
	for _, e := range rows {
		out[e.ParameterID] = e
	}
	return out, nil
}

func selectRawValues(ctx context.Context, q sqlx.QueryerContext, languageID string) (map[string]survey.LanguageParameter, error) {
	rows := []survey.LanguageParameter{}
	err := sqlx.SelectContext(ctx, q, &rows, `
		SELECT language_id, parameter_id, value_orig, warning_orig
		FROM language_parameters
		WHERE language_id = $1
	`, languageID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]survey.LanguageParameter, len(rows))
	for _, lp := range rows {
		out[lp.ParameterID] = lp
	}
	return out, nil
}

// valueTx runs against the open row-locked transaction.
type valueTx struct {
	tx         *sqlx.Tx
	languageID string
}

func (t *valueTx) RawValues(ctx context.Context) (map[string]survey.LanguageParameter, error) {
	return selectRawValues(ctx, t.tx, t.languageID)
}

func (t *valueTx) UpsertRaw(ctx context.Context, lp survey.LanguageParameter) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO language_parameters (language_id, parameter_id, value_orig, warning_orig)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (language_id, parameter_id) DO UPDATE
		SET value_orig = EXCLUDED.value_orig,
		    warning_orig = EXCLUDED.warning_orig
	`, lp.LanguageID, lp.ParameterID, lp.Raw, lp.RawWarning)
	return err
}

func (t *valueTx) ReplaceEvals(ctx context.Context, evals []survey.LanguageParameterEval) error {
	_, err := t.tx.ExecContext(ctx, `
		DELETE FROM language_parameter_evals WHERE language_id = $1
	`, t.languageID)
	if err != nil {
		return err
	}
	for _, e := range evals {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO language_parameter_evals (language_id, parameter_id, value_eval, warning_eval)
			VALUES ($1, $2, $3, $4)
		`, e.LanguageID, e.ParameterID, e.Eval, e.EvalWarning)
		if err != nil {
			return err
		}
	}
	return nil
}
