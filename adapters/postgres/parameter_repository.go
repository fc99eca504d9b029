package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"gotypo/domain/core"
	"gotypo/domain/survey"
	"gotypo/ports"
)

// ParameterRepositoryImpl implements ParameterRepository for PostgreSQL
type ParameterRepositoryImpl struct {
	db *sqlx.DB
}

// NewParameterRepository creates a new PostgreSQL parameter repository
func NewParameterRepository(db *sqlx.DB) ports.ParameterRepository {
	return &ParameterRepositoryImpl{db: db}
}

// Get retrieves a parameter definition by id
func (r *ParameterRepositoryImpl) Get(ctx context.Context, id string) (*survey.ParameterDef, error) {
	var p survey.ParameterDef
	err := r.db.GetContext(ctx, &p, `
		SELECT id, name, short_description, implicational_condition, is_active, position
		FROM parameters
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrParameterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all parameter definitions in position order
func (r *ParameterRepositoryImpl) List(ctx context.Context) ([]survey.ParameterDef, error) {
	params := []survey.ParameterDef{}
	err := r.db.SelectContext(ctx, &params, `
		SELECT id, name, short_description, implicational_condition, is_active, position
		FROM parameters
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	return params, nil
}

// ListActive returns the active parameter scope in position order
func (r *ParameterRepositoryImpl) ListActive(ctx context.Context) ([]survey.ParameterDef, error) {
	params := []survey.ParameterDef{}
	err := r.db.SelectContext(ctx, &params, `
		SELECT id, name, short_description, implicational_condition, is_active, position
		FROM parameters
		WHERE is_active
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	return params, nil
}

// Upsert creates or updates a parameter definition
func (r *ParameterRepositoryImpl) Upsert(ctx context.Context, p *survey.ParameterDef) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO parameters (id, name, short_description, implicational_condition, is_active, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    short_description = EXCLUDED.short_description,
		    implicational_condition = EXCLUDED.implicational_condition,
		    is_active = EXCLUDED.is_active,
		    position = EXCLUDED.position
	`, p.ID, p.Name, p.ShortDescription, p.Condition, p.Active, p.Position)
	return err
}

// QuestionRepositoryImpl implements QuestionRepository for PostgreSQL
type QuestionRepositoryImpl struct {
	db *sqlx.DB
}

// NewQuestionRepository creates a new PostgreSQL question repository
func NewQuestionRepository(db *sqlx.DB) ports.QuestionRepository {
	return &QuestionRepositoryImpl{db: db}
}

// Get retrieves a question by id
func (r *QuestionRepositoryImpl) Get(ctx context.Context, id string) (*survey.Question, error) {
	var q survey.Question
	err := r.db.GetContext(ctx, &q, `
		SELECT id, parameter_id, text, instruction, is_stop_question
		FROM questions
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListByParameter returns a parameter's questions
func (r *QuestionRepositoryImpl) ListByParameter(ctx context.Context, parameterID string) ([]survey.Question, error) {
	questions := []survey.Question{}
	err := r.db.SelectContext(ctx, &questions, `
		SELECT id, parameter_id, text, instruction, is_stop_question
		FROM questions
		WHERE parameter_id = $1
		ORDER BY id
	`, parameterID)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Upsert creates or updates a question. A question stays with the
// parameter it was created under.
func (r *QuestionRepositoryImpl) Upsert(ctx context.Context, q *survey.Question) error {
	var existing string
	err := r.db.GetContext(ctx, &existing, `SELECT parameter_id FROM questions WHERE id = $1`, q.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err == nil && existing != q.ParameterID {
		return core.ErrQuestionRelink
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO questions (id, parameter_id, text, instruction, is_stop_question)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET text = EXCLUDED.text,
		    instruction = EXCLUDED.instruction,
		    is_stop_question = EXCLUDED.is_stop_question
	`, q.ID, q.ParameterID, q.Text, q.Instruction, q.StopQuestion)
	return err
}
