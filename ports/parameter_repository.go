package ports

import (
	"context"

	"gotypo/domain/survey"
)

// ParameterRepository defines the interface for parameter definitions
type ParameterRepository interface {
	// Get retrieves a parameter by id; core.ErrParameterNotFound when absent
	Get(ctx context.Context, id string) (*survey.ParameterDef, error)

	// List returns all parameter definitions ordered by position
	List(ctx context.Context) ([]survey.ParameterDef, error)

	// ListActive returns only active definitions ordered by position
	ListActive(ctx context.Context) ([]survey.ParameterDef, error)

	// Upsert creates or updates a parameter definition
	Upsert(ctx context.Context, p *survey.ParameterDef) error
}

// QuestionRepository defines the interface for survey questions
type QuestionRepository interface {
	// Get retrieves a question by id; core.ErrQuestionNotFound when absent
	Get(ctx context.Context, id string) (*survey.Question, error)

	// ListByParameter returns all questions owned by one parameter
	ListByParameter(ctx context.Context, parameterID string) ([]survey.Question, error)

	// Upsert creates or updates a question. Moving an existing question
	// to a different parameter is rejected with core.ErrQuestionRelink.
	Upsert(ctx context.Context, q *survey.Question) error
}
