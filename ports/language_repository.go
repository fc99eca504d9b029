package ports

import (
	"context"

	"gotypo/domain/survey"
)

// LanguageRepository defines the interface for language data operations
type LanguageRepository interface {
	// Get retrieves a language by id; core.ErrLanguageNotFound when absent
	Get(ctx context.Context, id string) (*survey.Language, error)

	// List returns all languages ordered by position
	List(ctx context.Context) ([]survey.Language, error)

	// Upsert creates or updates a language
	Upsert(ctx context.Context, lang *survey.Language) error

	// Delete removes a language and, by cascade, its answers and values
	Delete(ctx context.Context, id string) error
}
