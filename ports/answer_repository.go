package ports

import (
	"context"

	"gotypo/domain/survey"
)

// AnswerRepository defines the interface for survey answers
type AnswerRepository interface {
	// ListByLanguage returns all of a language's answers
	ListByLanguage(ctx context.Context, languageID string) ([]survey.Answer, error)

	// ListByLanguageQuestions returns the language's answers restricted
	// to the given question ids
	ListByLanguageQuestions(ctx context.Context, languageID string, questionIDs []string) ([]survey.Answer, error)

	// Upsert creates or updates the answer for its (language, question) pair
	Upsert(ctx context.Context, a *survey.Answer) error

	// Delete removes the answer for a (language, question) pair
	Delete(ctx context.Context, languageID, questionID string) error
}

// AnswerChangeNotifier is the explicit after-commit hook the persistence
// layer invokes whenever an answer is created, updated or deleted, so
// raw values can be re-consolidated. It replaces implicit save/delete
// signals: the trigger is a plain interface the core exposes and any
// storage technology can call.
type AnswerChangeNotifier interface {
	AnswerChanged(ctx context.Context, languageID, questionID string) error
}
