package ports

import (
	"context"

	"gotypo/domain/survey"
)

// ValueTx is the per-language exclusive scope in which raw and evaluated
// values are read and written. Implementations guarantee that everything
// done inside one RunExclusive call is atomic: a concurrent reader never
// observes a partially-updated value set for the language.
type ValueTx interface {
	// RawValues returns the language's raw value rows keyed by parameter id
	RawValues(ctx context.Context) (map[string]survey.LanguageParameter, error)

	// UpsertRaw writes one raw value row
	UpsertRaw(ctx context.Context, lp survey.LanguageParameter) error

	// ReplaceEvals atomically replaces the language's evaluated rows
	ReplaceEvals(ctx context.Context, evals []survey.LanguageParameterEval) error
}

// ValueRepository defines the interface for per-language parameter values
type ValueRepository interface {
	// RunExclusive runs fn while holding the language's exclusive lock
	// (row lock or equivalent). Concurrent calls for the same language
	// serialize; different languages proceed independently. Returns
	// core.ErrLanguageNotFound when the language no longer exists.
	RunExclusive(ctx context.Context, languageID string, fn func(ctx context.Context, tx ValueTx) error) error

	// RawValues reads the raw rows outside any lock (diagnostics)
	RawValues(ctx context.Context, languageID string) (map[string]survey.LanguageParameter, error)

	// Evals reads the evaluated rows outside any lock
	Evals(ctx context.Context, languageID string) (map[string]survey.LanguageParameterEval, error)
}
