package excel

import (
	"context"
	"fmt"

	"gotypo/ports"
)

// Loader writes a parsed seed into the repositories in dependency
// order: languages and parameters first, then questions, then answers.
// Answer upserts flow through the repository, so an attached change
// notifier consolidates as the rows land.
type Loader struct {
	languages  ports.LanguageRepository
	parameters ports.ParameterRepository
	questions  ports.QuestionRepository
	answers    ports.AnswerRepository
}

// NewLoader creates a seed loader
func NewLoader(
	languages ports.LanguageRepository,
	parameters ports.ParameterRepository,
	questions ports.QuestionRepository,
	answers ports.AnswerRepository,
) *Loader {
	return &Loader{
		languages:  languages,
		parameters: parameters,
		questions:  questions,
		answers:    answers,
	}
}

// Load upserts every seed row. Existing rows with matching ids are
// overwritten, so re-running an import is safe.
func (l *Loader) Load(ctx context.Context, seed *Seed) error {
	for i := range seed.Languages {
		if err := l.languages.Upsert(ctx, &seed.Languages[i]); err != nil {
			return fmt.Errorf("seed language %s: %w", seed.Languages[i].ID, err)
		}
	}
	for i := range seed.Parameters {
		if err := l.parameters.Upsert(ctx, &seed.Parameters[i]); err != nil {
			return fmt.Errorf("seed parameter %s: %w", seed.Parameters[i].ID, err)
		}
	}
	for i := range seed.Questions {
		if err := l.questions.Upsert(ctx, &seed.Questions[i]); err != nil {
			return fmt.Errorf("seed question %s: %w", seed.Questions[i].ID, err)
		}
	}
	for i := range seed.Answers {
		a := &seed.Answers[i]
		if err := l.answers.Upsert(ctx, a); err != nil {
			return fmt.Errorf("seed answer %s/%s: %w", a.LanguageID, a.QuestionID, err)
		}
	}
	return nil
}
