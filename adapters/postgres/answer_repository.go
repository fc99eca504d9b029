package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gotypo/domain/survey"
	"gotypo/ports"
)

// AnswerRepositoryImpl implements AnswerRepository for PostgreSQL. When
// a change notifier is attached, every committed write triggers
// re-consolidation of the owning parameter.
type AnswerRepositoryImpl struct {
	db       *sqlx.DB
	notifier ports.AnswerChangeNotifier
}

// NewAnswerRepository creates a new PostgreSQL answer repository.
// notifier may be nil when consolidation is driven explicitly.
func NewAnswerRepository(db *sqlx.DB, notifier ports.AnswerChangeNotifier) ports.AnswerRepository {
	return &AnswerRepositoryImpl{db: db, notifier: notifier}
}

// ListByLanguage returns all of a language's answers
func (r *AnswerRepositoryImpl) ListByLanguage(ctx context.Context, languageID string) ([]survey.Answer, error) {
	answers := []survey.Answer{}
	err := r.db.SelectContext(ctx, &answers, `
		SELECT language_id, question_id, response_text, status, modifiable, comments
		FROM answers
		WHERE language_id = $1
		ORDER BY question_id
	`, languageID)
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// ListByLanguageQuestions returns the language's answers restricted to
// the given question ids
func (r *AnswerRepositoryImpl) ListByLanguageQuestions(ctx context.Context, languageID string, questionIDs []string) ([]survey.Answer, error) {
	answers := []survey.Answer{}
	if len(questionIDs) == 0 {
		return answers, nil
	}
	query, args, err := sqlx.In(`
		SELECT language_id, question_id, response_text, status, modifiable, comments
		FROM answers
		WHERE language_id = ? AND question_id IN (?)
		ORDER BY question_id
	`, languageID, questionIDs)
	if err != nil {
		return nil, err
	}
	err = r.db.SelectContext(ctx, &answers, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// Upsert creates or updates the answer for its (language, question) pair
func (r *AnswerRepositoryImpl) Upsert(ctx context.Context, a *survey.Answer) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO answers (language_id, question_id, response_text, status, modifiable, comments)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (language_id, question_id) DO UPDATE
		SET response_text = EXCLUDED.response_text,
		    status = EXCLUDED.status,
		    modifiable = EXCLUDED.modifiable,
		    comments = EXCLUDED.comments
	`, a.LanguageID, a.QuestionID, a.Response, a.Status, a.Modifiable, a.Comments)
	if err != nil {
		return err
	}
	return r.notify(ctx, a.LanguageID, a.QuestionID)
}

// Delete removes the answer for a (language, question) pair
func (r *AnswerRepositoryImpl) Delete(ctx context.Context, languageID, questionID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM answers WHERE language_id = $1 AND question_id = $2
	`, languageID, questionID)
	if err != nil {
		return err
	}
	return r.notify(ctx, languageID, questionID)
}

func (r *AnswerRepositoryImpl) notify(ctx context.Context, languageID, questionID string) error {
	if r.notifier == nil {
		return nil
	}
	return r.notifier.AnswerChanged(ctx, languageID, questionID)
}
