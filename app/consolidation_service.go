package app

import (
	"context"
	"errors"
	"fmt"

	"gotypo/domain/core"
	"gotypo/domain/survey"
	"gotypo/internal"
	"gotypo/ports"
)

// ConsolidationService derives raw parameter values from question
// answers and persists them. It is also the answer-change hook: storage
// layers call AnswerChanged after committing an answer write, replacing
// implicit ORM-style save signals with an explicit notification.
type ConsolidationService struct {
	parameters ports.ParameterRepository
	questions  ports.QuestionRepository
	answers    ports.AnswerRepository
	values     ports.ValueRepository
	logger     *internal.Logger
}

var _ ports.AnswerChangeNotifier = (*ConsolidationService)(nil)

// NewConsolidationService creates a consolidation service
func NewConsolidationService(
	parameters ports.ParameterRepository,
	questions ports.QuestionRepository,
	answers ports.AnswerRepository,
	values ports.ValueRepository,
	logger *internal.Logger,
) *ConsolidationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ConsolidationService{
		parameters: parameters,
		questions:  questions,
		answers:    answers,
		values:     values,
		logger:     logger,
	}
}

// ConsolidateParameter recomputes one (language, parameter) raw value
// from the current answers and upserts it. An unknown parameter is a
// hard error; a language deleted mid-flight makes the recomputation a
// quiet no-op, since its values are gone with it.
func (s *ConsolidationService) ConsolidateParameter(ctx context.Context, languageID, parameterID string) (*survey.RawResult, error) {
	param, err := s.parameters.Get(ctx, parameterID)
	if err != nil {
		return nil, fmt.Errorf("consolidate %s/%s: %w", languageID, parameterID, err)
	}

	questions, err := s.questions.ListByParameter(ctx, param.ID)
	if err != nil {
		return nil, fmt.Errorf("consolidate %s/%s: list questions: %w", languageID, parameterID, err)
	}
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	answers, err := s.answers.ListByLanguageQuestions(ctx, languageID, ids)
	if err != nil {
		return nil, fmt.Errorf("consolidate %s/%s: list answers: %w", languageID, parameterID, err)
	}

	result := survey.Consolidate(questions, answers)

	err = s.values.RunExclusive(ctx, languageID, func(ctx context.Context, tx ports.ValueTx) error {
		return tx.UpsertRaw(ctx, survey.LanguageParameter{
			LanguageID:  languageID,
			ParameterID: param.ID,
			Raw:         result.Value,
			RawWarning:  result.Warning,
		})
	})
	if errors.Is(err, core.ErrLanguageNotFound) {
		s.logger.Debug("consolidation for %s/%s skipped: language gone", languageID, parameterID)
		return &result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consolidate %s/%s: persist: %w", languageID, parameterID, err)
	}

	s.logger.Debug("consolidated %s/%s -> %q warning=%v", languageID, parameterID, result.Value, result.Warning)
	return &result, nil
}

// ConsolidateLanguage recomputes every active parameter's raw value for
// one language, typically after a bulk answer import.
func (s *ConsolidationService) ConsolidateLanguage(ctx context.Context, languageID string) error {
	params, err := s.parameters.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("consolidate language %s: %w", languageID, err)
	}
	for _, p := range params {
		if _, err := s.ConsolidateParameter(ctx, languageID, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// AnswerChanged reacts to an answer create, update or delete by
// re-consolidating the owning parameter. A question that no longer
// exists leaves nothing to consolidate.
func (s *ConsolidationService) AnswerChanged(ctx context.Context, languageID, questionID string) error {
	q, err := s.questions.Get(ctx, questionID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("answer change %s/%s: %w", languageID, questionID, err)
	}
	_, err = s.ConsolidateParameter(ctx, languageID, q.ParameterID)
	return err
}
