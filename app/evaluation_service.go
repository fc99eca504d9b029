package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gotypo/domain/core"
	"gotypo/domain/dag"
	"gotypo/domain/survey"
	"gotypo/internal"
	"gotypo/ports"
)

// EvaluationService runs the implication pass: it builds the dependency
// graph over the active parameter scope, takes the language's raw value
// snapshot under the per-language lock, evaluates every condition in
// topological order, and atomically replaces the evaluated rows.
type EvaluationService struct {
	parameters ports.ParameterRepository
	languages  ports.LanguageRepository
	values     ports.ValueRepository
	logger     *internal.Logger
}

// NewEvaluationService creates an evaluation service
func NewEvaluationService(
	parameters ports.ParameterRepository,
	languages ports.LanguageRepository,
	values ports.ValueRepository,
	logger *internal.Logger,
) *EvaluationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EvaluationService{
		parameters: parameters,
		languages:  languages,
		values:     values,
		logger:     logger,
	}
}

// RunDAG evaluates all implication conditions for one language and
// persists the outcome. The raw snapshot read, the evaluation and the
// eval-row replacement happen inside one exclusive scope, so concurrent
// runs for the same language serialize and readers never see a partial
// result set.
func (s *EvaluationService) RunDAG(ctx context.Context, languageID string) (*dag.Report, error) {
	params, err := s.parameters.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("dag run %s: list parameters: %w", languageID, err)
	}

	graph := dag.Build(params)
	order := dag.TopoOrder(graph.Adjacency)
	runID := uuid.NewString()

	var report *dag.Report
	err = s.values.RunExclusive(ctx, languageID, func(ctx context.Context, tx ports.ValueTx) error {
		rows, err := tx.RawValues(ctx)
		if err != nil {
			return fmt.Errorf("raw snapshot: %w", err)
		}
		raw := make(map[string]core.Value, len(rows))
		warnings := make(map[string]bool, len(rows))
		for pid, lp := range rows {
			raw[pid] = lp.Raw
			warnings[pid] = lp.RawWarning
		}

		report = dag.Evaluate(dag.Inputs{
			LanguageID:  languageID,
			Graph:       graph,
			Order:       order,
			Raw:         raw,
			RawWarnings: warnings,
		})
		report.RunID = runID

		evals := make([]survey.LanguageParameterEval, 0, len(report.Results))
		for pid, out := range report.Results {
			evals = append(evals, survey.LanguageParameterEval{
				LanguageID:  languageID,
				ParameterID: pid,
				Eval:        out.Value,
				EvalWarning: out.Warning,
			})
		}
		return tx.ReplaceEvals(ctx, evals)
	})
	if err != nil {
		return nil, fmt.Errorf("dag run %s: %w", languageID, err)
	}

	s.logger.Info("dag run %s for %s: %d processed, %d forced zero, %d parse errors",
		runID, languageID, len(report.Processed), len(report.ForcedZero), len(report.ParseErrors))
	for _, issue := range report.ParseErrors {
		s.logger.Warn("dag run %s: condition for %s unparseable: %s", runID, issue.ParameterID, issue.Message)
	}
	return report, nil
}

// RunDAGAll evaluates every language, a few at a time. Languages are
// independent, so one failure cancels the remaining work but cannot
// corrupt another language's rows.
func (s *EvaluationService) RunDAGAll(ctx context.Context, concurrency int) (map[string]*dag.Report, error) {
	if concurrency < 1 {
		concurrency = 4
	}
	langs, err := s.languages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("dag run all: %w", err)
	}

	reports := make([]*dag.Report, len(langs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, lang := range langs {
		i, lang := i, lang
		g.Go(func() error {
			r, err := s.RunDAG(ctx, lang.ID)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*dag.Report, len(langs))
	for i, lang := range langs {
		out[lang.ID] = reports[i]
	}
	return out, nil
}
