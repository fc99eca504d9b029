package app

import (
	"context"
	"fmt"

	"gotypo/domain/core"
	"gotypo/domain/dag"
	"gotypo/domain/logic"
	"gotypo/internal"
	"gotypo/ports"
)

// ExplainRow traces one parameter through the implication pass: the
// condition as stored, its normalized rendering, whether it held
// against the persisted evaluated values, and the raw/eval outcome.
type ExplainRow struct {
	ParameterID string     `json:"parameter_id"`
	Condition   string     `json:"condition,omitempty"`
	Rendered    string     `json:"rendered,omitempty"`
	Refs        []string   `json:"refs,omitempty"`
	CondHolds   *bool      `json:"cond_holds,omitempty"`
	Raw         core.Value `json:"raw"`
	RawWarning  bool       `json:"raw_warning,omitempty"`
	Eval        core.Value `json:"eval"`
	EvalWarning bool       `json:"eval_warning,omitempty"`
	Note        string     `json:"note,omitempty"`
}

// DiagnosticsService explains why a language's evaluated values came
// out the way they did, without re-running the pass.
type DiagnosticsService struct {
	parameters ports.ParameterRepository
	values     ports.ValueRepository
	logger     *internal.Logger
}

// NewDiagnosticsService creates a diagnostics service
func NewDiagnosticsService(parameters ports.ParameterRepository, values ports.ValueRepository, logger *internal.Logger) *DiagnosticsService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DiagnosticsService{parameters: parameters, values: values, logger: logger}
}

// ExplainLanguage walks the active parameters in processing order and
// replays each condition against the persisted evaluated values. The
// rows line up with what the last RunDAG stored as long as neither the
// answers nor the parameter scope changed since.
func (s *DiagnosticsService) ExplainLanguage(ctx context.Context, languageID string) ([]ExplainRow, error) {
	params, err := s.parameters.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("explain %s: %w", languageID, err)
	}
	raws, err := s.values.RawValues(ctx, languageID)
	if err != nil {
		return nil, fmt.Errorf("explain %s: raw values: %w", languageID, err)
	}
	evals, err := s.values.Evals(ctx, languageID)
	if err != nil {
		return nil, fmt.Errorf("explain %s: eval values: %w", languageID, err)
	}

	graph := dag.Build(params)
	order := dag.TopoOrder(graph.Adjacency)

	condValues := make(map[string]core.Value, len(evals))
	for pid, e := range evals {
		if e.Eval.Present() {
			condValues[pid] = e.Eval
		}
	}

	rows := make([]ExplainRow, 0, len(order))
	for _, pid := range order {
		row := ExplainRow{ParameterID: pid, Condition: graph.Conditions[pid]}
		if lp, ok := raws[pid]; ok {
			row.Raw = lp.Raw
			row.RawWarning = lp.RawWarning
		}
		if e, ok := evals[pid]; ok {
			row.Eval = e.Eval
			row.EvalWarning = e.EvalWarning
		}

		switch {
		case row.Condition == "":
			row.Note = "no condition; eval copies a determinate raw value"
		default:
			row.Refs = dag.ExtractRefs(row.Condition)
			node, err := logic.Parse(row.Condition)
			if err != nil {
				row.Note = fmt.Sprintf("condition unparseable: %v", err)
				break
			}
			row.Rendered = node.String()
			holds := node.Eval(condValues)
			row.CondHolds = &holds
			switch {
			case !holds:
				row.Note = "condition false; value neutralized to 0"
			case !row.Raw.Determinate():
				row.Note = "condition true but raw value indeterminate"
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
