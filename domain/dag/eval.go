package dag

import (
	"sort"

	"gotypo/domain/core"
	"gotypo/domain/logic"
)

// ParseIssue records a condition that could not be parsed during a pass.
// The owning parameter is left indeterminate; the pass continues.
type ParseIssue struct {
	ParameterID string `json:"parameter_id"`
	Condition   string `json:"condition"`
	Message     string `json:"message"`
}

// Outcome is the evaluated value and warning for one parameter.
type Outcome struct {
	Value   core.Value `json:"value"`
	Warning bool       `json:"warning"`
}

// Inputs carries everything one evaluation pass needs, explicitly: the
// graph, the processing order, and the language's raw value snapshot.
// Nothing is looked up ambiently during the walk.
type Inputs struct {
	LanguageID  string
	Graph       *Graph
	Order       []string // optional; derived from the graph when nil
	Raw         map[string]core.Value
	RawWarnings map[string]bool
}

// Report summarizes one evaluation pass for one language.
type Report struct {
	RunID              string             `json:"run_id,omitempty"`
	LanguageID         string             `json:"language_id"`
	Processed          []string           `json:"processed"`
	ForcedZero         []string           `json:"forced_zero"`
	MissingRaw         []string           `json:"missing_raw"`
	WarningsPropagated []string           `json:"warnings_propagated"`
	ParseErrors        []ParseIssue       `json:"parse_errors,omitempty"`
	Results            map[string]Outcome `json:"results"`
}

// Evaluate walks the topological order and applies each parameter's
// implication condition. Per node:
//
//   - blank condition: evaluated value copies the raw value when it is
//     "+" or "-", otherwise stays absent — never "0" on this path.
//   - condition false: evaluated value forced to "0" (neutralization).
//   - condition true: copy the raw value, absent when raw is unset.
//   - condition unparseable: absent, the error recorded.
//
// Conditions are tested against a live map holding only the outputs
// already settled earlier in this same pass; raw values of untouched
// nodes are not visible to it. A settled "0" is visible downstream,
// while an absent outcome removes the id from the map so later literal
// comparisons simply never match.
//
// Warnings start from the raw conflict set and propagate monotonically:
// a node referencing any flagged parameter becomes flagged itself and is
// recorded in WarningsPropagated; nothing clears a flag within a pass.
func Evaluate(in Inputs) *Report {
	g := in.Graph
	order := in.Order
	if order == nil {
		order = TopoOrder(g.Adjacency)
	}

	report := &Report{
		LanguageID: in.LanguageID,
		Processed:  make([]string, 0, len(order)),
		Results:    make(map[string]Outcome, len(order)),
	}

	for _, id := range g.Nodes() {
		if !in.Raw[id].Determinate() {
			report.MissingRaw = append(report.MissingRaw, id)
		}
	}

	warnings := make(map[string]bool, len(in.RawWarnings))
	for id, w := range in.RawWarnings {
		if w {
			warnings[id] = true
		}
	}

	// Only outputs settled earlier in this pass are visible here.
	condValues := make(map[string]core.Value, len(order))

	for _, target := range order {
		cond := g.Conditions[target]
		raw := in.Raw[target]

		var value core.Value
		if cond == "" {
			if raw.Determinate() {
				value = raw
			}
		} else {
			node, err := logic.Parse(cond)
			switch {
			case err != nil:
				value = core.Unset
				report.ParseErrors = append(report.ParseErrors, ParseIssue{
					ParameterID: target,
					Condition:   cond,
					Message:     err.Error(),
				})
			case !node.Eval(condValues):
				value = core.Zero
				report.ForcedZero = append(report.ForcedZero, target)
			case raw.Determinate():
				value = raw
			}

			for _, ref := range ExtractRefs(cond) {
				if warnings[ref] {
					if !warnings[target] {
						warnings[target] = true
						report.WarningsPropagated = append(report.WarningsPropagated, target)
					}
					break
				}
			}
		}

		if value == core.Unset {
			delete(condValues, target)
		} else {
			condValues[target] = value
		}

		report.Results[target] = Outcome{Value: value, Warning: warnings[target]}
		report.Processed = append(report.Processed, target)
	}

	sort.Strings(report.WarningsPropagated)
	return report
}
