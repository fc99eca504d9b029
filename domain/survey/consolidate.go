package survey

import "gotypo/domain/core"

// RawResult is the outcome of consolidating one (language, parameter)
// pair: the raw signed value and the conflict warning.
type RawResult struct {
	Value   core.Value
	Warning bool
}

// Consolidate derives a parameter's raw value from its question answers.
//
// questions must be the parameter's own questions (normal and stop);
// answers are the language's answers, in any status — rejected ones and
// answers to other parameters' questions are ignored here. Priority, first
// match wins:
//
//  1. no normal questions at all        -> indeterminate (data-model anomaly)
//  2. any normal answered yes           -> "+", warning iff a stop is also yes
//  3. any stop answered yes             -> "-"
//  4. every normal answered, all no     -> "-"
//  5. otherwise (coverage incomplete)   -> indeterminate
func Consolidate(questions []Question, answers []Answer) RawResult {
	normalIDs := make(map[string]bool)
	stopIDs := make(map[string]bool)
	for _, q := range questions {
		if q.StopQuestion {
			stopIDs[q.ID] = true
		} else {
			normalIDs[q.ID] = true
		}
	}

	// A parameter with zero normal questions cannot be determined; the
	// gap is a modeling problem outside this engine's authority.
	if len(normalIDs) == 0 {
		return RawResult{Value: core.Unset}
	}

	var (
		hasNormalYes    bool
		hasStopYes      bool
		allNormalNo     = true
		answeredNormals = make(map[string]bool)
	)
	for _, a := range answers {
		if !a.Status.Eligible() {
			continue
		}
		switch {
		case normalIDs[a.QuestionID]:
			answeredNormals[a.QuestionID] = true
			if a.Response.IsYes() {
				hasNormalYes = true
			}
			if !a.Response.IsNo() {
				allNormalNo = false
			}
		case stopIDs[a.QuestionID]:
			if a.Response.IsYes() {
				hasStopYes = true
			}
		}
	}

	if hasNormalYes {
		// Conflict: a stop condition that should exclude applicability
		// was affirmed alongside a normal affirmation.
		return RawResult{Value: core.Plus, Warning: hasStopYes}
	}
	if hasStopYes {
		return RawResult{Value: core.Minus}
	}
	if len(answeredNormals) == len(normalIDs) && allNormalNo {
		return RawResult{Value: core.Minus}
	}
	return RawResult{Value: core.Unset}
}
