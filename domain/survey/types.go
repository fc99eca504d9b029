package survey

import (
	"strings"

	"gotypo/domain/core"
)

// Language is one surveyed language, keyed by a short stable id ("ita").
type Language struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name_full"`
	Position   int    `json:"position" db:"position"`
	Group      string `json:"group,omitempty" db:"grp"`
	ISOCode    string `json:"isocode,omitempty" db:"isocode"`
	Glottocode string `json:"glottocode,omitempty" db:"glottocode"`
}

// ParameterDef is the definition of one typological parameter. Condition
// holds the implication expression in the signed-literal grammar; blank
// means the parameter has no implication rule.
type ParameterDef struct {
	ID               string `json:"id" db:"id"`
	Name             string `json:"name" db:"name"`
	ShortDescription string `json:"short_description,omitempty" db:"short_description"`
	Condition        string `json:"condition,omitempty" db:"implicational_condition"`
	Active           bool   `json:"active" db:"is_active"`
	Position         int    `json:"position" db:"position"`
}

// HasCondition reports whether the parameter carries a non-blank
// implication expression.
func (p ParameterDef) HasCondition() bool {
	return strings.TrimSpace(p.Condition) != ""
}

// Question belongs to exactly one parameter. A stop question is an
// exception trigger: answering it yes can independently establish a
// negative value for the parameter.
type Question struct {
	ID           string `json:"id" db:"id"`
	ParameterID  string `json:"parameter_id" db:"parameter_id"`
	Text         string `json:"text" db:"text"`
	Instruction  string `json:"instruction,omitempty" db:"instruction"`
	StopQuestion bool   `json:"stop_question" db:"is_stop_question"`
}

// Response is a yes/no survey answer.
type Response string

const (
	Yes Response = "yes"
	No  Response = "no"
)

// IsYes treats any casing of "yes" as affirmative.
func (r Response) IsYes() bool { return strings.EqualFold(string(r), string(Yes)) }

// IsNo treats any casing of "no" as negative.
func (r Response) IsNo() bool { return strings.EqualFold(string(r), string(No)) }

// AnswerStatus is the review lifecycle of an answer.
type AnswerStatus string

const (
	StatusPending            AnswerStatus = "pending"
	StatusWaiting            AnswerStatus = "waiting"
	StatusWaitingForApproval AnswerStatus = "waiting_for_approval"
	StatusApproved           AnswerStatus = "approved"
	StatusRejected           AnswerStatus = "rejected"
)

// Eligible reports whether answers in this status count toward
// consolidation. Only rejection removes an answer from consideration.
func (s AnswerStatus) Eligible() bool { return s != StatusRejected }

// Valid reports whether s is a known lifecycle status.
func (s AnswerStatus) Valid() bool {
	switch s {
	case StatusPending, StatusWaiting, StatusWaitingForApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Modifiable derives the modifiability flag from the status: only a
// pending answer may still be edited by the researcher.
func (s AnswerStatus) Modifiable() bool { return s == StatusPending }

// Answer is one response per (language, question) pair.
type Answer struct {
	LanguageID string       `json:"language_id" db:"language_id"`
	QuestionID string       `json:"question_id" db:"question_id"`
	Response   Response     `json:"response" db:"response_text"`
	Status     AnswerStatus `json:"status" db:"status"`
	Modifiable bool         `json:"modifiable" db:"modifiable"`
	Comments   string       `json:"comments,omitempty" db:"comments"`
}

// Validate checks the answer's own invariants.
func (a Answer) Validate() error {
	if !a.Response.IsYes() && !a.Response.IsNo() {
		return core.ErrInvalidResponse
	}
	if !a.Status.Valid() {
		return core.ErrInvalidStatus
	}
	if a.Modifiable != a.Status.Modifiable() {
		return core.NewValidationError("modifiable", "flag must follow status")
	}
	return nil
}

// LanguageParameter holds the raw (pre-implication) value of one
// parameter for one language. Raw is Unset while coverage is incomplete.
type LanguageParameter struct {
	LanguageID  string     `json:"language_id" db:"language_id"`
	ParameterID string     `json:"parameter_id" db:"parameter_id"`
	Raw         core.Value `json:"raw" db:"value_orig"`
	RawWarning  bool       `json:"raw_warning" db:"warning_orig"`
}

// LanguageParameterEval holds the evaluated (post-implication) value,
// one row per LanguageParameter. Eval may be Unset when neither the raw
// value nor the implication rules could settle the parameter.
type LanguageParameterEval struct {
	LanguageID  string     `json:"language_id" db:"language_id"`
	ParameterID string     `json:"parameter_id" db:"parameter_id"`
	Eval        core.Value `json:"eval" db:"value_eval"`
	EvalWarning bool       `json:"eval_warning" db:"warning_eval"`
}
