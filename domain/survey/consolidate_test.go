package survey

import (
	"testing"

	"gotypo/domain/core"

	"github.com/stretchr/testify/assert"
)

// Fixture: parameter FGM with two normal questions and one stop question.
var fgmQuestions = []Question{
	{ID: "FGMQ_a", ParameterID: "FGM"},
	{ID: "FGMQ_b", ParameterID: "FGM"},
	{ID: "FGMQ_stop", ParameterID: "FGM", StopQuestion: true},
}

func ans(q string, r Response, status AnswerStatus) Answer {
	return Answer{LanguageID: "ita", QuestionID: q, Response: r, Status: status, Modifiable: status.Modifiable()}
}

func TestConsolidatePriority(t *testing.T) {
	tests := []struct {
		name    string
		answers []Answer
		want    core.Value
		warning bool
	}{
		{
			name: "normal yes with stop yes is a conflict",
			answers: []Answer{
				ans("FGMQ_a", Yes, StatusApproved),
				ans("FGMQ_stop", Yes, StatusApproved),
			},
			want:    core.Plus,
			warning: true,
		},
		{
			name: "normal yes alone",
			answers: []Answer{
				ans("FGMQ_a", Yes, StatusPending),
			},
			want: core.Plus,
		},
		{
			name: "stop yes without normal yes",
			answers: []Answer{
				ans("FGMQ_a", No, StatusApproved),
				ans("FGMQ_stop", Yes, StatusApproved),
			},
			want: core.Minus,
		},
		{
			name: "all normals answered no, stop unanswered",
			answers: []Answer{
				ans("FGMQ_a", No, StatusApproved),
				ans("FGMQ_b", No, StatusWaitingForApproval),
			},
			want: core.Minus,
		},
		{
			name: "one normal unanswered is indeterminate",
			answers: []Answer{
				ans("FGMQ_a", No, StatusApproved),
			},
			want: core.Unset,
		},
		{
			name:    "no answers at all",
			answers: nil,
			want:    core.Unset,
		},
		{
			name: "stop no alone stays indeterminate",
			answers: []Answer{
				ans("FGMQ_stop", No, StatusApproved),
			},
			want: core.Unset,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Consolidate(fgmQuestions, tt.answers)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.warning, got.Warning)
		})
	}
}

func TestConsolidateIgnoresRejectedAnswers(t *testing.T) {
	// A rejected yes must not flip the value, however recent.
	got := Consolidate(fgmQuestions, []Answer{
		ans("FGMQ_a", Yes, StatusRejected),
		ans("FGMQ_b", No, StatusApproved),
	})
	assert.Equal(t, core.Unset, got.Value)

	// Rejected stop yes must not trigger the conflict warning.
	got = Consolidate(fgmQuestions, []Answer{
		ans("FGMQ_a", Yes, StatusApproved),
		ans("FGMQ_stop", Yes, StatusRejected),
	})
	assert.Equal(t, core.Plus, got.Value)
	assert.False(t, got.Warning)
}

func TestConsolidateIgnoresForeignQuestions(t *testing.T) {
	got := Consolidate(fgmQuestions, []Answer{
		ans("OTHERQ_a", Yes, StatusApproved),
	})
	assert.Equal(t, core.Unset, got.Value)
}

func TestConsolidateNoNormalQuestionsIsAnomaly(t *testing.T) {
	onlyStop := []Question{{ID: "XQ_stop", ParameterID: "X", StopQuestion: true}}
	got := Consolidate(onlyStop, []Answer{ans("XQ_stop", Yes, StatusApproved)})
	assert.Equal(t, core.Unset, got.Value)
	assert.False(t, got.Warning)
}

func TestAnswerStatusInvariants(t *testing.T) {
	assert.True(t, StatusPending.Modifiable())
	for _, s := range []AnswerStatus{StatusWaiting, StatusWaitingForApproval, StatusApproved, StatusRejected} {
		assert.False(t, s.Modifiable(), "status %s", s)
	}
	for _, s := range []AnswerStatus{StatusPending, StatusWaiting, StatusWaitingForApproval, StatusApproved} {
		assert.True(t, s.Eligible(), "status %s", s)
	}
	assert.False(t, StatusRejected.Eligible())
}

func TestAnswerValidate(t *testing.T) {
	good := ans("FGMQ_a", Yes, StatusPending)
	assert.NoError(t, good.Validate())

	bad := good
	bad.Response = "maybe"
	assert.ErrorIs(t, bad.Validate(), core.ErrInvalidResponse)

	bad = good
	bad.Status = "draft"
	assert.ErrorIs(t, bad.Validate(), core.ErrInvalidStatus)

	bad = ans("FGMQ_a", Yes, StatusApproved)
	bad.Modifiable = true
	assert.Error(t, bad.Validate())
}
