package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotypo/adapters/memory"
	"gotypo/domain/core"
	"gotypo/domain/survey"
	"gotypo/internal"
)

// seedStore loads a minimal survey: three parameters where FGK depends
// on FGM being positive and SCO has no condition, plus two questions
// for FGM (one normal, one stop).
func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Languages().Upsert(ctx, &survey.Language{ID: "ita", Name: "Italian", Position: 1}))
	require.NoError(t, store.Languages().Upsert(ctx, &survey.Language{ID: "deu", Name: "German", Position: 2}))

	params := []survey.ParameterDef{
		{ID: "FGM", Name: "Feature-gender marking", Active: true, Position: 1},
		{ID: "FGK", Name: "Gender on kin terms", Condition: "+FGM", Active: true, Position: 2},
		{ID: "SCO", Name: "Stop-consonant onset", Active: true, Position: 3},
	}
	for i := range params {
		require.NoError(t, store.Parameters().Upsert(ctx, &params[i]))
	}

	questions := []survey.Question{
		{ID: "q-fgm-1", ParameterID: "FGM", Text: "Does the language mark gender?"},
		{ID: "q-fgm-stop", ParameterID: "FGM", Text: "Is the category absent entirely?", StopQuestion: true},
		{ID: "q-sco-1", ParameterID: "SCO", Text: "Are stop onsets attested?"},
	}
	for i := range questions {
		require.NoError(t, store.Questions().Upsert(ctx, &questions[i]))
	}
	return store
}

func answer(langID, qID string, r survey.Response, status survey.AnswerStatus) *survey.Answer {
	return &survey.Answer{
		LanguageID: langID,
		QuestionID: qID,
		Response:   r,
		Status:     status,
		Modifiable: status.Modifiable(),
	}
}

func newServices(store *memory.Store) (*ConsolidationService, *EvaluationService) {
	logger := internal.NewLogger(internal.LogLevelError)
	cons := NewConsolidationService(store.Parameters(), store.Questions(), store.Answers(), store.Values(), logger)
	eval := NewEvaluationService(store.Parameters(), store.Languages(), store.Values(), logger)
	return cons, eval
}

func TestAnswerChangedConsolidatesOwningParameter(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, _ := newServices(store)

	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-fgm-1", survey.Yes, survey.StatusApproved)))
	require.NoError(t, cons.AnswerChanged(ctx, "ita", "q-fgm-1"))

	raws, err := store.Values().RawValues(ctx, "ita")
	require.NoError(t, err)
	assert.Equal(t, core.Plus, raws["FGM"].Raw)
	assert.False(t, raws["FGM"].RawWarning)
}

func TestAnswerChangedFlagsStopConflict(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, _ := newServices(store)

	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-fgm-1", survey.Yes, survey.StatusApproved)))
	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-fgm-stop", survey.Yes, survey.StatusApproved)))
	require.NoError(t, cons.AnswerChanged(ctx, "ita", "q-fgm-stop"))

	raws, err := store.Values().RawValues(ctx, "ita")
	require.NoError(t, err)
	assert.Equal(t, core.Plus, raws["FGM"].Raw)
	assert.True(t, raws["FGM"].RawWarning)
}

func TestAnswerChangedUnknownQuestionIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, _ := newServices(store)

	assert.NoError(t, cons.AnswerChanged(ctx, "ita", "q-vanished"))
}

func TestConsolidateParameterUnknownParameter(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, _ := newServices(store)

	_, err := cons.ConsolidateParameter(ctx, "ita", "NOPE")
	assert.ErrorIs(t, err, core.ErrParameterNotFound)
}

func TestConsolidateParameterVanishedLanguage(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, _ := newServices(store)

	res, err := cons.ConsolidateParameter(ctx, "gone", "FGM")
	require.NoError(t, err)
	assert.Equal(t, core.Unset, res.Value)

	raws, err := store.Values().RawValues(ctx, "gone")
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestRunDAGPersistsOutcomes(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, eval := newServices(store)

	// FGM positive makes FGK's condition true; SCO is unconditioned.
	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-fgm-1", survey.Yes, survey.StatusApproved)))
	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-sco-1", survey.No, survey.StatusApproved)))
	require.NoError(t, cons.ConsolidateLanguage(ctx, "ita"))

	report, err := eval.RunDAG(ctx, "ita")
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []string{"FGM", "SCO", "FGK"}, report.Processed)

	evals, err := store.Values().Evals(ctx, "ita")
	require.NoError(t, err)
	assert.Equal(t, core.Plus, evals["FGM"].Eval)
	assert.Equal(t, core.Minus, evals["SCO"].Eval)
	// FGK's condition held but it has no raw value of its own.
	assert.Equal(t, core.Unset, evals["FGK"].Eval)
}

func TestRunDAGNeutralizesWhenConditionFails(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, eval := newServices(store)

	// FGM consolidates to "-": the stop question was affirmed.
	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-fgm-stop", survey.Yes, survey.StatusApproved)))
	require.NoError(t, cons.ConsolidateLanguage(ctx, "ita"))

	report, err := eval.RunDAG(ctx, "ita")
	require.NoError(t, err)
	assert.Contains(t, report.ForcedZero, "FGK")

	evals, err := store.Values().Evals(ctx, "ita")
	require.NoError(t, err)
	assert.Equal(t, core.Minus, evals["FGM"].Eval)
	assert.Equal(t, core.Zero, evals["FGK"].Eval)
}

func TestRunDAGReplacesStaleEvals(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, eval := newServices(store)

	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-fgm-1", survey.Yes, survey.StatusApproved)))
	require.NoError(t, cons.ConsolidateLanguage(ctx, "ita"))
	_, err := eval.RunDAG(ctx, "ita")
	require.NoError(t, err)

	// Deactivate FGK; its old eval row must disappear on the next run.
	require.NoError(t, store.Parameters().Upsert(ctx, &survey.ParameterDef{
		ID: "FGK", Name: "Gender on kin terms", Condition: "+FGM", Active: false, Position: 2,
	}))
	_, err = eval.RunDAG(ctx, "ita")
	require.NoError(t, err)

	evals, err := store.Values().Evals(ctx, "ita")
	require.NoError(t, err)
	assert.NotContains(t, evals, "FGK")
	assert.Contains(t, evals, "FGM")
}

func TestRunDAGUnknownLanguage(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	_, eval := newServices(store)

	_, err := eval.RunDAG(ctx, "zz")
	assert.ErrorIs(t, err, core.ErrLanguageNotFound)
}

func TestRunDAGAllCoversEveryLanguage(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, eval := newServices(store)

	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-fgm-1", survey.Yes, survey.StatusApproved)))
	require.NoError(t, store.Answers().Upsert(ctx, answer("deu", "q-fgm-1", survey.No, survey.StatusApproved)))
	require.NoError(t, cons.ConsolidateLanguage(ctx, "ita"))
	require.NoError(t, cons.ConsolidateLanguage(ctx, "deu"))

	reports, err := eval.RunDAGAll(ctx, 2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.NotEqual(t, reports["ita"].RunID, reports["deu"].RunID)
	assert.Equal(t, "ita", reports["ita"].LanguageID)
	assert.Equal(t, "deu", reports["deu"].LanguageID)
}

func TestExplainLanguageRows(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, eval := newServices(store)
	diag := NewDiagnosticsService(store.Parameters(), store.Values(), internal.NewLogger(internal.LogLevelError))

	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-fgm-1", survey.Yes, survey.StatusApproved)))
	require.NoError(t, cons.ConsolidateLanguage(ctx, "ita"))
	_, err := eval.RunDAG(ctx, "ita")
	require.NoError(t, err)

	rows, err := diag.ExplainLanguage(ctx, "ita")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byID := make(map[string]ExplainRow, len(rows))
	for _, r := range rows {
		byID[r.ParameterID] = r
	}

	fgk := byID["FGK"]
	assert.Equal(t, "+FGM", fgk.Condition)
	assert.Equal(t, "FGM=+", fgk.Rendered)
	assert.Equal(t, []string{"FGM"}, fgk.Refs)
	require.NotNil(t, fgk.CondHolds)
	assert.True(t, *fgk.CondHolds)
	assert.Contains(t, fgk.Note, "indeterminate")

	sco := byID["SCO"]
	assert.Empty(t, sco.Condition)
	assert.Nil(t, sco.CondHolds)
}

func TestGraphPayloadOverlay(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, eval := newServices(store)
	gs := NewGraphService(store.Parameters(), store.Values(), internal.NewLogger(internal.LogLevelError))

	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-fgm-1", survey.Yes, survey.StatusApproved)))
	require.NoError(t, cons.ConsolidateLanguage(ctx, "ita"))
	_, err := eval.RunDAG(ctx, "ita")
	require.NoError(t, err)

	bare, err := gs.Payload(ctx)
	require.NoError(t, err)
	require.Len(t, bare.Nodes, 3)
	assert.Equal(t, []GraphEdge{{From: "FGM", To: "FGK"}}, bare.Edges)
	for _, n := range bare.Nodes {
		assert.Empty(t, n.Color)
	}

	overlay, err := gs.PayloadForLanguage(ctx, "ita")
	require.NoError(t, err)
	colors := make(map[string]string, len(overlay.Nodes))
	levels := make(map[string]int, len(overlay.Nodes))
	for _, n := range overlay.Nodes {
		colors[n.ID] = n.Color
		levels[n.ID] = n.Level
	}
	assert.Equal(t, "#2e7d32", colors["FGM"])
	assert.Empty(t, colors["FGK"]) // indeterminate stays uncolored
	assert.Less(t, levels["FGM"], levels["FGK"])
}

func TestDistanceMatrixFromEvals(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	cons, eval := newServices(store)
	ds := NewDistanceService(store.Parameters(), store.Languages(), store.Values(), internal.NewLogger(internal.LogLevelError))

	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-fgm-1", survey.Yes, survey.StatusApproved)))
	require.NoError(t, store.Answers().Upsert(ctx, answer("ita", "q-sco-1", survey.Yes, survey.StatusApproved)))
	require.NoError(t, store.Answers().Upsert(ctx, answer("deu", "q-fgm-1", survey.No, survey.StatusApproved)))
	require.NoError(t, store.Answers().Upsert(ctx, answer("deu", "q-sco-1", survey.Yes, survey.StatusApproved)))
	require.NoError(t, cons.ConsolidateLanguage(ctx, "ita"))
	require.NoError(t, cons.ConsolidateLanguage(ctx, "deu"))
	_, err := eval.RunDAGAll(ctx, 2)
	require.NoError(t, err)

	metric, err := MetricByName("hamming")
	require.NoError(t, err)
	m, err := ds.Matrix(ctx, metric)
	require.NoError(t, err)

	// ita: FGM=+, SCO=+; deu: FGM=-, SCO=+. One contrast, one identity.
	d, err := m.At("ita", "deu")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d, 1e-9)

	_, err = MetricByName("chebyshev")
	assert.Error(t, err)
}
