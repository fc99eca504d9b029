package dag

import (
	"testing"

	"gotypo/domain/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func param(id, cond string, active bool) survey.ParameterDef {
	return survey.ParameterDef{ID: id, Name: id, Condition: cond, Active: active}
}

func TestExtractRefs(t *testing.T) {
	tests := []struct {
		cond string
		want []string
	}{
		{"", nil},
		{"+FGM", []string{"FGM"}},
		{"+FGM | -FGA & 0SCO", []string{"FGA", "FGM", "SCO"}},
		{"+fgm | -FGM", []string{"FGM"}}, // case-normalized and deduplicated
		{"not +A_1", []string{"A_1"}},
	}
	for _, tt := range tests {
		got := ExtractRefs(tt.cond)
		if tt.want == nil {
			assert.Empty(t, got, "cond %q", tt.cond)
			continue
		}
		assert.Equal(t, tt.want, got, "cond %q", tt.cond)
	}
}

func TestBuildGraphEdges(t *testing.T) {
	g := Build([]survey.ParameterDef{
		param("FGK", "", true),
		param("FGM", "+FGK", true),
		param("FGA", "+FGK | +FGM", true),
	})

	assert.ElementsMatch(t, []string{"FGM", "FGA"}, g.Adjacency["FGK"])
	assert.Equal(t, []string{"FGA"}, g.Adjacency["FGM"])
	assert.Empty(t, g.Adjacency["FGA"])
	assert.Equal(t, "+FGK", g.Conditions["FGM"])
	assert.Equal(t, "", g.Conditions["FGK"])
}

func TestBuildGraphSkipsInactiveParameters(t *testing.T) {
	g := Build([]survey.ParameterDef{
		param("FGK", "", true),
		param("OLD", "+FGK", false),
	})
	_, hasOld := g.Adjacency["OLD"]
	assert.False(t, hasOld)
	assert.Empty(t, g.Adjacency["FGK"])
}

func TestBuildGraphIgnoresOutOfScopeReferences(t *testing.T) {
	// FGM's condition mentions the inactive GONE: the whole rule adds no
	// edges, but the condition string is still retained for evaluation.
	g := Build([]survey.ParameterDef{
		param("FGK", "", true),
		param("FGM", "+FGK & +GONE", true),
		param("GONE", "", false),
	})
	assert.Empty(t, g.Adjacency["FGK"])
	assert.Equal(t, "+FGK & +GONE", g.Conditions["FGM"])
}

func TestBuildGraphDeduplicatesEdges(t *testing.T) {
	g := Build([]survey.ParameterDef{
		param("FGK", "", true),
		param("FGM", "+FGK | -FGK", true),
	})
	assert.Equal(t, []string{"FGM"}, g.Adjacency["FGK"])
}

func TestBuildGraphAdjacencyIsTotal(t *testing.T) {
	params := []survey.ParameterDef{
		param("A", "", true),
		param("B", "+A", true),
		param("C", "( )", true), // no recognizable refs, no edges
	}
	g := Build(params)
	require.Len(t, g.Adjacency, 3)
	assert.Equal(t, []string{"A", "B", "C"}, g.Nodes())
}

func TestTopoOrderIsDeterministicAndComplete(t *testing.T) {
	g := Build([]survey.ParameterDef{
		param("A", "", true),
		param("B", "+A", true),
		param("C", "+B", true),
		param("D", "+A", true),
	})
	first := TopoOrder(g.Adjacency)
	require.Len(t, first, 4)

	pos := make(map[string]int, len(first))
	for i, id := range first {
		pos[id] = i
	}
	assert.Less(t, pos["A"], pos["B"])
	assert.Less(t, pos["B"], pos["C"])
	assert.Less(t, pos["A"], pos["D"])

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TopoOrder(g.Adjacency))
	}
}

func TestTopoOrderDrainsCycles(t *testing.T) {
	g := Build([]survey.ParameterDef{
		param("ROOT", "", true),
		param("A", "+B", true),
		param("B", "+A", true),
	})
	order := TopoOrder(g.Adjacency)
	require.Len(t, order, 3)
	assert.Equal(t, "ROOT", order[0])
	assert.ElementsMatch(t, []string{"A", "B"}, order[1:])
}

func TestTopoLevels(t *testing.T) {
	g := Build([]survey.ParameterDef{
		param("A", "", true),
		param("B", "+A", true),
		param("C", "+A & +B", true),
	})
	levels := TopoLevels(g.Adjacency)
	assert.Equal(t, 0, levels["A"])
	assert.Equal(t, 1, levels["B"])
	assert.Equal(t, 2, levels["C"])

	cyclic := Build([]survey.ParameterDef{
		param("A", "+B", true),
		param("B", "+A", true),
	})
	cl := TopoLevels(cyclic.Adjacency)
	assert.Equal(t, 1, cl["A"])
	assert.Equal(t, 1, cl["B"])
}
