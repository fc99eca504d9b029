package distance

import (
	"testing"

	"gotypo/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(symbols string) []core.Value {
	out := make([]core.Value, len(symbols))
	for i, r := range symbols {
		switch r {
		case '+':
			out[i] = core.Plus
		case '-':
			out[i] = core.Minus
		case '0':
			out[i] = core.Zero
		default:
			out[i] = core.Unset
		}
	}
	return out
}

func TestHamming(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "++--", "++--", 0},
		{"all contrasts", "++", "--", 1},
		{"half contrast", "++", "+-", 0.5},
		{"zero markers ignored", "+0-", "+0-", 0},
		{"absent ignored", "+.-", "+.+", 0.5},
		{"no comparable positions", "00", "00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Hamming(row(tt.a), row(tt.b)), 1e-9)
		})
	}
}

func TestJaccardOn(t *testing.T) {
	plus := JaccardOn(core.Plus)
	// Shared "-" positions are not identities for Jaccard on "+".
	assert.InDelta(t, 1, plus(row("-+"), row("--")), 1e-9)
	// One shared "+", one contrast.
	assert.InDelta(t, 0.5, plus(row("++"), row("+-")), 1e-9)
	assert.InDelta(t, 0, plus(row("++"), row("++")), 1e-9)
}

func TestComputeMatrix(t *testing.T) {
	rows := map[string][]core.Value{
		"ita": row("++-"),
		"eng": row("+--"),
		"deu": row("--+"),
	}
	m, err := Compute([]string{"ita", "eng", "deu"}, rows, Hamming)
	require.NoError(t, err)

	d, err := m.At("ita", "eng")
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, d, 1e-9)

	// Symmetric with a zero diagonal.
	ab, _ := m.At("eng", "ita")
	assert.Equal(t, d, ab)
	self, _ := m.At("deu", "deu")
	assert.Zero(t, self)
}

func TestComputeRejectsMisalignedRows(t *testing.T) {
	_, err := Compute([]string{"a", "b"}, map[string][]core.Value{
		"a": row("++"),
		"b": row("+"),
	}, Hamming)
	assert.Error(t, err)

	_, err = Compute([]string{"a", "missing"}, map[string][]core.Value{
		"a": row("++"),
	}, Hamming)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	rows := map[string][]core.Value{
		"a": row("++"),
		"b": row("--"),
		"c": row("+-"),
	}
	m, err := Compute([]string{"a", "b", "c"}, rows, Hamming)
	require.NoError(t, err)

	s, err := m.Summarize()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Pairs)
	assert.InDelta(t, 1, s.Max, 1e-9)   // a vs b
	assert.InDelta(t, 0.5, s.Min, 1e-9) // a vs c and b vs c
	assert.InDelta(t, (1+0.5+0.5)/3, s.Mean, 1e-9)
	assert.InDelta(t, 0.5, s.Median, 1e-9)
}

func TestSummarizeEmptyMatrix(t *testing.T) {
	m, err := Compute([]string{"solo"}, map[string][]core.Value{"solo": row("+")}, Hamming)
	require.NoError(t, err)
	s, err := m.Summarize()
	require.NoError(t, err)
	assert.Zero(t, s.Pairs)
}
