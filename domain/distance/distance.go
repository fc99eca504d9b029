package distance

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"gotypo/domain/core"
)

// Metric computes a pairwise distance between two aligned rows of
// evaluated parameter values. Rows must have equal length; positions
// without a "+"/"-" contrast are ignored by both built-in metrics.
type Metric func(a, b []core.Value) float64

// Hamming counts an identity when both rows carry "+" or both carry "-"
// at a position, and a difference on a "+"/"-" contrast. Zero markers
// and absent values contribute to neither. The distance is
// differences / (differences + identities); two rows with no comparable
// positions are at distance 0.
func Hamming(a, b []core.Value) float64 {
	var id, dif float64
	for i := range a {
		switch {
		case a[i] == b[i] && a[i].Determinate():
			id++
		case a[i] == core.Plus && b[i] == core.Minus,
			a[i] == core.Minus && b[i] == core.Plus:
			dif++
		}
	}
	if dif+id == 0 {
		return 0
	}
	return dif / (dif + id)
}

// JaccardOn builds a metric that counts identities only on the chosen
// symbol; differences are still "+"/"-" contrasts.
func JaccardOn(identity core.Value) Metric {
	return func(a, b []core.Value) float64 {
		var id, dif float64
		for i := range a {
			switch {
			case a[i] == identity && b[i] == identity:
				id++
			case a[i] == core.Plus && b[i] == core.Minus,
				a[i] == core.Minus && b[i] == core.Plus:
				dif++
			}
		}
		if dif+id == 0 {
			return 0
		}
		return dif / (dif + id)
	}
}

// Matrix is a symmetric pairwise distance matrix over languages.
type Matrix struct {
	Languages []string
	D         *mat.Dense
}

// Compute builds the full pairwise matrix for the given language order.
// rows maps language id to its value row; every row must be aligned to
// the same parameter order.
func Compute(languages []string, rows map[string][]core.Value, metric Metric) (*Matrix, error) {
	n := len(languages)
	d := mat.NewDense(n, n, nil)
	for i, li := range languages {
		ri, ok := rows[li]
		if !ok {
			return nil, fmt.Errorf("no value row for language %s", li)
		}
		for j := i + 1; j < n; j++ {
			rj, ok := rows[languages[j]]
			if !ok {
				return nil, fmt.Errorf("no value row for language %s", languages[j])
			}
			if len(ri) != len(rj) {
				return nil, fmt.Errorf("misaligned value rows: %s has %d values, %s has %d",
					li, len(ri), languages[j], len(rj))
			}
			v := metric(ri, rj)
			d.Set(i, j, v)
			d.Set(j, i, v)
		}
	}
	return &Matrix{Languages: languages, D: d}, nil
}

// At returns the distance between two languages by id.
func (m *Matrix) At(a, b string) (float64, error) {
	ia, ib := -1, -1
	for i, l := range m.Languages {
		if l == a {
			ia = i
		}
		if l == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, fmt.Errorf("language pair (%s, %s) not in matrix", a, b)
	}
	return m.D.At(ia, ib), nil
}

// Summary describes the distribution of off-diagonal distances.
type Summary struct {
	Pairs  int     `json:"pairs"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes summary statistics over the upper triangle.
func (m *Matrix) Summarize() (Summary, error) {
	n := len(m.Languages)
	var values []float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			values = append(values, m.D.At(i, j))
		}
	}
	if len(values) == 0 {
		return Summary{}, nil
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(values)
	if err != nil {
		return Summary{}, err
	}
	min, err := stats.Min(values)
	if err != nil {
		return Summary{}, err
	}
	max, err := stats.Max(values)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Pairs: len(values), Mean: mean, Median: median, Min: min, Max: max}, nil
}
