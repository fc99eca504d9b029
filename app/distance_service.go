package app

import (
	"context"
	"fmt"

	"gotypo/domain/core"
	"gotypo/domain/distance"
	"gotypo/internal"
	"gotypo/ports"
)

// DistanceService computes pairwise typological distance matrices from
// the persisted evaluated values. Every language's row is aligned to
// the active parameters in position order, so the metrics compare like
// with like.
type DistanceService struct {
	parameters ports.ParameterRepository
	languages  ports.LanguageRepository
	values     ports.ValueRepository
	logger     *internal.Logger
}

// NewDistanceService creates a distance service
func NewDistanceService(
	parameters ports.ParameterRepository,
	languages ports.LanguageRepository,
	values ports.ValueRepository,
	logger *internal.Logger,
) *DistanceService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DistanceService{
		parameters: parameters,
		languages:  languages,
		values:     values,
		logger:     logger,
	}
}

// MetricByName resolves the metric names accepted by the CLI and API.
func MetricByName(name string) (distance.Metric, error) {
	switch name {
	case "", "hamming":
		return distance.Hamming, nil
	case "jaccard", "jaccard_plus":
		return distance.JaccardOn(core.Plus), nil
	case "jaccard_minus":
		return distance.JaccardOn(core.Minus), nil
	}
	return nil, fmt.Errorf("unknown distance metric %q", name)
}

// Matrix builds the full pairwise distance matrix over all languages.
func (s *DistanceService) Matrix(ctx context.Context, metric distance.Metric) (*distance.Matrix, error) {
	params, err := s.parameters.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("distance matrix: %w", err)
	}
	langs, err := s.languages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("distance matrix: %w", err)
	}

	ids := make([]string, len(langs))
	rows := make(map[string][]core.Value, len(langs))
	for i, lang := range langs {
		ids[i] = lang.ID
		evals, err := s.values.Evals(ctx, lang.ID)
		if err != nil {
			return nil, fmt.Errorf("distance matrix: evals for %s: %w", lang.ID, err)
		}
		row := make([]core.Value, len(params))
		for j, p := range params {
			if e, ok := evals[p.ID]; ok {
				row[j] = e.Eval
			}
		}
		rows[lang.ID] = row
	}

	m, err := distance.Compute(ids, rows, metric)
	if err != nil {
		return nil, fmt.Errorf("distance matrix: %w", err)
	}
	s.logger.Debug("distance matrix over %d languages, %d parameters", len(ids), len(params))
	return m, nil
}
