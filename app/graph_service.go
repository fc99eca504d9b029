package app

import (
	"context"
	"fmt"
	"sort"

	"gotypo/domain/core"
	"gotypo/domain/dag"
	"gotypo/domain/logic"
	"gotypo/domain/survey"
	"gotypo/internal"
	"gotypo/ports"
)

// GraphNode is one parameter in the renderable dependency graph.
type GraphNode struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Level     int        `json:"level"`
	Condition string     `json:"condition,omitempty"`
	Rendered  string     `json:"rendered,omitempty"`
	Value     core.Value `json:"value,omitempty"`
	Warning   bool       `json:"warning,omitempty"`
	Color     string     `json:"color,omitempty"`
}

// GraphEdge points from a referenced parameter to a dependent one.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GraphPayload is the JSON shape consumed by the graph view.
type GraphPayload struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Node colors by evaluated value; indeterminate nodes stay uncolored.
var valueColors = map[core.Value]string{
	core.Plus:  "#2e7d32",
	core.Minus: "#c62828",
	core.Zero:  "#6c757d",
}

// GraphService produces the dependency graph payload, bare or overlaid
// with one language's evaluated values.
type GraphService struct {
	parameters ports.ParameterRepository
	values     ports.ValueRepository
	logger     *internal.Logger
}

// NewGraphService creates a graph service
func NewGraphService(parameters ports.ParameterRepository, values ports.ValueRepository, logger *internal.Logger) *GraphService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &GraphService{parameters: parameters, values: values, logger: logger}
}

// Payload builds the structural graph: every active parameter as a node
// at its topological level, every implication reference as an edge.
func (s *GraphService) Payload(ctx context.Context) (*GraphPayload, error) {
	params, err := s.parameters.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph payload: %w", err)
	}
	return s.build(params, nil), nil
}

// PayloadForLanguage overlays one language's evaluated values on the
// structural graph: node colors follow the value, warnings carry over.
func (s *GraphService) PayloadForLanguage(ctx context.Context, languageID string) (*GraphPayload, error) {
	params, err := s.parameters.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph payload %s: %w", languageID, err)
	}
	evals, err := s.values.Evals(ctx, languageID)
	if err != nil {
		return nil, fmt.Errorf("graph payload %s: eval values: %w", languageID, err)
	}
	outcomes := make(map[string]dag.Outcome, len(evals))
	for pid, e := range evals {
		outcomes[pid] = dag.Outcome{Value: e.Eval, Warning: e.EvalWarning}
	}
	return s.build(params, outcomes), nil
}

func (s *GraphService) build(params []survey.ParameterDef, outcomes map[string]dag.Outcome) *GraphPayload {
	graph := dag.Build(params)
	levels := dag.TopoLevels(graph.Adjacency)

	names := make(map[string]string, len(params))
	for _, p := range params {
		names[p.ID] = p.Name
	}

	payload := &GraphPayload{
		Nodes: make([]GraphNode, 0, len(graph.Adjacency)),
		Edges: make([]GraphEdge, 0),
	}
	for _, id := range graph.Nodes() {
		node := GraphNode{ID: id, Label: names[id], Level: levels[id], Condition: graph.Conditions[id]}
		if node.Condition != "" {
			if parsed, err := logic.Parse(node.Condition); err == nil {
				node.Rendered = parsed.String()
			}
		}
		if out, ok := outcomes[id]; ok {
			node.Value = out.Value
			node.Warning = out.Warning
			node.Color = valueColors[out.Value]
		}
		payload.Nodes = append(payload.Nodes, node)
		for _, dep := range graph.Adjacency[id] {
			payload.Edges = append(payload.Edges, GraphEdge{From: id, To: dep})
		}
	}
	sort.Slice(payload.Edges, func(i, j int) bool {
		if payload.Edges[i].From != payload.Edges[j].From {
			return payload.Edges[i].From < payload.Edges[j].From
		}
		return payload.Edges[i].To < payload.Edges[j].To
	})
	return payload
}
