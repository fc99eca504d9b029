package dag

import (
	"regexp"
	"sort"
	"strings"

	"gotypo/domain/survey"
)

// Signed parameter tokens inside conditions: +FGM, -SCO, 0ABC
var tokenRe = regexp.MustCompile(`[+\-0]([A-Za-z0-9_]+)`)

// ExtractRefs returns the distinct parameter ids referenced by a
// condition, normalized to uppercase, in sorted order. It recognizes
// tokens by shape only; the full grammar is the parser's business.
func ExtractRefs(cond string) []string {
	seen := make(map[string]bool)
	for _, m := range tokenRe.FindAllStringSubmatch(cond, -1) {
		seen[strings.ToUpper(m[1])] = true
	}
	refs := make([]string, 0, len(seen))
	for r := range seen {
		refs = append(refs, r)
	}
	sort.Strings(refs)
	return refs
}

// Graph is the implication dependency graph over the active parameter
// scope. Adjacency maps a referenced parameter to the parameters whose
// conditions mention it (ref -> dependents) and holds an entry, possibly
// empty, for every active parameter. Conditions retains each active
// parameter's raw condition string even when it contributed no edges,
// so the evaluator can still try it directly.
type Graph struct {
	Adjacency  map[string][]string
	Conditions map[string]string
}

// Build constructs the dependency graph from parameter definitions.
// Inactive parameters are excluded wholesale. A condition referencing
// any parameter outside the active scope contributes no edges, matching
// the rule that such expressions are ignored for graph construction.
func Build(params []survey.ParameterDef) *Graph {
	active := make([]survey.ParameterDef, 0, len(params))
	for _, p := range params {
		if p.Active {
			active = append(active, p)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	g := &Graph{
		Adjacency:  make(map[string][]string, len(active)),
		Conditions: make(map[string]string, len(active)),
	}
	for _, p := range active {
		g.Adjacency[p.ID] = nil
	}

	for _, p := range active {
		cond := strings.TrimSpace(p.Condition)
		g.Conditions[p.ID] = cond
		if cond == "" {
			continue
		}
		refs := ExtractRefs(cond)
		if len(refs) == 0 {
			continue
		}
		inScope := true
		for _, r := range refs {
			if _, ok := g.Adjacency[r]; !ok {
				inScope = false
				break
			}
		}
		if !inScope {
			continue
		}
		for _, r := range refs {
			if !contains(g.Adjacency[r], p.ID) {
				g.Adjacency[r] = append(g.Adjacency[r], p.ID)
			}
		}
	}
	return g
}

// Nodes returns the active parameter ids in sorted order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.Adjacency))
	for id := range g.Adjacency {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
