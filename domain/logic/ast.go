package logic

import (
	"fmt"
	"strings"

	"gotypo/domain/core"
)

// Node is an evaluable boolean expression over signed parameter literals.
// Evaluation is pure: it never mutates the supplied value map.
type Node interface {
	// Eval returns the truth value of the node against the supplied
	// parameter values. A literal whose id is missing from the map is
	// false, never an error. A structurally malformed node panics:
	// the parser cannot produce one, so hitting it is a programming error.
	Eval(values map[string]core.Value) bool

	// String renders the node in the human-readable diagnostic form,
	// e.g. `+FGM | +FGA` becomes `(FGM=+ OR FGA=+)`.
	String() string
}

// True is the trivially-true expression produced by a blank condition.
type True struct{}

func (True) Eval(map[string]core.Value) bool { return true }
func (True) String() string                  { return "" }

// Literal matches one parameter against one sign: `+FGM` is true iff
// FGM currently carries "+".
type Literal struct {
	Sign core.Value
	ID   string
}

func (l Literal) Eval(values map[string]core.Value) bool {
	return values[l.ID] == l.Sign
}

func (l Literal) String() string {
	return fmt.Sprintf("%s=%s", l.ID, string(l.Sign))
}

// Not negates its operand.
type Not struct {
	X Node
}

func (n Not) Eval(values map[string]core.Value) bool {
	if n.X == nil {
		panic("logic: Not node without operand")
	}
	return !n.X.Eval(values)
}

func (n Not) String() string {
	return fmt.Sprintf("NOT (%s)", n.X)
}

// And is a left-to-right conjunction chain of two or more terms.
type And struct {
	Terms []Node
}

func (a And) Eval(values map[string]core.Value) bool {
	if len(a.Terms) < 2 {
		panic("logic: And node with fewer than two terms")
	}
	result := a.Terms[0].Eval(values)
	for _, t := range a.Terms[1:] {
		result = result && t.Eval(values)
	}
	return result
}

func (a And) String() string { return renderChain(a.Terms, "AND") }

// Or is a left-to-right disjunction chain of two or more terms.
type Or struct {
	Terms []Node
}

func (o Or) Eval(values map[string]core.Value) bool {
	if len(o.Terms) < 2 {
		panic("logic: Or node with fewer than two terms")
	}
	result := o.Terms[0].Eval(values)
	for _, t := range o.Terms[1:] {
		result = result || t.Eval(values)
	}
	return result
}

func (o Or) String() string { return renderChain(o.Terms, "OR") }

func renderChain(terms []Node, op string) string {
	parts := make([]string, 0, 2*len(terms)-1)
	for i, t := range terms {
		if i > 0 {
			parts = append(parts, op)
		}
		parts = append(parts, t.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}
