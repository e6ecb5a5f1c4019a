package expr

import (
	"strings"

	"github.com/sandrolain/godice/pkg/types"
)

// Group is a delimited, comma-separated list of elements.
//
// Elements live in an arena indexed at build time. Groups whose definition
// removes elements on selection mark them in removed; this is the only
// state a group changes after it is built, and only its own evaluation
// changes it. Evaluating the same Group from several goroutines is unsafe.
type Group struct {
	def       *types.GroupDef
	elements  []types.Node
	removed   []bool
	display   string
	cacheable bool
	memo      memo
}

// NewGroup creates a group node.
// It fails with ErrTooManyElements when the definition caps the element count.
func NewGroup(def *types.GroupDef, elements []types.Node) (*Group, error) {
	if def.MaxElements > 0 && len(elements) > def.MaxElements {
		return nil, types.Errorf(types.ErrTooManyElements,
			"Group %s%s accepts at most %d element(s), got %d", def.Open, def.Close, def.MaxElements, len(elements))
	}
	g := &Group{
		def:       def,
		elements:  elements,
		removed:   make([]bool, len(elements)),
		cacheable: def.Cacheable,
	}
	for _, e := range elements {
		g.cacheable = g.cacheable && e.Cacheable()
	}
	if def.FixedDisplay {
		g.display = g.render(nil)
	}
	return g, nil
}

// Def returns the group definition.
func (g *Group) Def() *types.GroupDef { return g.def }

// Len returns the number of elements not yet removed.
func (g *Group) Len() int {
	n := 0
	for _, r := range g.removed {
		if !r {
			n++
		}
	}
	return n
}

// Elements returns the elements not yet removed, in order.
func (g *Group) Elements() []types.Node {
	out := make([]types.Node, 0, len(g.elements))
	for i, e := range g.elements {
		if !g.removed[i] {
			out = append(out, e)
		}
	}
	return out
}

// RemoveElement implements types.ElementRemover.
// i indexes the elements that are still present, in the order they were
// passed to the group's evaluation function.
func (g *Group) RemoveElement(i int) {
	seen := 0
	for j := range g.elements {
		if g.removed[j] {
			continue
		}
		if seen == i {
			g.removed[j] = true
			return
		}
		seen++
	}
}

// Eval implements types.Node.
// Every remaining element is evaluated in order before the group's
// evaluation function runs.
func (g *Group) Eval(ctx *types.Context) (*types.Result, error) {
	if r, ok := g.memo.get(); ok {
		return r, nil
	}
	results := make([]*types.Result, 0, len(g.elements))
	for i, e := range g.elements {
		if g.removed[i] {
			continue
		}
		r, err := e.Eval(ctx)
		if err != nil {
			return nil, err
		}
		if !g.def.Require.Accepts(r.Variant) {
			return nil, types.Errorf(types.ErrOperandVariant,
				"Cannot evaluate %s: element %s must be %s, got %s", g.def.Name, e, g.def.Require, r.Variant)
		}
		results = append(results, r)
	}
	r, err := g.def.Eval(ctx, g, results)
	if err != nil {
		return nil, err
	}
	g.memo.store(g.cacheable, r)
	return r, nil
}

// Render implements types.Node.
func (g *Group) Render(ctx *types.Context) string {
	if g.def.FixedDisplay {
		return g.display
	}
	return g.render(ctx)
}

// String implements types.Node.
func (g *Group) String() string { return g.Render(nil) }

// Cacheable implements types.Node.
func (g *Group) Cacheable() bool { return g.cacheable }

// WithCount implements types.Recounter for single-element groups,
// so that "(4d6)!" re-rolls the die inside the parentheses.
func (g *Group) WithCount(count int) (types.Node, bool) {
	if len(g.elements) != 1 {
		return nil, false
	}
	return recount(g.elements[0], count)
}

func (g *Group) render(ctx *types.Context) string {
	var b strings.Builder
	b.WriteString(g.def.Open)
	first := true
	for i, e := range g.elements {
		if g.removed[i] {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(e.Render(ctx))
	}
	b.WriteString(g.def.Close)
	return b.String()
}

