package registry

import (
	"slices"

	"github.com/sandrolain/godice/pkg/types"
)

// Table is an immutable snapshot of a Registry.
// It is safe for concurrent use.
type Table struct {
	operators []*types.OperatorDef
	byLength  []*types.OperatorDef
	byName    map[string]*types.OperatorDef
	byPrec    map[int][]*types.OperatorDef
	precs     []int

	groups     []*types.GroupDef
	groupNames map[string]*types.GroupDef
	byOpen     map[string]*types.GroupDef
	byClose    map[string]*types.GroupDef
	delims     []string
}

func buildTable(ops []*types.OperatorDef, groups []*types.GroupDef) *Table {
	t := &Table{
		operators:  ops,
		byName:     make(map[string]*types.OperatorDef, len(ops)),
		byPrec:     make(map[int][]*types.OperatorDef),
		groups:     groups,
		groupNames: make(map[string]*types.GroupDef, len(groups)),
		byOpen:     make(map[string]*types.GroupDef, len(groups)),
		byClose:    make(map[string]*types.GroupDef, len(groups)),
	}

	for _, op := range ops {
		t.byName[op.Name] = op
		if _, ok := t.byPrec[op.Precedence]; !ok {
			t.precs = append(t.precs, op.Precedence)
		}
		t.byPrec[op.Precedence] = append(t.byPrec[op.Precedence], op)
	}
	slices.SortFunc(t.precs, func(a, b int) int { return b - a })

	t.byLength = slices.Clone(ops)
	slices.SortStableFunc(t.byLength, func(a, b *types.OperatorDef) int {
		return len(b.Text) - len(a.Text)
	})

	for _, g := range groups {
		t.groupNames[g.Name] = g
		t.byOpen[g.Open] = g
		t.byClose[g.Close] = g
		t.delims = append(t.delims, g.Open, g.Close)
	}
	slices.SortStableFunc(t.delims, func(a, b string) int { return len(b) - len(a) })

	return t
}

// Operators returns every operator in registration order.
func (t *Table) Operators() []*types.OperatorDef {
	return slices.Clone(t.operators)
}

// OperatorsByLength returns every operator, longest text first.
// Operators with texts of equal length keep registration order.
func (t *Table) OperatorsByLength() []*types.OperatorDef {
	return slices.Clone(t.byLength)
}

// Operator looks up an operator by name.
func (t *Table) Operator(name string) (*types.OperatorDef, bool) {
	op, ok := t.byName[name]
	return op, ok
}

// OperatorsAtPrecedence returns the operators bound at precedence p.
func (t *Table) OperatorsAtPrecedence(p int) []*types.OperatorDef {
	return slices.Clone(t.byPrec[p])
}

// Precedences returns the distinct precedences in use, highest first.
func (t *Table) Precedences() []int {
	return slices.Clone(t.precs)
}

// HighestPrecedence returns the tightest-binding precedence, or 0 when
// no operator is registered.
func (t *Table) HighestPrecedence() int {
	if len(t.precs) == 0 {
		return 0
	}
	return t.precs[0]
}

// LowestPrecedence returns the loosest-binding precedence, or 0 when
// no operator is registered.
func (t *Table) LowestPrecedence() int {
	if len(t.precs) == 0 {
		return 0
	}
	return t.precs[len(t.precs)-1]
}

// Groups returns every group in registration order.
func (t *Table) Groups() []*types.GroupDef {
	return slices.Clone(t.groups)
}

// Group looks up a group by name.
func (t *Table) Group(name string) (*types.GroupDef, bool) {
	g, ok := t.groupNames[name]
	return g, ok
}

// GroupByOpen looks up a group by its opening token.
func (t *Table) GroupByOpen(tok string) (*types.GroupDef, bool) {
	g, ok := t.byOpen[tok]
	return g, ok
}

// GroupByClose looks up a group by its closing token.
func (t *Table) GroupByClose(tok string) (*types.GroupDef, bool) {
	g, ok := t.byClose[tok]
	return g, ok
}

// Delimiters returns every group token, longest first.
func (t *Table) Delimiters() []string {
	return slices.Clone(t.delims)
}
