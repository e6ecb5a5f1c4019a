package expr

import (
	"github.com/sandrolain/godice/pkg/types"
)

// opNode holds what every operator application shares.
type opNode struct {
	def       *types.OperatorDef
	cacheable bool
	memo      memo
}

func newOpNode(def *types.OperatorDef, operands ...types.Node) opNode {
	cacheable := def.Cacheable
	for _, o := range operands {
		cacheable = cacheable && o.Cacheable()
	}
	return opNode{def: def, cacheable: cacheable}
}

// Def returns the operator definition.
func (n *opNode) Def() *types.OperatorDef { return n.def }

// Cacheable implements types.Node.
func (n *opNode) Cacheable() bool { return n.cacheable }

// PrefixOp applies a prefix operator to the operand on its right.
type PrefixOp struct {
	opNode
	Operand types.Node
}

// NewPrefix creates a prefix operator node.
func NewPrefix(def *types.OperatorDef, operand types.Node) *PrefixOp {
	return &PrefixOp{opNode: newOpNode(def, operand), Operand: operand}
}

// Eval implements types.Node.
func (n *PrefixOp) Eval(ctx *types.Context) (*types.Result, error) {
	if r, ok := n.memo.get(); ok {
		return r, nil
	}
	v, err := n.Operand.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkVariant(n.def, "right", n.def.RequireRight, v, n.Operand); err != nil {
		return nil, err
	}
	r, err := n.def.Eval(ctx, n, v)
	if err != nil {
		return nil, err
	}
	n.memo.store(n.cacheable, r)
	return r, nil
}

// Render implements types.Node.
func (n *PrefixOp) Render(ctx *types.Context) string {
	return n.def.RenderText() + n.Operand.Render(ctx)
}

// String implements types.Node.
func (n *PrefixOp) String() string { return n.Render(nil) }

// WithCount implements types.Recounter.
func (n *PrefixOp) WithCount(count int) (types.Node, bool) {
	if n.def.Roller {
		return NewPrefix(n.def, NewConstant(float64(count))), true
	}
	return recount(n.Operand, count)
}

// PostfixOp applies a postfix operator to the operand on its left.
type PostfixOp struct {
	opNode
	Operand types.Node
}

// NewPostfix creates a postfix operator node.
func NewPostfix(def *types.OperatorDef, operand types.Node) *PostfixOp {
	return &PostfixOp{opNode: newOpNode(def, operand), Operand: operand}
}

// Eval implements types.Node.
func (n *PostfixOp) Eval(ctx *types.Context) (*types.Result, error) {
	if r, ok := n.memo.get(); ok {
		return r, nil
	}
	v, err := n.Operand.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkVariant(n.def, "left", n.def.RequireLeft, v, n.Operand); err != nil {
		return nil, err
	}
	r, err := n.def.Eval(ctx, n, v)
	if err != nil {
		return nil, err
	}
	n.memo.store(n.cacheable, r)
	return r, nil
}

// Render implements types.Node.
func (n *PostfixOp) Render(ctx *types.Context) string {
	return n.Operand.Render(ctx) + n.def.RenderText()
}

// String implements types.Node.
func (n *PostfixOp) String() string { return n.Render(nil) }

// WithCount implements types.Recounter.
func (n *PostfixOp) WithCount(count int) (types.Node, bool) {
	if n.def.Roller {
		return NewPostfix(n.def, NewConstant(float64(count))), true
	}
	return recount(n.Operand, count)
}

// InfixOp applies an infix operator to the operands on both sides.
type InfixOp struct {
	opNode
	Left  types.Node
	Right types.Node
}

// NewInfix creates an infix operator node.
func NewInfix(def *types.OperatorDef, left, right types.Node) *InfixOp {
	return &InfixOp{opNode: newOpNode(def, left, right), Left: left, Right: right}
}

// Eval implements types.Node.
// Operands are evaluated left to right before the operator runs.
func (n *InfixOp) Eval(ctx *types.Context) (*types.Result, error) {
	if r, ok := n.memo.get(); ok {
		return r, nil
	}
	l, err := n.Left.Eval(ctx)
	if err != nil {
		return nil, err
	}
	r, err := n.Right.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkVariant(n.def, "left", n.def.RequireLeft, l, n.Left); err != nil {
		return nil, err
	}
	if err := checkVariant(n.def, "right", n.def.RequireRight, r, n.Right); err != nil {
		return nil, err
	}
	res, err := n.def.Eval(ctx, n, l, r)
	if err != nil {
		return nil, err
	}
	n.memo.store(n.cacheable, res)
	return res, nil
}

// Render implements types.Node.
func (n *InfixOp) Render(ctx *types.Context) string {
	return n.Left.Render(ctx) + n.def.RenderText() + n.Right.Render(ctx)
}

// String implements types.Node.
func (n *InfixOp) String() string { return n.Render(nil) }

// WithCount implements types.Recounter.
// A die keeps its sides and takes the new count; any other operator
// re-instantiates the die on its left.
func (n *InfixOp) WithCount(count int) (types.Node, bool) {
	if n.def.Roller {
		return NewInfix(n.def, NewConstant(float64(count)), n.Right), true
	}
	return recount(n.Left, count)
}

func recount(n types.Node, count int) (types.Node, bool) {
	if rc, ok := n.(types.Recounter); ok {
		return rc.WithCount(count)
	}
	return nil, false
}

// WithCount re-instantiates the die behind node with a new count.
// It fails with ErrNotRerollable when node is not backed by a die.
func WithCount(node types.Node, count int) (types.Node, error) {
	if n, ok := recount(node, count); ok {
		return n, nil
	}
	return nil, types.Errorf(types.ErrNotRerollable, "Cannot re-roll %s", describe(node))
}

func checkVariant(def *types.OperatorDef, side string, want types.Variant, got *types.Result, operand types.Node) error {
	if want.Accepts(got.Variant) {
		return nil
	}
	return types.Errorf(types.ErrOperandVariant,
		"Cannot perform %s on %s: %s-hand argument must be %s, got %s",
		def.Name, describe(operand), side, want, got.Variant).WithToken(def.Text)
}

func describe(n types.Node) string {
	if n == nil {
		return "nothing"
	}
	return n.String()
}
