package expr_test

import (
	"math"
	"testing"

	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/types"
)

var calls int

var addDef = &types.OperatorDef{
	Name: "add", Text: "+", Arity: types.Infix, Cacheable: true,
	Eval: func(ctx *types.Context, node types.Node, ops ...*types.Result) (*types.Result, error) {
		calls++
		return types.NewBasic(node, ops[0].Value+ops[1].Value, ops...), nil
	},
}

var counterDef = &types.OperatorDef{
	Name: "counter", Text: "c", Arity: types.Infix, Roller: true,
	Eval: func(ctx *types.Context, node types.Node, ops ...*types.Result) (*types.Result, error) {
		n := int(ops[0].Value)
		rolls := make([]int, n)
		for i := range rolls {
			rolls[i] = ctx.IntN(int(ops[1].Value)) + 1
		}
		return &types.Result{
			Source: node, Value: types.Sum(rolls), Prev: ops, Variant: types.VariantDice,
			Rolls: rolls, RollCount: n, MaxRoll: int(ops[1].Value),
		}, nil
	},
}

var diceOnlyDef = &types.OperatorDef{
	Name: "dice_only", Text: "!", Arity: types.Postfix, RequireLeft: types.VariantDice,
	Eval: func(ctx *types.Context, node types.Node, ops ...*types.Result) (*types.Result, error) {
		return ops[0].Derive(node), nil
	},
}

var negDef = &types.OperatorDef{
	Name: "neg", Text: "neg", Display: "-", Arity: types.Prefix, Cacheable: true,
	Eval: func(ctx *types.Context, node types.Node, ops ...*types.Result) (*types.Result, error) {
		return types.NewBasic(node, -ops[0].Value, ops...), nil
	},
}

var listDef = &types.GroupDef{
	Name: "take", Open: "{", Close: "}", FixedDisplay: true,
	Eval: func(ctx *types.Context, node types.Node, els []*types.Result) (*types.Result, error) {
		if len(els) == 0 {
			return types.NewBasic(node, math.NaN()), nil
		}
		node.(types.ElementRemover).RemoveElement(0)
		return types.NewBasic(node, els[0].Value, els[0]), nil
	},
}

var parensDef = &types.GroupDef{
	Name: "parens", Open: "(", Close: ")", MaxElements: 1, Cacheable: true,
	Eval: func(ctx *types.Context, node types.Node, els []*types.Result) (*types.Result, error) {
		return types.NewBasic(node, els[0].Value, els[0]), nil
	},
}

func constant(v float64) *expr.Constant { return expr.NewConstant(v) }

func TestConstant(t *testing.T) {
	c := constant(3)
	r1, err := c.Eval(nil)
	if err != nil {
		t.Fatal(err)
	}
	r2, _ := c.Eval(nil)
	if r1 != r2 {
		t.Fatal("expected constant to memoize its result")
	}
	if r1.Value != 3 || r1.Variant != types.VariantBasic {
		t.Fatalf("unexpected result %+v", r1)
	}
	if got := constant(-2.5).String(); got != "-2.5" {
		t.Fatalf("expected -2.5, got %s", got)
	}
}

func TestInfixMemoization(t *testing.T) {
	calls = 0
	n := expr.NewInfix(addDef, constant(3), constant(2))
	if !n.Cacheable() {
		t.Fatal("expected cacheable node")
	}
	a, _ := n.Eval(nil)
	b, _ := n.Eval(nil)
	if a != b || calls != 1 {
		t.Fatalf("expected one evaluation, got %d", calls)
	}
	if a.Value != 5 || len(a.Prev) != 2 {
		t.Fatalf("unexpected result %+v", a)
	}
	if n.String() != "3+2" {
		t.Fatalf("expected 3+2, got %s", n.String())
	}
}

func TestVariableBreaksCaching(t *testing.T) {
	calls = 0
	n := expr.NewInfix(addDef, expr.NewVariable("x"), constant(1))
	if n.Cacheable() {
		t.Fatal("variables must not be cacheable")
	}
	tree := expr.NewTree(n, "$x;+1")
	a, err := tree.Eval(expr.Vars{"x": 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := tree.Eval(expr.Vars{"x": 10})
	if err != nil {
		t.Fatal(err)
	}
	if a.Value != 2 || b.Value != 11 || calls != 2 {
		t.Fatalf("expected 2 and 11 from two evaluations, got %v %v (%d calls)", a.Value, b.Value, calls)
	}
}

func TestVariable(t *testing.T) {
	v := expr.NewVariable("test")
	tree := expr.NewTree(expr.NewInfix(addDef, v, constant(3)), "$test;+3")

	r, err := tree.Eval(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(r.Value) {
		t.Fatalf("expected NaN for unbound variable, got %v", r.Value)
	}

	inner := expr.NewTree(constant(4), "4")
	r, err = tree.Eval(expr.Vars{"test": inner})
	if err != nil {
		t.Fatal(err)
	}
	if r.Value != 7 {
		t.Fatalf("expected 7, got %v", r.Value)
	}
	vr := r.Prev[0]
	if vr.Source != v || len(vr.Prev) != 1 || vr.Prev[0].Value != 4 {
		t.Fatalf("unexpected variable provenance %+v", vr)
	}

	if got := tree.String(); got != "$test;+3" {
		t.Fatalf("expected $test;+3, got %s", got)
	}
	got, err := tree.Render(expr.Vars{"test": 4})
	if err != nil {
		t.Fatal(err)
	}
	if got != "(4)+3" {
		t.Fatalf("expected (4)+3, got %s", got)
	}
}

func TestSelfReferentialVariable(t *testing.T) {
	v := expr.NewVariable("x")
	tree := expr.NewTree(v, "$x;")
	r, err := tree.Eval(expr.Vars{"x": v})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(r.Value) {
		t.Fatalf("expected NaN, got %v", r.Value)
	}
}

func TestInvalidVariable(t *testing.T) {
	tree := expr.NewTree(expr.NewVariable("x"), "$x;")
	_, err := tree.Eval(expr.Vars{"x": "four"})
	if !types.IsCode(err, types.ErrInvalidVariable) {
		t.Fatalf("expected invalid variable error, got %v", err)
	}
}

func TestVariantCheck(t *testing.T) {
	n := expr.NewPostfix(diceOnlyDef, constant(3))
	_, err := n.Eval(nil)
	if !types.IsCode(err, types.ErrOperandVariant) {
		t.Fatalf("expected operand variant error, got %v", err)
	}

	dice := expr.NewInfix(counterDef, constant(2), constant(6))
	ok := expr.NewPostfix(diceOnlyDef, dice)
	r, err := ok.Eval(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsDice() || len(r.Rolls) != 2 {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestWithCount(t *testing.T) {
	dice := expr.NewInfix(counterDef, constant(4), constant(6))
	wrapped := expr.NewPostfix(diceOnlyDef, dice)

	n, err := expr.WithCount(wrapped, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := n.String(); got != "2c6" {
		t.Fatalf("expected 2c6, got %s", got)
	}
	if dice.String() != "4c6" {
		t.Fatal("original node must not change")
	}

	if _, err := expr.WithCount(constant(3), 2); !types.IsCode(err, types.ErrNotRerollable) {
		t.Fatalf("expected not rerollable error, got %v", err)
	}
}

func TestPrefixDisplay(t *testing.T) {
	n := expr.NewPrefix(negDef, constant(3))
	if got := n.String(); got != "-3" {
		t.Fatalf("expected -3, got %s", got)
	}
	r, _ := n.Eval(nil)
	if r.Value != -3 {
		t.Fatalf("expected -3, got %v", r.Value)
	}
}

func TestTakeGroup(t *testing.T) {
	g, err := expr.NewGroup(listDef, []types.Node{constant(1), constant(2)})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []float64{1, 2} {
		r, err := g.Eval(nil)
		if err != nil {
			t.Fatal(err)
		}
		if r.Value != want {
			t.Fatalf("expected %v, got %v", want, r.Value)
		}
	}
	r, _ := g.Eval(nil)
	if !math.IsNaN(r.Value) {
		t.Fatalf("expected NaN from exhausted group, got %v", r.Value)
	}
	if g.Len() != 0 {
		t.Fatalf("expected no remaining elements, got %d", g.Len())
	}
	if got := g.String(); got != "{1, 2}" {
		t.Fatalf("expected fixed display {1, 2}, got %s", got)
	}
}

func TestGroupLimits(t *testing.T) {
	_, err := expr.NewGroup(parensDef, []types.Node{constant(1), constant(2)})
	if !types.IsCode(err, types.ErrTooManyElements) {
		t.Fatalf("expected too many elements error, got %v", err)
	}

	dice := expr.NewInfix(counterDef, constant(4), constant(6))
	g, err := expr.NewGroup(parensDef, []types.Node{dice})
	if err != nil {
		t.Fatal(err)
	}
	if g.Cacheable() {
		t.Fatal("group around dice must not be cacheable")
	}
	n, err := expr.WithCount(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n.String() != "1c6" {
		t.Fatalf("expected 1c6, got %s", n.String())
	}
}
