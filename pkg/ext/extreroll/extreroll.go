// Package extreroll provides the reroll operators.
//
// Operators, all at precedence 3 with a dice left operand:
//   - reroll_high "rh": rerolls the N highest rolls
//   - reroll_low "rl": rerolls the N lowest rolls
//   - reroll_above "r>": rerolls rolls greater than or equal to N
//   - reroll_below "r<": rerolls rolls less than or equal to N
//   - reroll_above_rec "r!>": repeats r> until no roll is N or more
//   - reroll_below_rec "r!<": repeats r< until no roll is N or less
//
// Rerolled dice come from a fresh instance of the operand's die. Surviving
// rolls keep their order and the fresh rolls follow them.
package extreroll

import (
	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/ext/extutil"
	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

// Precedence of the reroll operators.
const Precedence = 3

// Selector returns the rolls that survive, that is the rolls not rerolled.
type Selector func(rolls []int, v float64) []int

var (
	keepBelow = func(rolls []int, v float64) []int {
		return extutil.Filter(rolls, func(n int) bool { return float64(n) < v })
	}
	keepAbove = func(rolls []int, v float64) []int {
		return extutil.Filter(rolls, func(n int) bool { return float64(n) > v })
	}
)

// All returns every reroll operator definition.
func All() []*types.OperatorDef {
	return []*types.OperatorDef{
		New("reroll_high", "rh", func(rolls []int, v float64) []int {
			return extutil.RemoveHighest(rolls, extutil.Int(v))
		}),
		New("reroll_low", "rl", func(rolls []int, v float64) []int {
			return extutil.RemoveLowest(rolls, extutil.Int(v))
		}),
		New("reroll_above", "r>", keepBelow),
		New("reroll_below", "r<", keepAbove),
		NewRecursive("reroll_above_rec", "r!>", keepBelow, aboveSatisfiable),
		NewRecursive("reroll_below_rec", "r!<", keepAbove, belowSatisfiable),
	}
}

// Install registers every reroll operator into reg.
func Install(reg *registry.Registry) error {
	for _, def := range All() {
		if err := reg.RegisterOperator(def); err != nil {
			return err
		}
	}
	return nil
}

// New builds a single-pass reroll operator from a selector.
func New(name, text string, keep Selector) *types.OperatorDef {
	return &types.OperatorDef{
		Name:        name,
		Text:        text,
		Arity:       types.Infix,
		Precedence:  Precedence,
		RequireLeft: types.VariantDice,
		Eval: func(ctx *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			return step(ctx, node, keep, operands[0], operands[1])
		},
	}
}

// Satisfiable reports whether a die with the given lowest and highest
// faces can ever produce a roll that survives threshold v.
type Satisfiable func(low, high int, v float64) bool

func aboveSatisfiable(low, _ int, v float64) bool { return float64(low) < v }

func belowSatisfiable(_, high int, v float64) bool { return float64(high) > v }

// NewRecursive builds a reroll operator that repeats its step until every
// roll survives. Each iteration takes the previous iteration's result as
// input and links only to it in Prev.
//
// There is no iteration limit. A threshold no face of the die can survive
// is rejected before rolling.
func NewRecursive(name, text string, keep Selector, ok Satisfiable) *types.OperatorDef {
	return &types.OperatorDef{
		Name:        name,
		Text:        text,
		Arity:       types.Infix,
		Precedence:  Precedence,
		RequireLeft: types.VariantDice,
		Eval: func(ctx *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			l, r := operands[0], operands[1]
			if len(keep(l.Rolls, r.Value)) < len(l.Rolls) && !ok(l.LowestFace(), l.MaxRoll, r.Value) {
				return nil, types.Errorf(types.ErrUnsatisfiableReroll,
					"Cannot apply %s%s to %s: no face of the die survives", text, expr.FormatNumber(r.Value), l.Source)
			}
			cur := l
			for {
				next, err := step(ctx, node, keep, cur, r)
				if err != nil {
					return nil, err
				}
				cur = next
				if len(keep(cur.Rolls, r.Value)) == len(cur.Rolls) {
					return cur, nil
				}
			}
		},
	}
}

// step rerolls the victims of one pass. With no victims it still records
// provenance.
func step(ctx *types.Context, node types.Node, keep Selector, l, r *types.Result) (*types.Result, error) {
	kept := keep(l.Rolls, r.Value)
	victims := len(l.Rolls) - len(kept)
	if victims == 0 {
		out := l.Derive(node)
		out.Prev = []*types.Result{l, r}
		return out, nil
	}
	fresh, err := extutil.Reroll(ctx, node, victims)
	if err != nil {
		return nil, err
	}
	rolls := append(kept, fresh.Rolls...)
	return extutil.WithRolls(l, node, rolls, l, r), nil
}
