// Package extdice provides the dice primitives and exploding dice.
//
// Operators (precedence in parentheses):
//   - dice_basic "d" (4): NdM rolls N dice with M sides
//   - dice_fate "dF" (4): NdF rolls N fate dice with faces -1, 0 and 1
//   - dice_percentile "d%" (4): Nd% rolls N hundred-sided dice, shown as d100
//   - explode "!" (3): re-rolls every maximum face and adds the new rolls,
//     repeating until no maximum face comes up
//
// Dice primitives validate their bounds before drawing anything.
package extdice

import (
	"github.com/sandrolain/godice/pkg/ext/extutil"
	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

// Precedences of the dice operators.
const (
	PrecDice     = 4
	PrecFunction = 3
)

// All returns every dice operator definition.
func All() []*types.OperatorDef {
	return []*types.OperatorDef{Basic(), Fate(), Percentile(), Explode()}
}

// Install registers every dice operator into reg.
func Install(reg *registry.Registry) error {
	for _, def := range All() {
		if err := reg.RegisterOperator(def); err != nil {
			return err
		}
	}
	return nil
}

// Basic returns the definition of "d".
func Basic() *types.OperatorDef {
	return &types.OperatorDef{
		Name:       "dice_basic",
		Text:       "d",
		Arity:      types.Infix,
		Precedence: PrecDice,
		Roller:     true,
		Eval: func(ctx *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			l, r := operands[0], operands[1]
			return roll(ctx, node, l.Value, r.Value, l, r)
		},
	}
}

// Percentile returns the definition of "d%".
func Percentile() *types.OperatorDef {
	return &types.OperatorDef{
		Name:       "dice_percentile",
		Text:       "d%",
		Display:    "d100",
		Arity:      types.Postfix,
		Precedence: PrecDice,
		Roller:     true,
		Eval: func(ctx *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			l := operands[0]
			return roll(ctx, node, l.Value, 100, l)
		},
	}
}

// Fate returns the definition of "dF".
func Fate() *types.OperatorDef {
	return &types.OperatorDef{
		Name:       "dice_fate",
		Text:       "dF",
		Arity:      types.Postfix,
		Precedence: PrecDice,
		Roller:     true,
		Eval: func(ctx *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			l := operands[0]
			if err := extutil.CheckCount(l.Value); err != nil {
				return nil, err
			}
			low := -1
			rolls := extutil.RollFaces(ctx, int(l.Value), 3, low)
			return extutil.NewDice(node, rolls, 1, &low, l), nil
		},
	}
}

func roll(ctx *types.Context, node types.Node, count, sides float64, prev ...*types.Result) (*types.Result, error) {
	if err := extutil.CheckCount(count); err != nil {
		return nil, err
	}
	if err := extutil.CheckSides(sides); err != nil {
		return nil, err
	}
	rolls := extutil.RollFaces(ctx, int(count), int(sides), 1)
	return extutil.NewDice(node, rolls, int(sides), nil, prev...), nil
}

// Explode returns the definition of "!".
//
// Each explosion step re-instantiates the operand's die with as many dice
// as maximum faces came up in the previous step. The result keeps the
// operand's roll count, holds every roll, and lists the operand followed
// by each step's raw roll in Prev. More than 100 steps fail.
func Explode() *types.OperatorDef {
	return &types.OperatorDef{
		Name:        "explode",
		Text:        "!",
		Arity:       types.Postfix,
		Precedence:  PrecFunction,
		RequireLeft: types.VariantDice,
		Eval: func(ctx *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			l := operands[0]
			isMax := func(v int) bool { return v == l.MaxRoll }

			rolls := append([]int(nil), l.Rolls...)
			prev := []*types.Result{l}
			last := l.Rolls
			for steps := 0; ; steps++ {
				n := extutil.Count(last, isMax)
				if n == 0 {
					break
				}
				if steps >= extutil.MaxExplosions {
					return nil, types.Errorf(types.ErrExplosionLimit,
						"Exploding dice exceeded %d explosion steps", extutil.MaxExplosions)
				}
				step, err := extutil.Reroll(ctx, node, n)
				if err != nil {
					return nil, err
				}
				rolls = append(rolls, step.Rolls...)
				prev = append(prev, step)
				last = step.Rolls
			}
			return extutil.WithRolls(l, node, rolls, prev...), nil
		},
	}
}
