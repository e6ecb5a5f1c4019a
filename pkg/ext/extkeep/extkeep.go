// Package extkeep provides the keep operators.
//
// Operators, all at precedence 3 with a dice left operand:
//   - keep_high "kh": keeps the N highest rolls
//   - keep_low "kl": keeps the N lowest rolls
//   - keep_above "k>": keeps rolls greater than or equal to N
//   - keep_below "k<": keeps rolls less than or equal to N
//
// Kept rolls stay in their original order.
package extkeep

import (
	"github.com/sandrolain/godice/pkg/ext/extutil"
	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

// Precedence of the keep operators.
const Precedence = 3

// Selector returns the rolls to keep given the operator's right operand.
type Selector func(rolls []int, v float64) []int

// All returns every keep operator definition.
func All() []*types.OperatorDef {
	return []*types.OperatorDef{
		New("keep_high", "kh", func(rolls []int, v float64) []int {
			return extutil.RemoveLowest(rolls, len(rolls)-extutil.Int(v))
		}),
		New("keep_low", "kl", func(rolls []int, v float64) []int {
			return extutil.RemoveHighest(rolls, len(rolls)-extutil.Int(v))
		}),
		New("keep_above", "k>", func(rolls []int, v float64) []int {
			return extutil.Filter(rolls, func(n int) bool { return float64(n) >= v })
		}),
		New("keep_below", "k<", func(rolls []int, v float64) []int {
			return extutil.Filter(rolls, func(n int) bool { return float64(n) <= v })
		}),
	}
}

// Install registers every keep operator into reg.
func Install(reg *registry.Registry) error {
	for _, def := range All() {
		if err := reg.RegisterOperator(def); err != nil {
			return err
		}
	}
	return nil
}

// New builds a keep operator from a selector.
func New(name, text string, keep Selector) *types.OperatorDef {
	return &types.OperatorDef{
		Name:        name,
		Text:        text,
		Arity:       types.Infix,
		Precedence:  Precedence,
		RequireLeft: types.VariantDice,
		Eval: func(_ *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			l, r := operands[0], operands[1]
			return extutil.WithRolls(l, node, keep(l.Rolls, r.Value), l, r), nil
		},
	}
}
