// Package extutil provides shared helpers for the ext sub-packages.
package extutil

import (
	"math"

	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/types"
)

// Dice limits enforced before any random draw.
const (
	MaxDice       = 1_000_000
	MaxExplosions = 100
)

// Int converts an operand value to an int, truncating toward zero.
// NaN converts to 0.
func Int(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int(v)
}

// CheckCount validates a dice count.
func CheckCount(count float64) error {
	switch {
	case count > MaxDice:
		return types.Errorf(types.ErrDiceCount, "Cannot roll more than 1,000,000 dice at once")
	case !(count >= 1):
		return types.Errorf(types.ErrDiceCount, "Cannot roll less than 1 die")
	case count != math.Trunc(count):
		return types.Errorf(types.ErrDiceCount, "Cannot roll a fractional number of dice (%v)", count)
	}
	return nil
}

// CheckSides validates the number of sides of a die.
func CheckSides(sides float64) error {
	switch {
	case !(sides >= 2):
		return types.Errorf(types.ErrDiceSides, "Cannot roll a die with less than 2 sides")
	case sides != math.Trunc(sides) || sides > math.MaxInt32:
		return types.Errorf(types.ErrDiceSides, "Cannot roll a die with %v sides", sides)
	}
	return nil
}

// RollFaces draws count values uniformly from [low, low+faces).
func RollFaces(ctx *types.Context, count, faces, low int) []int {
	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = ctx.IntN(faces) + low
	}
	return rolls
}

// NewDice creates a dice result whose value is the sum of rolls.
func NewDice(source types.Node, rolls []int, maxRoll int, minRoll *int, prev ...*types.Result) *types.Result {
	return &types.Result{
		Source:    source,
		Value:     types.Sum(rolls),
		Prev:      prev,
		Variant:   types.VariantDice,
		Rolls:     rolls,
		RollCount: len(rolls),
		MaxRoll:   maxRoll,
		MinRoll:   minRoll,
	}
}

// WithRolls derives r for source with rolls replaced and the value
// recomputed from them.
func WithRolls(r *types.Result, source types.Node, rolls []int, prev ...*types.Result) *types.Result {
	out := r.Derive(source)
	out.Rolls = rolls
	out.Value = types.Sum(rolls)
	out.Prev = prev
	return out
}

// RemoveLowest returns a copy of rolls without its n lowest values.
// Ties go to the first value encountered; survivors keep their order.
func RemoveLowest(rolls []int, n int) []int {
	return removeExtremes(rolls, n, func(a, b int) bool { return a < b })
}

// RemoveHighest returns a copy of rolls without its n highest values.
// Ties go to the first value encountered; survivors keep their order.
func RemoveHighest(rolls []int, n int) []int {
	return removeExtremes(rolls, n, func(a, b int) bool { return a > b })
}

func removeExtremes(rolls []int, n int, better func(a, b int) bool) []int {
	n = min(max(n, 0), len(rolls))
	removed := make([]bool, len(rolls))
	for range n {
		at := -1
		for i, v := range rolls {
			if removed[i] {
				continue
			}
			if at < 0 || better(v, rolls[at]) {
				at = i
			}
		}
		removed[at] = true
	}
	out := make([]int, 0, len(rolls)-n)
	for i, v := range rolls {
		if !removed[i] {
			out = append(out, v)
		}
	}
	return out
}

// Filter returns the rolls for which keep returns true, in order.
func Filter(rolls []int, keep func(int) bool) []int {
	out := make([]int, 0, len(rolls))
	for _, v := range rolls {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Count returns how many rolls satisfy pred.
func Count(rolls []int, pred func(int) bool) int {
	n := 0
	for _, v := range rolls {
		if pred(v) {
			n++
		}
	}
	return n
}

// Reroll re-instantiates the die behind node with count dice and rolls it.
// The result must carry dice.
func Reroll(ctx *types.Context, node types.Node, count int) (*types.Result, error) {
	die, err := expr.WithCount(node, count)
	if err != nil {
		return nil, err
	}
	r, err := die.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if !r.IsDice() {
		return nil, types.Errorf(types.ErrNotRerollable, "Re-rolling %s did not produce dice", die)
	}
	return r, nil
}
