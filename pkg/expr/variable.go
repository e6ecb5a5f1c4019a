package expr

import (
	"math"

	"github.com/sandrolain/godice/pkg/types"
)

// Variable references a value bound in the evaluation context.
// Variables are never cacheable.
type Variable struct {
	Name string
}

// NewVariable creates a variable node.
func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

// Eval implements types.Node.
// An unbound variable evaluates to NaN.
func (v *Variable) Eval(ctx *types.Context) (*types.Result, error) {
	bound, ok := ctx.Lookup(v.Name)
	if !ok {
		return types.NewBasic(v, math.NaN()), nil
	}
	r, err := bound.Eval(without(ctx, v.Name))
	if err != nil {
		return nil, err
	}
	return types.NewBasic(v, r.Value, r), nil
}

// Render implements types.Node.
// A bound variable renders its bound expression in parentheses.
func (v *Variable) Render(ctx *types.Context) string {
	if bound, ok := ctx.Lookup(v.Name); ok {
		return "(" + bound.Render(without(ctx, v.Name)) + ")"
	}
	return v.String()
}

// String implements types.Node.
func (v *Variable) String() string {
	return "$" + v.Name + ";"
}

// Cacheable implements types.Node.
func (v *Variable) Cacheable() bool { return false }

// without returns ctx minus the binding for name, so that a bound
// expression referencing its own name cannot recurse forever.
func without(ctx *types.Context, name string) *types.Context {
	vars := make(map[string]types.Node, len(ctx.Vars))
	for k, n := range ctx.Vars {
		if k != name {
			vars[k] = n
		}
	}
	return &types.Context{Vars: vars, Rand: ctx.Rand, Logger: ctx.Logger}
}
