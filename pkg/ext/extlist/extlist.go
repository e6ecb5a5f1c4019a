// Package extlist provides the grouping constructs.
//
// Groups:
//   - parens "( )": a single element, evaluated transparently: the result
//     keeps the element's value, variant and rolls
//   - rand_from_list "[ ]": picks one element uniformly on every evaluation
//   - take_from_list "{ }": picks one remaining element uniformly and removes
//     it, so repeated evaluation of the same tree exhausts the list;
//     an exhausted list evaluates to NaN
package extlist

import (
	"math"

	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

// All returns every group definition.
func All() []*types.GroupDef {
	return []*types.GroupDef{Parens(), RandFromList(), TakeFromList()}
}

// Install registers every group into reg.
func Install(reg *registry.Registry) error {
	for _, def := range All() {
		if err := reg.RegisterGroup(def); err != nil {
			return err
		}
	}
	return nil
}

// Parens returns the definition of "( )".
func Parens() *types.GroupDef {
	return &types.GroupDef{
		Name:        "parens",
		Open:        "(",
		Close:       ")",
		MaxElements: 1,
		Cacheable:   true,
		Eval: func(_ *types.Context, node types.Node, elements []*types.Result) (*types.Result, error) {
			if len(elements) == 0 {
				return types.NewBasic(node, math.NaN()), nil
			}
			e := elements[0]
			out := e.Derive(node)
			out.Prev = []*types.Result{e}
			return out, nil
		},
	}
}

// RandFromList returns the definition of "[ ]".
func RandFromList() *types.GroupDef {
	return &types.GroupDef{
		Name:  "rand_from_list",
		Open:  "[",
		Close: "]",
		Eval: func(ctx *types.Context, node types.Node, elements []*types.Result) (*types.Result, error) {
			if len(elements) == 0 {
				return types.NewBasic(node, math.NaN()), nil
			}
			sel := elements[ctx.IntN(len(elements))]
			return types.NewBasic(node, sel.Value, sel), nil
		},
	}
}

// TakeFromList returns the definition of "{ }".
// The group keeps rendering every element it was built with.
func TakeFromList() *types.GroupDef {
	return &types.GroupDef{
		Name:         "take_from_list",
		Open:         "{",
		Close:        "}",
		FixedDisplay: true,
		Eval: func(ctx *types.Context, node types.Node, elements []*types.Result) (*types.Result, error) {
			if len(elements) == 0 {
				return types.NewBasic(node, math.NaN()), nil
			}
			i := ctx.IntN(len(elements))
			if rm, ok := node.(types.ElementRemover); ok {
				rm.RemoveElement(i)
			}
			sel := elements[i]
			return types.NewBasic(node, sel.Value, sel), nil
		},
	}
}
