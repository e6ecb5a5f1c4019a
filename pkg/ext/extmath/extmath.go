// Package extmath provides the arithmetic operators.
//
// Operators (precedence in parentheses):
//   - add "+", sub "-" (0)
//   - mul_* "*", mul_x "x", div "/", mod "%" (1)
//   - pow "^" (2)
//
// All are cacheable and accept operands of any variant; results are basic.
// Division floors the real quotient. Division and modulo by zero yield NaN.
package extmath

import (
	"math"

	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

// Precedences of the arithmetic operators.
const (
	PrecAdditive       = 0
	PrecMultiplicative = 1
	PrecPower          = 2
)

// All returns every arithmetic operator definition.
func All() []*types.OperatorDef {
	return []*types.OperatorDef{
		Add(), Sub(), Mul(), MulX(), Div(), Mod(), Pow(),
	}
}

// Install registers every arithmetic operator into reg.
func Install(reg *registry.Registry) error {
	for _, def := range All() {
		if err := reg.RegisterOperator(def); err != nil {
			return err
		}
	}
	return nil
}

// Add returns the definition of "+".
func Add() *types.OperatorDef {
	return binary("add", "+", PrecAdditive, func(l, r float64) float64 { return l + r })
}

// Sub returns the definition of "-".
func Sub() *types.OperatorDef {
	return binary("sub", "-", PrecAdditive, func(l, r float64) float64 { return l - r })
}

// Mul returns the definition of "*".
func Mul() *types.OperatorDef {
	return binary("mul_*", "*", PrecMultiplicative, multiply)
}

// MulX returns the definition of "x", a synonym of "*".
func MulX() *types.OperatorDef {
	return binary("mul_x", "x", PrecMultiplicative, multiply)
}

// Div returns the definition of "/".
func Div() *types.OperatorDef {
	return binary("div", "/", PrecMultiplicative, func(l, r float64) float64 {
		if r == 0 {
			return math.NaN()
		}
		return math.Floor(l / r)
	})
}

// Mod returns the definition of "%".
// The result takes the sign of the dividend.
func Mod() *types.OperatorDef {
	return binary("mod", "%", PrecMultiplicative, func(l, r float64) float64 {
		if r == 0 {
			return math.NaN()
		}
		return math.Mod(l, r)
	})
}

// Pow returns the definition of "^".
func Pow() *types.OperatorDef {
	return binary("pow", "^", PrecPower, math.Pow)
}

func multiply(l, r float64) float64 { return l * r }

func binary(name, text string, prec int, fn func(l, r float64) float64) *types.OperatorDef {
	return &types.OperatorDef{
		Name:       name,
		Text:       text,
		Arity:      types.Infix,
		Precedence: prec,
		Cacheable:  true,
		Eval: func(_ *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			l, r := operands[0], operands[1]
			return types.NewBasic(node, fn(l.Value, r.Value), l, r), nil
		},
	}
}
