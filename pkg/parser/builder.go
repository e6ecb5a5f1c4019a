package parser

import (
	"errors"
	"fmt"

	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/types"
)

// Build converts a collapsed AST into expression tree nodes.
// Each call returns fresh nodes, so trees built from a shared AST never
// share memoized results or take-list state.
func Build(ast *types.ASTNode) (types.Node, error) {
	switch ast.Kind {
	case types.ASTConstant:
		return expr.NewConstant(ast.Value), nil

	case types.ASTVariable:
		return expr.NewVariable(ast.Name), nil

	case types.ASTGroup:
		elements := make([]types.Node, 0, len(ast.Elements))
		for _, e := range ast.Elements {
			n, err := Build(e)
			if err != nil {
				return nil, err
			}
			elements = append(elements, n)
		}
		g, err := expr.NewGroup(ast.Group, elements)
		if err != nil {
			return nil, atPosition(err, ast.Position)
		}
		return g, nil

	case types.ASTOperator:
		return buildOperator(ast)

	default:
		return nil, types.NewError(types.ErrUnreducedExpression,
			fmt.Sprintf("Unknown AST node kind %s", ast.Kind), ast.Position)
	}
}

func buildOperator(ast *types.ASTNode) (types.Node, error) {
	var left, right types.Node
	var err error
	if ast.Left != nil {
		if left, err = Build(ast.Left); err != nil {
			return nil, err
		}
	}
	if ast.Right != nil {
		if right, err = Build(ast.Right); err != nil {
			return nil, err
		}
	}

	switch ast.Operator.Arity {
	case types.Prefix:
		return expr.NewPrefix(ast.Operator, right), nil
	case types.Postfix:
		return expr.NewPostfix(ast.Operator, left), nil
	default:
		return expr.NewInfix(ast.Operator, left, right), nil
	}
}

func atPosition(err error, pos int) error {
	var e *types.Error
	if errors.As(err, &e) && e.Position < 0 {
		e.Position = pos
	}
	return err
}
