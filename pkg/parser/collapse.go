package parser

import (
	"fmt"

	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

// item is one entry of the list being collapsed: either a bound AST node
// or an operator token still waiting for its operands.
type item struct {
	node *types.ASTNode
	tok  Token
}

func (it item) bound() bool { return it.node != nil }

// Collapse reduces a token list to a single AST node.
//
// Groups are collapsed first, each element recursively. Operators are then
// folded one precedence level at a time, highest first, left to right
// within a level. Only registry information is used: no operator is
// special-cased. source is the full notation, quoted in error messages.
func Collapse(tokens []Token, table *registry.Table, source string) (*types.ASTNode, error) {
	c := collapser{table: table, precs: table.Precedences(), source: source}
	return c.collapse(tokens, 0)
}

type collapser struct {
	table  *registry.Table
	precs  []int
	source string
}

func (c *collapser) collapse(tokens []Token, pos int) (*types.ASTNode, error) {
	if len(tokens) == 0 {
		return nil, types.NewError(types.ErrEmptyExpression, "Cannot parse empty expression", pos)
	}

	items, err := c.bracketPass(tokens)
	if err != nil {
		return nil, err
	}
	if items, err = c.operatorPasses(items); err != nil {
		return nil, err
	}

	if len(items) != 1 || !items[0].bound() {
		return nil, types.NewError(types.ErrUnreducedExpression,
			fmt.Sprintf("Could not reduce %s to a single expression", c.source), tokens[0].Position)
	}
	return items[0].node, nil
}

// bracketPass replaces every delimited span with a single group item.
// Nesting depth is tracked for the opening token's own group only, so
// mismatched pairs surface as unmatched delimiters.
func (c *collapser) bracketPass(tokens []Token) ([]item, error) {
	items := make([]item, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch t.Type {
		case TokenConstant:
			items = append(items, item{node: &types.ASTNode{Kind: types.ASTConstant, Value: t.Number, Position: t.Position}})
		case TokenVariable:
			items = append(items, item{node: &types.ASTNode{Kind: types.ASTVariable, Name: t.Name, Position: t.Position}})
		case TokenOperator:
			items = append(items, item{tok: t})
		case TokenSeparator:
			return nil, types.NewError(types.ErrUnexpectedToken,
				fmt.Sprintf("Unexpected token %s when parsing %s", t.Value, c.source), t.Position).WithToken(t.Value)
		case TokenClose:
			return nil, types.NewError(types.ErrUnmatchedDelimiter,
				fmt.Sprintf("Unexpected token %s when parsing %s", t.Value, c.source), t.Position).WithToken(t.Value)
		case TokenOpen:
			end := matchClose(tokens, i)
			if end < 0 {
				return nil, types.NewError(types.ErrUnmatchedDelimiter,
					fmt.Sprintf("Unexpected EOF when parsing %s; expected %s", t.Group.Open, t.Group.Close), t.Position).WithToken(t.Value)
			}
			elements, err := c.elements(tokens[i+1:end], t.Position+len(t.Value))
			if err != nil {
				return nil, err
			}
			items = append(items, item{node: &types.ASTNode{
				Kind:     types.ASTGroup,
				Group:    t.Group,
				Elements: elements,
				Position: t.Position,
			}})
			i = end
		}
	}
	return items, nil
}

// matchClose returns the index of the token closing the group opened at
// tokens[open], or -1.
func matchClose(tokens []Token, open int) int {
	g := tokens[open].Group
	depth := 0
	for j := open; j < len(tokens); j++ {
		switch {
		case tokens[j].Type == TokenOpen && tokens[j].Group == g:
			depth++
		case tokens[j].Type == TokenClose && tokens[j].Group == g:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// elements splits group contents at separators outside any nested group
// and collapses each element.
func (c *collapser) elements(tokens []Token, pos int) ([]*types.ASTNode, error) {
	var out []*types.ASTNode
	for _, seg := range splitTopLevel(tokens) {
		p := pos
		if len(seg.tokens) > 0 {
			p = seg.tokens[0].Position
		} else if seg.sep >= 0 {
			p = seg.sep
		}
		n, err := c.collapse(seg.tokens, p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

type segment struct {
	tokens []Token
	sep    int // position of the separator ending the segment, or -1
}

// splitTopLevel splits tokens at separators at nesting depth 0.
// An empty token list yields a single empty segment.
func splitTopLevel(tokens []Token) []segment {
	var segs []segment
	depth, start := 0, 0
	for i, t := range tokens {
		switch t.Type {
		case TokenOpen:
			depth++
		case TokenClose:
			depth--
		case TokenSeparator:
			if depth == 0 {
				segs = append(segs, segment{tokens: tokens[start:i], sep: t.Position})
				start = i + 1
			}
		}
	}
	return append(segs, segment{tokens: tokens[start:], sep: -1})
}

// operatorPasses folds operators from the highest precedence to the
// lowest. Each level is scanned from the start, left to right, so
// operators sharing a precedence always bind left-associatively.
func (c *collapser) operatorPasses(items []item) ([]item, error) {
	for _, prec := range c.precs {
		for i := 0; i < len(items); {
			it := items[i]
			if it.bound() || it.tok.Operator.Precedence != prec {
				i++
				continue
			}
			op := it.tok.Operator
			node := &types.ASTNode{Kind: types.ASTOperator, Operator: op, Position: it.tok.Position}

			switch op.Arity {
			case types.Prefix:
				right, err := c.operand(items, i+1, op, it.tok, "right")
				if err != nil {
					return nil, err
				}
				node.Right = right
				items = splice(items, i, i+2, node)
				i++
			case types.Postfix:
				left, err := c.operand(items, i-1, op, it.tok, "left")
				if err != nil {
					return nil, err
				}
				node.Left = left
				items = splice(items, i-1, i+1, node)
			case types.Infix:
				left, err := c.operand(items, i-1, op, it.tok, "left")
				if err != nil {
					return nil, err
				}
				right, err := c.operand(items, i+1, op, it.tok, "right")
				if err != nil {
					return nil, err
				}
				node.Left, node.Right = left, right
				items = splice(items, i-1, i+2, node)
			}
		}
	}
	return items, nil
}

func (c *collapser) operand(items []item, j int, op *types.OperatorDef, tok Token, side string) (*types.ASTNode, error) {
	if j < 0 || j >= len(items) || !items[j].bound() {
		return nil, types.NewError(types.ErrMissingOperand,
			fmt.Sprintf("Expected %s-hand argument to operator %s", side, op.Text), tok.Position).WithToken(tok.Value)
	}
	return items[j].node, nil
}

// splice replaces items[from:to] with a single bound node.
func splice(items []item, from, to int, node *types.ASTNode) []item {
	out := append(items[:from:from], item{node: node})
	return append(out, items[to:]...)
}
