package parser

import "github.com/sandrolain/godice/pkg/types"

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	TokenEOF       TokenType = iota
	TokenConstant            // 3, 2.5, -2
	TokenVariable            // $name or $name;
	TokenOpen                // any registered opening delimiter
	TokenClose               // any registered closing delimiter
	TokenSeparator           // ,
	TokenOperator            // any registered operator text
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenConstant:
		return "(constant)"
	case TokenVariable:
		return "(variable)"
	case TokenOpen:
		return "(open)"
	case TokenClose:
		return "(close)"
	case TokenSeparator:
		return ","
	case TokenOperator:
		return "(operator)"
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token in dice notation.
type Token struct {
	Type     TokenType // Type of the token
	Value    string    // Literal text of the token
	Position int       // Starting position in the input string

	Number   float64            // Parsed value of a TokenConstant
	Name     string             // Variable name of a TokenVariable
	Operator *types.OperatorDef // Definition matched by a TokenOperator
	Group    *types.GroupDef    // Group opened or closed by a TokenOpen/TokenClose
}

// producesValue reports whether the token ends a value: a constant,
// a variable, a closing delimiter or a postfix operator.
func (t Token) producesValue() bool {
	switch t.Type {
	case TokenConstant, TokenVariable, TokenClose:
		return true
	case TokenOperator:
		return t.Operator != nil && t.Operator.Arity == types.Postfix
	default:
		return false
	}
}

// startsValue reports whether the token begins a value.
func (t Token) startsValue() bool {
	switch t.Type {
	case TokenConstant, TokenVariable, TokenOpen:
		return true
	default:
		return false
	}
}
