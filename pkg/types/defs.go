package types

// Arity is the operand layout of an operator.
type Arity uint8

const (
	// Prefix operators take the operand on their right.
	Prefix Arity = iota + 1
	// Postfix operators take the operand on their left.
	Postfix
	// Infix operators take operands on both sides.
	Infix
)

// String returns the arity name.
func (a Arity) String() string {
	switch a {
	case Prefix:
		return "prefix"
	case Postfix:
		return "postfix"
	case Infix:
		return "infix"
	default:
		return "unknown"
	}
}

// OperatorFunc evaluates an operator application.
// node is the tree node being evaluated; operands are in source order.
type OperatorFunc func(ctx *Context, node Node, operands ...*Result) (*Result, error)

// GroupFunc evaluates a group. elements holds the results of the
// group's remaining elements in order.
type GroupFunc func(ctx *Context, node Node, elements []*Result) (*Result, error)

// OperatorDef describes a registered operator.
type OperatorDef struct {
	// Name is the unique registry key.
	Name string
	// Text is the token matched by the lexer, case-insensitively.
	Text string
	// Display overrides Text when rendering.
	Display    string
	Arity      Arity
	Precedence int
	// Cacheable allows nodes of this operator to memoize their first result
	// when all operands are cacheable too.
	Cacheable bool
	// Roller marks dice primitives whose count operand can be replaced to
	// re-instantiate the die.
	Roller bool
	// RequireLeft and RequireRight constrain operand variants.
	RequireLeft  Variant
	RequireRight Variant
	Eval         OperatorFunc
}

// RenderText returns the text used when rendering the operator.
func (d *OperatorDef) RenderText() string {
	if d.Display != "" {
		return d.Display
	}
	return d.Text
}

// GroupDef describes a registered grouping construct.
type GroupDef struct {
	Name  string
	Open  string
	Close string
	// MaxElements caps the element count; 0 means unbounded.
	MaxElements int
	Require     Variant
	Cacheable   bool
	// FixedDisplay renders the group as built, even after elements are removed.
	FixedDisplay bool
	Eval         GroupFunc
}
