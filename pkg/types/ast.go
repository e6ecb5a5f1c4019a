package types

// ASTKind identifies the kind of a collapsed AST node.
type ASTKind uint8

// AST node kinds.
const (
	ASTConstant ASTKind = iota + 1
	ASTVariable
	ASTGroup
	ASTOperator
)

// String returns the kind name.
func (k ASTKind) String() string {
	switch k {
	case ASTConstant:
		return "constant"
	case ASTVariable:
		return "variable"
	case ASTGroup:
		return "group"
	case ASTOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// ASTNode is the single token a (sub)expression collapses into.
// AST nodes are never modified after collapsing, so they can be shared
// between parses.
type ASTNode struct {
	Kind     ASTKind
	Position int

	Value float64 // ASTConstant
	Name  string  // ASTVariable

	Group    *GroupDef  // ASTGroup
	Elements []*ASTNode // ASTGroup

	Operator *OperatorDef // ASTOperator
	Left     *ASTNode     // ASTOperator (infix, postfix)
	Right    *ASTNode     // ASTOperator (infix, prefix)
}
