// Package godice provides an embeddable dice notation engine.
//
// Dice notation is a small expression language for randomized numeric
// computations used in tabletop game automation, such as "4d6kh3" or
// "1d20+5 dc15". Notation is parsed into an expression tree that can be
// evaluated many times; every evaluation returns the total together with
// the full provenance of every sub-roll.
//
// # Quick Start
//
//	// Parse once, roll many times
//	tree, err := godice.Parse("4d6kh3")
//	res, _ := tree.Eval(nil)
//	fmt.Println(res.Value, res.Rolls)
//
//	// One-shot with variables and a reproducible seed
//	res, err := godice.Roll("1d20+$str; dc15", godice.Vars{"str": 3},
//	    expr.WithSeed(42),
//	)
//
// # Extending the language
//
// Operators and groups are data: RegisterOperator and RegisterGroup add
// new notation to the default registry without touching the parser.
// Registration must happen before the notation is parsed.
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/godice/pkg/parser
//   - Expression tree: github.com/sandrolain/godice/pkg/expr
//   - Registry: github.com/sandrolain/godice/pkg/registry
//   - Built-in semantics: github.com/sandrolain/godice/pkg/ext
//   - Types: github.com/sandrolain/godice/pkg/types
package godice

import (
	"fmt"

	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/ext"
	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

// Tree is a parsed expression.
type Tree = expr.Tree

// Vars binds variable names to numbers, nodes or trees.
type Vars = expr.Vars

// Result is the value and provenance of an evaluation.
type Result = types.Result

// Version returns the current version of godice.
func Version() string {
	return "v0.1.0-dev"
}

// Parse parses a single expression against the default registry.
//
// Example:
//
//	tree, err := godice.Parse("2d6!+3")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Parse(notation string, opts ...parser.Option) (*Tree, error) {
	return parser.Parse(notation, opts...)
}

// ParseList parses comma-separated expressions, e.g. "1d20adv, 1d20dis".
func ParseList(notation string, opts ...parser.Option) ([]*Tree, error) {
	return parser.ParseList(notation, opts...)
}

// MustParse is like Parse but panics if the notation cannot be parsed.
// It simplifies safe initialization of global variables.
func MustParse(notation string) *Tree {
	tree, err := Parse(notation)
	if err != nil {
		panic(fmt.Sprintf("godice: Parse(%q): %v", notation, err))
	}
	return tree
}

// Roll is a convenience function that parses and evaluates notation in a
// single call.
//
// For repeated rolls of the same notation, use Parse instead.
func Roll(notation string, vars Vars, opts ...expr.EvalOption) (*Result, error) {
	tree, err := Parse(notation)
	if err != nil {
		return nil, err
	}
	return tree.Eval(vars, opts...)
}

// Registry returns the default registry with every built-in definition.
func Registry() *registry.Registry {
	return registry.Default()
}

// RegisterOperator adds an operator to the default registry.
func RegisterOperator(def *types.OperatorDef, opts ...registry.RegisterOption) error {
	return Registry().RegisterOperator(def, opts...)
}

// RegisterGroup adds a group to the default registry.
func RegisterGroup(def *types.GroupDef, opts ...registry.RegisterOption) error {
	return Registry().RegisterGroup(def, opts...)
}

// NewRegistry returns a fresh registry holding every built-in definition,
// for callers that want to extend the language without touching the
// process-wide default.
func NewRegistry() (*registry.Registry, error) {
	return ext.NewRegistry()
}
