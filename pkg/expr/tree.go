// Package expr implements the expression tree that parsed dice notation
// evaluates through.
//
// A tree is built once and may be evaluated many times. Cacheable nodes
// (constants, and operator applications whose definition and operands are
// all cacheable) memoize their first result. Take-list groups remove the
// element they select. Both are per-node state, so a single Tree must not
// be evaluated from several goroutines at once; distinct trees are
// independent.
//
// # Example
//
//	tree, _ := parser.Parse("$str;d20+5 dc15")
//	res, err := tree.Eval(expr.Vars{"str": 1})
package expr

import (
	"fmt"
	"log/slog"

	"github.com/sandrolain/godice/pkg/random"
	"github.com/sandrolain/godice/pkg/types"
)

// Vars binds variable names to values for one evaluation.
// Values may be a types.Node, a *Tree, or any Go integer or float type.
type Vars map[string]any

// Tree is a built expression together with the notation it came from.
type Tree struct {
	Root   types.Node
	Source string
}

// NewTree wraps a root node.
func NewTree(root types.Node, source string) *Tree {
	return &Tree{Root: root, Source: source}
}

// EvalOptions configures an evaluation.
type EvalOptions struct {
	// Rand is the source dice draw from. Defaults to random.Default().
	Rand types.RandSource
	// Logger for structured logging.
	Logger *slog.Logger
}

// EvalOption configures an evaluation.
type EvalOption func(*EvalOptions)

// WithRand sets the random source.
func WithRand(src types.RandSource) EvalOption {
	return func(opts *EvalOptions) {
		opts.Rand = src
	}
}

// WithSeed uses a reproducible source seeded with seed.
func WithSeed(seed uint64) EvalOption {
	return func(opts *EvalOptions) {
		opts.Rand = random.NewSeeded(seed)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// NewContext builds an evaluation context from vars and options.
func NewContext(vars Vars, opts ...EvalOption) (*types.Context, error) {
	options := EvalOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Rand == nil {
		options.Rand = random.Default()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	bound, err := BindVars(vars)
	if err != nil {
		return nil, err
	}
	return &types.Context{
		Vars:   bound,
		Rand:   options.Rand,
		Logger: options.Logger,
	}, nil
}

// BindVars converts vars to nodes. Numbers are wrapped as constants.
func BindVars(vars Vars) (map[string]types.Node, error) {
	bound := make(map[string]types.Node, len(vars))
	for name, v := range vars {
		n, err := toNode(v)
		if err != nil {
			return nil, types.Errorf(types.ErrInvalidVariable, "Variable %s: %v", name, err).WithToken(name)
		}
		bound[name] = n
	}
	return bound, nil
}

func toNode(v any) (types.Node, error) {
	switch x := v.(type) {
	case *Tree:
		return x.Root, nil
	case types.Node:
		return x, nil
	case float64:
		return NewConstant(x), nil
	case float32:
		return NewConstant(float64(x)), nil
	case int:
		return NewConstant(float64(x)), nil
	case int8:
		return NewConstant(float64(x)), nil
	case int16:
		return NewConstant(float64(x)), nil
	case int32:
		return NewConstant(float64(x)), nil
	case int64:
		return NewConstant(float64(x)), nil
	case uint:
		return NewConstant(float64(x)), nil
	case uint8:
		return NewConstant(float64(x)), nil
	case uint16:
		return NewConstant(float64(x)), nil
	case uint32:
		return NewConstant(float64(x)), nil
	case uint64:
		return NewConstant(float64(x)), nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// Eval evaluates the tree with the given variable bindings.
func (t *Tree) Eval(vars Vars, opts ...EvalOption) (*types.Result, error) {
	ctx, err := NewContext(vars, opts...)
	if err != nil {
		return nil, err
	}
	return t.EvalContext(ctx)
}

// EvalContext evaluates the tree with a prepared context.
func (t *Tree) EvalContext(ctx *types.Context) (*types.Result, error) {
	r, err := t.Root.Eval(ctx)
	if err != nil {
		ctx.Log().Debug("evaluation failed", slog.String("notation", t.Source), slog.Any("error", err))
		return nil, err
	}
	return r, nil
}

// String re-renders the notation.
func (t *Tree) String() string {
	return t.Root.String()
}

// Render re-renders the notation with bound variables substituted in
// parentheses.
func (t *Tree) Render(vars Vars) (string, error) {
	bound, err := BindVars(vars)
	if err != nil {
		return "", err
	}
	return t.Root.Render(&types.Context{Vars: bound}), nil
}
