// Package parser turns dice notation into expression trees.
//
// Parsing runs in three stages, all driven by a registry snapshot:
//   - Lexer: tokenizes notation using the registered operator texts and
//     group delimiters, longest text first and case-insensitively
//   - Collapse: folds the token list into a single AST node, groups first,
//     then operators from the highest precedence to the lowest
//   - Build: turns the AST into expr nodes
//
// # Example
//
//	tree, err := parser.Parse("4d6kh3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, _ := tree.Eval(nil)
//
// The default registry is empty until the built-in semantics are
// installed, which importing github.com/sandrolain/godice/pkg/ext does.
package parser

import (
	"errors"
	"log/slog"

	"github.com/sandrolain/godice/pkg/cache"
	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

// Parser parses notation against one registry.
// It is safe for concurrent use.
type Parser struct {
	registry *registry.Registry
	cache    *cache.Cache
	logger   *slog.Logger
}

// Options holds parser configuration.
type Options struct {
	// Registry supplies operators and groups. Defaults to registry.Default().
	Registry *registry.Registry
	// Cache, when set, keeps collapsed ASTs by notation.
	Cache *cache.Cache
	// Logger for structured logging.
	Logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Options)

// WithRegistry parses against reg instead of the default registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(opts *Options) {
		opts.Registry = reg
	}
}

// WithCache attaches an AST cache.
// A cache must only be shared between parsers using the same registry.
func WithCache(c *cache.Cache) Option {
	return func(opts *Options) {
		opts.Cache = c
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// New creates a parser.
func New(opts ...Option) *Parser {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Registry == nil {
		options.Registry = registry.Default()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Parser{
		registry: options.Registry,
		cache:    options.Cache,
		logger:   options.Logger,
	}
}

// Parse parses notation with a parser built from opts.
func Parse(notation string, opts ...Option) (*expr.Tree, error) {
	return New(opts...).Parse(notation)
}

// ParseList parses comma-separated notation with a parser built from opts.
func ParseList(notation string, opts ...Option) ([]*expr.Tree, error) {
	return New(opts...).ParseList(notation)
}

// Registry returns the registry the parser reads.
func (p *Parser) Registry() *registry.Registry {
	return p.registry
}

// Cache returns the AST cache, or nil when the parser has none.
func (p *Parser) Cache() *cache.Cache {
	return p.cache
}

// Parse parses a single expression.
func (p *Parser) Parse(notation string) (*expr.Tree, error) {
	ast, err := p.collapse(notation)
	if err != nil {
		p.logger.Debug("parse failed", slog.String("notation", notation), slog.Any("error", err))
		return nil, err
	}
	root, err := Build(ast)
	if err != nil {
		p.logger.Debug("build failed", slog.String("notation", notation), slog.Any("error", err))
		return nil, err
	}
	return expr.NewTree(root, notation), nil
}

// ParseList parses a comma-separated list of expressions.
// Separators inside groups do not split the list. Empty entries are
// skipped, but a list with no entries at all is an empty expression.
// With a cache, each entry is cached under its own notation, so a list
// and a single Parse of one of its entries share the same AST.
func (p *Parser) ParseList(notation string) ([]*expr.Tree, error) {
	table := p.registry.Table()
	tokens, err := Tokenize(notation, table)
	if err != nil {
		p.logger.Debug("parse failed", slog.String("notation", notation), slog.Any("error", err))
		return nil, err
	}

	var trees []*expr.Tree
	for _, seg := range splitTopLevel(tokens) {
		if len(seg.tokens) == 0 {
			continue
		}
		first, last := seg.tokens[0], seg.tokens[len(seg.tokens)-1]
		offset := first.Position
		source := notation[offset : last.Position+len(last.Value)]

		run := func() (*types.ASTNode, error) {
			return Collapse(rebase(seg.tokens, offset), table, source)
		}
		var ast *types.ASTNode
		if p.cache != nil {
			ast, err = p.cache.GetOrCollapse(source, run)
		} else {
			ast, err = run()
		}
		if err != nil {
			err = shiftPosition(err, offset)
			p.logger.Debug("parse failed", slog.String("notation", source), slog.Any("error", err))
			return nil, err
		}
		root, err := Build(ast)
		if err != nil {
			return nil, shiftPosition(err, offset)
		}
		trees = append(trees, expr.NewTree(root, source))
	}
	if len(trees) == 0 {
		return nil, types.NewError(types.ErrEmptyExpression, "Cannot parse empty expression", 0)
	}
	return trees, nil
}

// rebase returns a copy of tokens with positions relative to offset.
func rebase(tokens []Token, offset int) []Token {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		t.Position -= offset
		out[i] = t
	}
	return out
}

// shiftPosition moves an entry-relative error position back into the list.
func shiftPosition(err error, offset int) error {
	var e *types.Error
	if errors.As(err, &e) && e.Position >= 0 {
		e.Position += offset
	}
	return err
}

// Collapse lexes and collapses notation without building a tree.
func (p *Parser) Collapse(notation string) (*types.ASTNode, error) {
	return p.collapse(notation)
}

func (p *Parser) collapse(notation string) (*types.ASTNode, error) {
	run := func() (*types.ASTNode, error) {
		table := p.registry.Table()
		tokens, err := Tokenize(notation, table)
		if err != nil {
			return nil, err
		}
		return Collapse(tokens, table, notation)
	}
	if p.cache != nil {
		return p.cache.GetOrCollapse(notation, run)
	}
	return run()
}
