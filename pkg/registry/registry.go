// Package registry holds the operator and group definitions that give
// dice notation its meaning.
//
// A Registry is append-only: definitions can be added (or explicitly
// redefined) but never removed. Every successful registration publishes a
// new immutable Table snapshot, which is what the parser reads, so no lock
// is held while parsing.
//
// # Example
//
//	reg := registry.New()
//	err := reg.RegisterOperator(&types.OperatorDef{
//	    Name: "add", Text: "+", Arity: types.Infix, Precedence: 0,
//	    Cacheable: true, Eval: add,
//	})
package registry

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/sandrolain/godice/pkg/types"
)

// Registry is a thread-safe, append-only set of operator and group definitions.
type Registry struct {
	mu     sync.Mutex
	logger *slog.Logger
	fold   cases.Caser

	operators []*types.OperatorDef
	groups    []*types.GroupDef

	table atomic.Pointer[Table]
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to trace registrations.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	redefine bool
}

// Redefine allows a registration to replace an existing definition with
// the same name.
func Redefine() RegisterOption {
	return func(o *registerOptions) {
		o.redefine = true
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		fold: cases.Fold(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.table.Store(buildTable(nil, nil))
	return r
}

// RegisterOperator adds an operator definition.
//
// It fails with ErrDuplicateName if the name is taken (unless Redefine is
// passed) and with ErrConflictingToken if the text matches, ignoring case,
// the text of any other operator regardless of arity.
func (r *Registry) RegisterOperator(def *types.OperatorDef, opts ...RegisterOption) error {
	if err := validateOperator(def); err != nil {
		return err
	}
	o := applyRegisterOptions(opts)

	r.mu.Lock()
	defer r.mu.Unlock()

	replace := -1
	text := r.fold.String(def.Text)
	for i, existing := range r.operators {
		if existing.Name == def.Name {
			if !o.redefine {
				return types.Errorf(types.ErrDuplicateName,
					"Operator %s is already defined", def.Name).WithToken(def.Name)
			}
			replace = i
			continue
		}
		if r.fold.String(existing.Text) == text {
			return types.Errorf(types.ErrConflictingToken,
				"Operator %s has the same text %q as operator %s", def.Name, def.Text, existing.Name).WithToken(def.Text)
		}
	}

	ops := append([]*types.OperatorDef(nil), r.operators...)
	if replace >= 0 {
		ops[replace] = def
	} else {
		ops = append(ops, def)
	}
	r.operators = ops
	r.table.Store(buildTable(r.operators, r.groups))

	r.logger.Debug("operator registered",
		slog.String("name", def.Name),
		slog.String("text", def.Text),
		slog.String("arity", def.Arity.String()),
		slog.Int("precedence", def.Precedence),
		slog.Bool("redefined", replace >= 0))
	return nil
}

// RegisterGroup adds a group definition.
//
// Open and close tokens are checked independently against every other
// group; a clash fails with ErrConflictingDelimiter.
func (r *Registry) RegisterGroup(def *types.GroupDef, opts ...RegisterOption) error {
	if err := validateGroup(def); err != nil {
		return err
	}
	o := applyRegisterOptions(opts)

	r.mu.Lock()
	defer r.mu.Unlock()

	replace := -1
	for i, existing := range r.groups {
		if existing.Name == def.Name {
			if !o.redefine {
				return types.Errorf(types.ErrDuplicateName,
					"Group %s is already defined", def.Name).WithToken(def.Name)
			}
			replace = i
			continue
		}
		if existing.Open == def.Open {
			return types.Errorf(types.ErrConflictingDelimiter,
				"Group %s has the same opening token %q as group %s", def.Name, def.Open, existing.Name).WithToken(def.Open)
		}
		if existing.Close == def.Close {
			return types.Errorf(types.ErrConflictingDelimiter,
				"Group %s has the same closing token %q as group %s", def.Name, def.Close, existing.Name).WithToken(def.Close)
		}
	}

	groups := append([]*types.GroupDef(nil), r.groups...)
	if replace >= 0 {
		groups[replace] = def
	} else {
		groups = append(groups, def)
	}
	r.groups = groups
	r.table.Store(buildTable(r.operators, r.groups))

	r.logger.Debug("group registered",
		slog.String("name", def.Name),
		slog.String("open", def.Open),
		slog.String("close", def.Close),
		slog.Bool("redefined", replace >= 0))
	return nil
}

// Table returns the current immutable snapshot.
func (r *Registry) Table() *Table {
	return r.table.Load()
}

// Operator looks up an operator by name.
func (r *Registry) Operator(name string) (*types.OperatorDef, bool) {
	return r.Table().Operator(name)
}

// Group looks up a group by name.
func (r *Registry) Group(name string) (*types.GroupDef, bool) {
	return r.Table().Group(name)
}

// GroupByOpen looks up a group by its opening token.
func (r *Registry) GroupByOpen(tok string) (*types.GroupDef, bool) {
	return r.Table().GroupByOpen(tok)
}

// GroupByClose looks up a group by its closing token.
func (r *Registry) GroupByClose(tok string) (*types.GroupDef, bool) {
	return r.Table().GroupByClose(tok)
}

// OperatorsAtPrecedence returns the operators bound at precedence p.
func (r *Registry) OperatorsAtPrecedence(p int) []*types.OperatorDef {
	return r.Table().OperatorsAtPrecedence(p)
}

// HighestPrecedence returns the tightest-binding precedence registered.
func (r *Registry) HighestPrecedence() int {
	return r.Table().HighestPrecedence()
}

// LowestPrecedence returns the loosest-binding precedence registered.
func (r *Registry) LowestPrecedence() int {
	return r.Table().LowestPrecedence()
}

// Precedences returns the distinct precedences, highest first.
func (r *Registry) Precedences() []int {
	return r.Table().Precedences()
}

// Operators returns every operator in registration order.
func (r *Registry) Operators() []*types.OperatorDef {
	return r.Table().Operators()
}

// Groups returns every group in registration order.
func (r *Registry) Groups() []*types.GroupDef {
	return r.Table().Groups()
}

func applyRegisterOptions(opts []RegisterOption) registerOptions {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func validateOperator(def *types.OperatorDef) error {
	switch {
	case def == nil:
		return types.Errorf(types.ErrInvalidDefinition, "Operator definition is nil")
	case def.Name == "":
		return types.Errorf(types.ErrInvalidDefinition, "Operator name is empty")
	case def.Text == "":
		return types.Errorf(types.ErrInvalidDefinition, "Operator %s has empty text", def.Name)
	case def.Eval == nil:
		return types.Errorf(types.ErrInvalidDefinition, "Operator %s has no evaluation function", def.Name)
	case def.Arity != types.Prefix && def.Arity != types.Postfix && def.Arity != types.Infix:
		return types.Errorf(types.ErrInvalidDefinition, "Operator %s has unknown arity %d", def.Name, def.Arity)
	}
	if err := checkTokenText(def.Text); err != nil {
		return types.Errorf(types.ErrInvalidDefinition, "Operator %s: %s", def.Name, err)
	}
	if first := rune(def.Text[0]); unicode.IsDigit(first) || first == '$' {
		return types.Errorf(types.ErrInvalidDefinition, "Operator %s text %q cannot start with %q", def.Name, def.Text, first)
	}
	return nil
}

func validateGroup(def *types.GroupDef) error {
	switch {
	case def == nil:
		return types.Errorf(types.ErrInvalidDefinition, "Group definition is nil")
	case def.Name == "":
		return types.Errorf(types.ErrInvalidDefinition, "Group name is empty")
	case def.Open == "" || def.Close == "":
		return types.Errorf(types.ErrInvalidDefinition, "Group %s needs both delimiters", def.Name)
	case def.Open == def.Close:
		return types.Errorf(types.ErrInvalidDefinition, "Group %s uses %q to both open and close", def.Name, def.Open)
	case def.Eval == nil:
		return types.Errorf(types.ErrInvalidDefinition, "Group %s has no evaluation function", def.Name)
	case def.MaxElements < 0:
		return types.Errorf(types.ErrInvalidDefinition, "Group %s has negative element limit", def.Name)
	}
	for _, tok := range []string{def.Open, def.Close} {
		if err := checkTokenText(tok); err != nil {
			return types.Errorf(types.ErrInvalidDefinition, "Group %s: %s", def.Name, err)
		}
	}
	return nil
}

func checkTokenText(text string) error {
	if strings.IndexFunc(text, unicode.IsSpace) >= 0 {
		return fmt.Errorf("token %q contains whitespace", text)
	}
	if strings.Contains(text, ",") {
		return fmt.Errorf("token %q contains the separator", text)
	}
	return nil
}
