// Package extdnd5e provides operators from fifth edition tabletop rules.
//
// Operators:
//   - advantage "adv" (3): rolls the operand again and keeps the higher total
//   - disadvantage "dis" (3): rolls the operand again and keeps the lower total
//   - difficulty_class "dc" (-1): appends a Pass or Fail status comparing the
//     left value with the right value, rendered as " dc"
//   - wild_magic "wm" (3): on the lowest possible total, appends a random
//     surge effect from a data table, rendered as " wm"
//
// The surge table defaults to the embedded effects.yaml and can be
// replaced with WithEffects.
package extdnd5e

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/godice/pkg/cache"
	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

// Precedences of the dnd5e operators.
const (
	PrecFunction        = 3
	PrecDifficultyClass = -1
)

//go:embed effects.yaml
var effectsYAML []byte

// EffectTable is the on-disk shape of a surge table.
type EffectTable struct {
	Effects []string `yaml:"effects" toml:"effects"`
}

// ParseEffects decodes a YAML surge table.
func ParseEffects(data []byte) ([]string, error) {
	var t EffectTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse effects: %w", err)
	}
	if len(t.Effects) == 0 {
		return nil, fmt.Errorf("parse effects: table is empty")
	}
	return t.Effects, nil
}

var defaultEffects = sync.OnceValue(func() []string {
	effects, err := ParseEffects(effectsYAML)
	if err != nil {
		panic(err)
	}
	return effects
})

// DefaultEffects returns a copy of the embedded surge table.
func DefaultEffects() []string {
	return append([]string(nil), defaultEffects()...)
}

// Option configures the dnd5e operators.
type Option func(*options)

type options struct {
	effects []string
}

// WithEffects replaces the surge table.
func WithEffects(effects []string) Option {
	return func(o *options) {
		o.effects = effects
	}
}

// All returns every dnd5e operator definition. The wild magic operator
// parses its placeholders against reg.
func All(reg *registry.Registry, opts ...Option) []*types.OperatorDef {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return []*types.OperatorDef{
		Advantage(),
		Disadvantage(),
		DifficultyClass(),
		WildMagic(reg, o.effects),
	}
}

// Install registers every dnd5e operator into reg.
func Install(reg *registry.Registry, opts ...Option) error {
	for _, def := range All(reg, opts...) {
		if err := reg.RegisterOperator(def); err != nil {
			return err
		}
	}
	return nil
}

// Advantage returns the definition of "adv".
func Advantage() *types.OperatorDef {
	return rollTwice("advantage", "adv", func(a, b float64) bool { return a > b })
}

// Disadvantage returns the definition of "dis".
func Disadvantage() *types.OperatorDef {
	return rollTwice("disadvantage", "dis", func(a, b float64) bool { return a < b })
}

// rollTwice evaluates the operand's source a second time and keeps the
// better total. Ties keep the first roll. Prev holds only the discarded roll.
func rollTwice(name, text string, better func(a, b float64) bool) *types.OperatorDef {
	return &types.OperatorDef{
		Name:       name,
		Text:       text,
		Arity:      types.Postfix,
		Precedence: PrecFunction,
		Eval: func(ctx *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			first := operands[0]
			second, err := first.Source.Eval(ctx)
			if err != nil {
				return nil, err
			}
			kept, discarded := first, second
			if better(second.Value, first.Value) {
				kept, discarded = second, first
			}
			out := kept.Derive(node)
			out.Prev = []*types.Result{discarded}
			return out, nil
		},
	}
}

// DifficultyClass returns the definition of "dc".
func DifficultyClass() *types.OperatorDef {
	const name = "difficulty_class"
	return &types.OperatorDef{
		Name:       name,
		Text:       "dc",
		Display:    " dc",
		Arity:      types.Infix,
		Precedence: PrecDifficultyClass,
		Eval: func(_ *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			l, r := operands[0], operands[1]
			out := l.Derive(node)
			out.Prev = []*types.Result{l, r}
			text := "Fail"
			if l.Value >= r.Value {
				text = "Pass"
			}
			out.AddStatus(types.Status{Op: name, Text: text})
			return out, nil
		},
	}
}

// WildMagic returns the definition of "wm".
//
// A surge triggers when the total equals the lowest possible total for the
// rolls, len(rolls) times the die's lowest face. Each {notation}
// placeholder in the picked effect is parsed against reg and rolled; the
// braces are dropped from the text and the rolls attached to the status.
// An empty effects list uses the embedded table.
func WildMagic(reg *registry.Registry, effects []string) *types.OperatorDef {
	const name = "wild_magic"
	if len(effects) == 0 {
		effects = defaultEffects()
	}
	var p *parser.Parser
	var once sync.Once

	return &types.OperatorDef{
		Name:        name,
		Text:        "wm",
		Display:     " wm",
		Arity:       types.Postfix,
		Precedence:  PrecFunction,
		RequireLeft: types.VariantDice,
		Eval: func(ctx *types.Context, node types.Node, operands ...*types.Result) (*types.Result, error) {
			l := operands[0]
			out := l.Derive(node)
			out.Prev = []*types.Result{l}
			if l.Value != float64(len(l.Rolls)*l.LowestFace()) {
				return out, nil
			}

			once.Do(func() {
				p = parser.New(
					parser.WithRegistry(reg),
					parser.WithLogger(ctx.Log()),
					parser.WithCache(cache.New(len(effects))),
				)
			})
			effect := effects[ctx.IntN(len(effects))]
			text, rolls, err := substitute(ctx, p, effect)
			if err != nil {
				return nil, err
			}
			ctx.Log().Debug("wild magic surge",
				slog.String("notation", node.String()),
				slog.String("effect", text),
				slog.Int("subrolls", len(rolls)))
			out.AddStatus(types.Status{Op: name, Text: text, Results: rolls})
			return out, nil
		},
	}
}

// substitute rolls every {notation} placeholder in effect.
func substitute(ctx *types.Context, p *parser.Parser, effect string) (string, []*types.Result, error) {
	var b strings.Builder
	var rolls []*types.Result
	sub := &types.Context{}
	if ctx != nil {
		sub.Rand, sub.Logger = ctx.Rand, ctx.Logger
	}
	rest := effect
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			break
		}
		notation := rest[open+1 : open+end]
		tree, err := p.Parse(notation)
		if err != nil {
			return "", nil, fmt.Errorf("wild magic effect %q: %w", effect, err)
		}
		r, err := tree.EvalContext(sub)
		if err != nil {
			return "", nil, fmt.Errorf("wild magic effect %q: %w", effect, err)
		}
		rolls = append(rolls, r)
		b.WriteString(rest[:open])
		b.WriteString(notation)
		rest = rest[open+end+1:]
	}
	b.WriteString(rest)
	return b.String(), rolls, nil
}
