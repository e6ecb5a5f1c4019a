package parser_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sandrolain/godice/pkg/cache"
	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/types"
)

func asError(err error, target **types.Error) bool {
	return errors.As(err, target)
}

// sexpr renders an AST as an s-expression so tests can check its shape.
func sexpr(n *types.ASTNode) string {
	switch n.Kind {
	case types.ASTConstant:
		return expr.FormatNumber(n.Value)
	case types.ASTVariable:
		return "$" + n.Name
	case types.ASTGroup:
		parts := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			parts[i] = sexpr(e)
		}
		return n.Group.Open + strings.Join(parts, " ") + n.Group.Close
	default:
		parts := []string{n.Operator.Text}
		if n.Left != nil {
			parts = append(parts, sexpr(n.Left))
		}
		if n.Right != nil {
			parts = append(parts, sexpr(n.Right))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
}

func TestCollapse(t *testing.T) {
	p := parser.New(parser.WithRegistry(newRegistry(t)))

	tests := []struct {
		input string
		want  string
	}{
		{"2+3*4", "(+ 2 (* 3 4))"},
		{"10-2-3", "(- (- 10 2) 3)"},
		{"2^3^2", "(^ (^ 2 3) 2)"},
		{"(1+2)*3", "(* ((+ 1 2)) 3)"},
		{"4d6kh3", "(kh (d 4 6) 3)"},
		{"4d6kh3+2", "(+ (kh (d 4 6) 3) 2)"},
		{"2d6!", "(! (d 2 6))"},
		{"1d6!-2", "(- (! (d 1 6)) 2)"},
		{"1d20adv", "(adv (d 1 20))"},
		{"1d20+5 dc15", "(dc (+ (d 1 20) 5) 15)"},
		{"1d%", "(d% 1)"},
		{"4dF", "(dF 4)"},
		{"1d20 wm", "(wm (d 1 20))"},
		{"[1d4, 1d6]", "[(d 1 4) (d 1 6)]"},
		{"{1, [2, 3]}", "{1 [2 3]}"},
		{"$lvl d 8", "(d $lvl 8)"},
		{"2x3", "(x 2 3)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ast, err := p.Collapse(tt.input)
			if err != nil {
				t.Fatalf("Collapse(%q): %v", tt.input, err)
			}
			if got := sexpr(ast); got != tt.want {
				t.Fatalf("Collapse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	p := parser.New(parser.WithRegistry(newRegistry(t)))

	tests := []struct {
		input   string
		code    types.ErrorCode
		message string
	}{
		{"", types.ErrEmptyExpression, "Cannot parse empty expression"},
		{"   ", types.ErrEmptyExpression, "Cannot parse empty expression"},
		{"()", types.ErrEmptyExpression, "Cannot parse empty expression"},
		{"[1,,2]", types.ErrEmptyExpression, "Cannot parse empty expression"},
		{"1+", types.ErrMissingOperand, "Expected right-hand argument to operator +"},
		{"d6", types.ErrMissingOperand, "Expected left-hand argument to operator d"},
		{"adv", types.ErrMissingOperand, "Expected left-hand argument to operator adv"},
		{"(1+2", types.ErrUnmatchedDelimiter, "Unexpected EOF when parsing (; expected )"},
		{"1+2)", types.ErrUnmatchedDelimiter, "Unexpected token ) when parsing 1+2)"},
		{"[1)", types.ErrUnmatchedDelimiter, "Unexpected EOF when parsing [; expected ]"},
		{"1,2", types.ErrUnexpectedToken, "Unexpected token , when parsing 1,2"},
		{"(1, 2)", types.ErrTooManyElements, ""},
		{"1 2", types.ErrMissingOperator, "Expected operator between tokens 1 and 2"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree, err := p.Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) = %s, want error", tt.input, tree)
			}
			if !types.IsCode(err, tt.code) {
				t.Fatalf("Parse(%q): expected %s, got %v", tt.input, tt.code, err)
			}
			var e *types.Error
			if tt.message != "" && (!asError(err, &e) || e.Message != tt.message) {
				t.Fatalf("Parse(%q): message %v, want %q", tt.input, err, tt.message)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	p := parser.New(parser.WithRegistry(newRegistry(t)))
	_, err := p.Parse("1+(2, 3)")
	var e *types.Error
	if !asError(err, &e) {
		t.Fatalf("expected *types.Error, got %v", err)
	}
	if e.Position != 2 {
		t.Fatalf("expected position 2, got %d", e.Position)
	}
}

func TestRender(t *testing.T) {
	p := parser.New(parser.WithRegistry(newRegistry(t)))

	tests := []struct {
		input string
		want  string
	}{
		{"4d6kh3", "4d6kh3"},
		{"4D6 KH 3", "4d6kh3"},
		{"1d%", "1d100"},
		{"1d20+5 dc15", "1d20+5 dc15"},
		{"1d20 wm", "1d20 wm"},
		{"(1+2)*3", "(1+2)*3"},
		{"[1,2 , 3]", "[1, 2, 3]"},
		{"3+-2", "3+-2"},
		{"2.5*2", "2.5*2"},
		{"1d20+$str", "1d20+$str;"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree, err := p.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got := tree.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
			// Rendered notation parses back to the same rendering.
			again, err := p.Parse(tree.String())
			if err != nil {
				t.Fatalf("reparse %q: %v", tree.String(), err)
			}
			if again.String() != tt.want {
				t.Fatalf("reparse rendered %q, want %q", again.String(), tt.want)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	p := parser.New(parser.WithRegistry(newRegistry(t)))

	tests := []struct {
		input string
		want  []string
	}{
		{"1d20adv, 1d20dis, 8d6", []string{"1d20adv", "1d20dis", "8d6"}},
		{"[1, 2], {3, 4}", []string{"[1, 2]", "{3, 4}"}},
		{"1, , 2,", []string{"1", "2"}},
		{"  4d6kh3  ", []string{"4d6kh3"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			trees, err := p.ParseList(tt.input)
			if err != nil {
				t.Fatalf("ParseList(%q): %v", tt.input, err)
			}
			if len(trees) != len(tt.want) {
				t.Fatalf("got %d trees, want %d", len(trees), len(tt.want))
			}
			for i, tree := range trees {
				if tree.Source != tt.want[i] {
					t.Errorf("tree %d: source %q, want %q", i, tree.Source, tt.want[i])
				}
			}
		})
	}

	for _, input := range []string{"", " , ", ","} {
		if _, err := p.ParseList(input); !types.IsCode(err, types.ErrEmptyExpression) {
			t.Errorf("ParseList(%q): expected empty expression, got %v", input, err)
		}
	}
	if _, err := p.ParseList("1d6, 1+"); !types.IsCode(err, types.ErrMissingOperand) {
		t.Errorf("expected missing operand, got %v", err)
	}
}

func TestParseWithCache(t *testing.T) {
	c := cache.New(4)
	p := parser.New(parser.WithRegistry(newRegistry(t)), parser.WithCache(c))

	first, err := p.Parse("{1, 2}")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Parse("{1, 2}")
	if err != nil {
		t.Fatal(err)
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}
	if first.Root == second.Root {
		t.Fatal("cached parses must build distinct trees")
	}

	// Taking from one tree does not affect the other.
	if _, err := first.Eval(nil); err != nil {
		t.Fatal(err)
	}
	g, ok := second.Root.(*expr.Group)
	if !ok {
		t.Fatalf("expected *expr.Group root, got %T", second.Root)
	}
	if g.Len() != 2 {
		t.Fatalf("second tree lost elements: %d", g.Len())
	}
}

func TestParseListWithCache(t *testing.T) {
	c := cache.New(8)
	p := parser.New(parser.WithRegistry(newRegistry(t)), parser.WithCache(c))

	if _, err := p.ParseList("1d6, 2d8+1"); err != nil {
		t.Fatal(err)
	}
	trees, err := p.ParseList("1d6,2d8+1")
	if err != nil {
		t.Fatal(err)
	}
	if hits, misses := c.Stats(); hits != 2 || misses != 2 {
		t.Fatalf("expected 2 hits and 2 misses, got %d/%d", hits, misses)
	}
	if trees[1].Source != "2d8+1" {
		t.Fatalf("entry source = %q", trees[1].Source)
	}

	// Entries and single parses share cache keys.
	if _, err := p.Parse("2d8+1"); err != nil {
		t.Fatal(err)
	}
	if hits, _ := c.Stats(); hits != 3 {
		t.Fatalf("expected Parse to hit the entry cached by ParseList, got %d hits", hits)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 cached entries, got %d", c.Len())
	}
}

func TestParseListErrorPosition(t *testing.T) {
	p := parser.New(parser.WithRegistry(newRegistry(t)), parser.WithCache(cache.New(8)))

	tests := []struct {
		notation string
		code     types.ErrorCode
		pos      int
	}{
		{"1d6, 1+", types.ErrMissingOperand, 6},
		{"4, 1+(2, 3)", types.ErrTooManyElements, 5},
	}
	for _, tt := range tests {
		for range 2 {
			_, err := p.ParseList(tt.notation)
			var e *types.Error
			if !asError(err, &e) || e.Code != tt.code {
				t.Fatalf("ParseList(%q): expected %s, got %v", tt.notation, tt.code, err)
			}
			if e.Position != tt.pos {
				t.Fatalf("ParseList(%q): expected position %d, got %d", tt.notation, tt.pos, e.Position)
			}
		}
	}
}

func TestParseDefaultRegistry(t *testing.T) {
	tree, err := parser.Parse("2+2")
	if err != nil {
		t.Fatal(err)
	}
	res, err := tree.Eval(nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != 4 {
		t.Fatalf("2+2 = %v", res.Value)
	}
}

func ExampleParse() {
	tree, err := parser.Parse("(1+2)*3")
	if err != nil {
		panic(err)
	}
	res, _ := tree.Eval(nil)
	fmt.Println(tree, "=", res.Value)
	// Output: (1+2)*3 = 9
}
