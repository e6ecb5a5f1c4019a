package godice_test

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/sandrolain/godice"
	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/random"
	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

func TestVersion(t *testing.T) {
	if !strings.HasPrefix(godice.Version(), "v") {
		t.Fatalf("unexpected version %q", godice.Version())
	}
}

func TestRoll(t *testing.T) {
	res, err := godice.Roll("4d6kh3+$bonus", godice.Vars{"bonus": 2}, expr.WithRand(random.NewSequence(0, 2, 5, 3)))
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != 15 {
		t.Fatalf("value = %v, want 15", res.Value)
	}
}

func TestRollSeeded(t *testing.T) {
	a, err := godice.Roll("10d20!", nil, expr.WithSeed(99))
	if err != nil {
		t.Fatal(err)
	}
	b, err := godice.Roll("10d20!", nil, expr.WithSeed(99))
	if err != nil {
		t.Fatal(err)
	}
	if a.Value != b.Value || fmt.Sprint(a.Rolls) != fmt.Sprint(b.Rolls) {
		t.Fatalf("same seed gave %v and %v", a.Rolls, b.Rolls)
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(fmt.Sprint(r), `Parse("1+")`) {
			t.Fatalf("unexpected panic value %v", r)
		}
	}()
	godice.MustParse("1+")
}

func TestParseList(t *testing.T) {
	trees, err := godice.ParseList("1d20adv, 1d20dis")
	if err != nil {
		t.Fatal(err)
	}
	if len(trees) != 2 {
		t.Fatalf("got %d trees", len(trees))
	}
}

func TestRegisterOnCustomRegistry(t *testing.T) {
	reg, err := godice.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	err = reg.RegisterOperator(&types.OperatorDef{
		Name:       "halve",
		Text:       "h/",
		Arity:      types.Postfix,
		Precedence: 2,
		Cacheable:  true,
		Eval: func(_ *types.Context, node types.Node, ops ...*types.Result) (*types.Result, error) {
			return types.NewBasic(node, math.Floor(ops[0].Value/2), ops...), nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	tree, err := godice.Parse("9h/+1", parser.WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	res, err := tree.Eval(nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != 5 {
		t.Fatalf("9h/+1 = %v, want 5", res.Value)
	}

	// The default registry is untouched.
	if _, err := godice.Parse("9h/"); !types.IsCode(err, types.ErrUnexpectedToken) {
		t.Fatalf("expected default registry to reject h/, got %v", err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	err := godice.RegisterOperator(&types.OperatorDef{
		Name:  "another_d",
		Text:  "D",
		Arity: types.Infix,
		Eval: func(_ *types.Context, node types.Node, _ ...*types.Result) (*types.Result, error) {
			return types.NewBasic(node, 0), nil
		},
	})
	if !types.IsCode(err, types.ErrConflictingToken) {
		t.Fatalf("expected conflicting token, got %v", err)
	}

	err = godice.RegisterGroup(&types.GroupDef{
		Name:  "angle",
		Open:  "<<",
		Close: ")",
		Eval: func(_ *types.Context, node types.Node, _ []*types.Result) (*types.Result, error) {
			return types.NewBasic(node, 0), nil
		},
	})
	if !types.IsCode(err, types.ErrConflictingDelimiter) {
		t.Fatalf("expected conflicting delimiter, got %v", err)
	}

	if godice.Registry() != registry.Default() {
		t.Fatal("Registry must return the default registry")
	}
}

func TestResultJSON(t *testing.T) {
	res, err := godice.Roll("2d6 dc 7", nil, expr.WithRand(random.NewSequence(2, 3)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Source   string  `json:"source"`
		Value    float64 `json:"value"`
		Variant  string  `json:"variant"`
		Rolls    []int   `json:"rolls"`
		Statuses []struct {
			Op   string `json:"op"`
			Text string `json:"text"`
		} `json:"statuses"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Source != "2d6 dc7" || decoded.Value != 7 || decoded.Variant != "dice" {
		t.Fatalf("decoded = %+v", decoded)
	}
	if len(decoded.Statuses) != 1 || decoded.Statuses[0].Text != "Pass" {
		t.Fatalf("statuses = %+v", decoded.Statuses)
	}

	nan, err := godice.Roll("1/0", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err = json.Marshal(nan)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"value":null`) {
		t.Fatalf("NaN should encode as null: %s", b)
	}
}

func ExampleRoll() {
	res, err := godice.Roll("4d6kh3", nil, expr.WithSeed(1))
	if err != nil {
		panic(err)
	}
	fmt.Println(len(res.Rolls), res.RollCount)
	// Output: 3 4
}

// ---------------------------------------------------------------------------
// Benchmarks
//
//	go test -bench=. -benchmem .
// ---------------------------------------------------------------------------

var benchNotations = []string{
	"1d20+5",
	"4d6kh3",
	"2d6!+1d8r<2",
	"1d20adv+$str dc15",
	"[1d4, 1d6, 1d8, 1d10]*2",
}

func BenchmarkParse(b *testing.B) {
	for _, n := range benchNotations {
		b.Run(n, func(b *testing.B) {
			for b.Loop() {
				if _, err := godice.Parse(n); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEval(b *testing.B) {
	vars := godice.Vars{"str": 3}
	for _, n := range benchNotations {
		tree := godice.MustParse(n)
		b.Run(n, func(b *testing.B) {
			ctx, err := expr.NewContext(vars, expr.WithSeed(1))
			if err != nil {
				b.Fatal(err)
			}
			for b.Loop() {
				if _, err := tree.EvalContext(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRollManyDice(b *testing.B) {
	tree := godice.MustParse("100000d6")
	for b.Loop() {
		if _, err := tree.Eval(nil, expr.WithSeed(1)); err != nil {
			b.Fatal(err)
		}
	}
}
