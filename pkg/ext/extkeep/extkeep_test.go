package extkeep_test

import (
	"slices"
	"testing"

	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/ext"
	"github.com/sandrolain/godice/pkg/ext/extkeep"
	"github.com/sandrolain/godice/pkg/ext/extutil"
	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/random"
	"github.com/sandrolain/godice/pkg/types"
)

func find(t *testing.T, text string) *types.OperatorDef {
	t.Helper()
	for _, def := range extkeep.All() {
		if def.Text == text {
			return def
		}
	}
	t.Fatalf("no keep operator %q", text)
	return nil
}

func TestKeep(t *testing.T) {
	tests := []struct {
		text  string
		rolls []int
		v     float64
		want  []int
	}{
		{"kh", []int{4, 2, 6, 2}, 2, []int{4, 6}},
		{"kh", []int{3, 3, 3}, 2, []int{3, 3}},
		{"kh", []int{1, 2}, 5, []int{1, 2}},
		{"kh", []int{1, 2}, 0, []int{}},
		{"kl", []int{4, 2, 6, 2}, 2, []int{2, 2}},
		{"kl", []int{5, 5, 1}, 1, []int{1}},
		{"k>", []int{4, 2, 6, 2}, 4, []int{4, 6}},
		{"k<", []int{4, 2, 6, 2}, 2, []int{2, 2}},
		{"k>", []int{1, 2}, 7, []int{}},
	}

	for _, tt := range tests {
		def := find(t, tt.text)
		in := extutil.NewDice(nil, slices.Clone(tt.rolls), 6, nil)
		out, err := def.Eval(nil, nil, in, types.NewBasic(nil, tt.v))
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(out.Rolls, tt.want) {
			t.Errorf("%v %s %v = %v, want %v", tt.rolls, tt.text, tt.v, out.Rolls, tt.want)
		}
		if out.Value != types.Sum(tt.want) {
			t.Errorf("%s value %v, want %v", tt.text, out.Value, types.Sum(tt.want))
		}
		if !slices.Equal(in.Rolls, tt.rolls) {
			t.Errorf("%s modified its operand: %v", tt.text, in.Rolls)
		}
		if out.RollCount != len(tt.rolls) || !out.IsDice() {
			t.Errorf("%s: roll count %d, variant %s", tt.text, out.RollCount, out.Variant)
		}
		if len(out.Prev) != 2 || out.Prev[0] != in {
			t.Errorf("%s: provenance should be [left, right]", tt.text)
		}
	}
}

func TestKeepSampled(t *testing.T) {
	reg, err := ext.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	src := random.NewSeeded(42)

	tests := []struct {
		notation string
		kept     int
		// holds compares the kept rolls with the rolls they came from.
		holds func(kept, all []int) bool
	}{
		{"4d6kh3", 3, func(kept, all []int) bool { return slices.Min(all) <= slices.Min(kept) }},
		{"4d6kl3", 3, func(kept, all []int) bool { return slices.Max(kept) <= slices.Max(all) }},
		{"5d6kh1", 1, func(kept, all []int) bool { return kept[0] == slices.Max(all) }},
		{"5d6kl1", 1, func(kept, all []int) bool { return kept[0] == slices.Min(all) }},
	}
	for _, tt := range tests {
		tree, err := parser.Parse(tt.notation, parser.WithRegistry(reg))
		if err != nil {
			t.Fatal(err)
		}
		for range 10000 {
			res, err := tree.Eval(nil, expr.WithRand(src))
			if err != nil {
				t.Fatal(err)
			}
			all := res.Prev[0].Rolls
			if len(res.Rolls) != tt.kept {
				t.Fatalf("%s kept %v of %v", tt.notation, res.Rolls, all)
			}
			for _, r := range res.Rolls {
				if r < 1 || r > 6 {
					t.Fatalf("%s kept %d outside [1, 6]", tt.notation, r)
				}
			}
			if !tt.holds(res.Rolls, all) {
				t.Fatalf("%s kept %v of %v", tt.notation, res.Rolls, all)
			}
		}
	}
}
