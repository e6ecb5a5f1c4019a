package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sandrolain/godice/internal/wasmhost"
	"github.com/sandrolain/godice/internal/wasmhost/proto"
	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/parser"
	"github.com/sandrolain/godice/pkg/random"
	"github.com/sandrolain/godice/pkg/types"
)

var (
	rollSeed  uint64
	rollVars  []string
	rollJSON  bool
	rollTrace bool
	rollTimes int
	rollWasm  string
)

var rollCmd = &cobra.Command{
	Use:   "roll <notation>...",
	Short: "Roll one or more expressions",
	Long: `Roll parses the arguments as a comma-separated list of expressions and
rolls each one.

Examples:
  godice roll 4d6kh3
  godice roll '1d20adv + $str' --var str=3
  godice roll "8d6, 1d20 wm" --seed 42 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoll,
}

func init() {
	rollCmd.Flags().Uint64Var(&rollSeed, "seed", 0, "seed for reproducible rolls (0 picks one)")
	rollCmd.Flags().StringArrayVar(&rollVars, "var", nil, "bind a variable, name=value; value may be notation")
	rollCmd.Flags().BoolVar(&rollJSON, "json", false, "print results as JSON")
	rollCmd.Flags().BoolVar(&rollTrace, "trace", false, "print the provenance of every roll")
	rollCmd.Flags().IntVarP(&rollTimes, "times", "n", 1, "roll the expressions this many times")
	rollCmd.Flags().StringVar(&rollWasm, "wasm", "", "roll inside this WASI build of godice instead of in-process")
	rootCmd.AddCommand(rollCmd)
}

// rollOutput is the JSON shape of one evaluated expression.
type rollOutput struct {
	ID       string        `json:"id"`
	Seed     uint64        `json:"seed"`
	Notation string        `json:"notation"`
	Rendered string        `json:"rendered"`
	Result   *types.Result `json:"result"`
}

func runRoll(cmd *cobra.Command, args []string) error {
	if rollTimes < 1 {
		return fmt.Errorf("--times must be at least 1, got %d", rollTimes)
	}
	if rollWasm != "" {
		return runSandboxed(cmd, strings.Join(args, " "))
	}

	p, err := newParser()
	if err != nil {
		printError(cmd, "setup", err)
		return err
	}
	trees, err := p.ParseList(strings.Join(args, " "))
	if err != nil {
		printError(cmd, "parse", err)
		return err
	}
	vars, err := parseVars(p, rollVars)
	if err != nil {
		printError(cmd, "variables", err)
		return err
	}

	seed := rollSeed
	if seed == 0 {
		seed = cfg.Seed
	}
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}
	ctx, err := expr.NewContext(vars, expr.WithSeed(seed), expr.WithLogger(logger))
	if err != nil {
		printError(cmd, "variables", err)
		return err
	}

	id := uuid.NewString()
	logger.Info("roll", "id", id, "seed", seed, "expressions", len(trees), "times", rollTimes)

	out := cmd.OutOrStdout()
	var outputs []rollOutput
	for range rollTimes {
		for _, tree := range trees {
			res, err := tree.EvalContext(ctx)
			if err != nil {
				printError(cmd, tree.Source, err)
				return err
			}
			rendered := tree.Root.Render(ctx)
			if rollJSON {
				outputs = append(outputs, rollOutput{
					ID:       id,
					Seed:     seed,
					Notation: tree.Source,
					Rendered: rendered,
					Result:   res,
				})
				continue
			}
			printResult(out, rendered, res)
		}
	}

	logCacheStats(p)

	if rollJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	}
	return nil
}

// runSandboxed rolls through the WASI module. Only numeric variables can
// cross the sandbox boundary.
func runSandboxed(cmd *cobra.Command, notation string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	h, err := wasmhost.Load(ctx, rollWasm, wasmhost.WithLogger(logger), wasmhost.WithTimeout(time.Minute))
	if err != nil {
		printError(cmd, "wasm", err)
		return err
	}
	defer h.Close(ctx)

	req := proto.Request{Notation: notation, Seed: rollSeed, Vars: map[string]float64{}}
	if req.Seed == 0 {
		req.Seed = cfg.Seed
	}
	for _, pair := range rollVars {
		name, value, ok := strings.Cut(pair, "=")
		f, err := strconv.ParseFloat(value, 64)
		if !ok || name == "" || err != nil {
			return fmt.Errorf("invalid variable %q: expected name=number with --wasm", pair)
		}
		req.Vars[name] = f
	}

	id := uuid.NewString()
	logger.Info("sandboxed roll", "id", id, "module", rollWasm, "seed", req.Seed)

	out := cmd.OutOrStdout()
	for range rollTimes {
		resp, err := h.Roll(ctx, req)
		if err != nil {
			printError(cmd, notation, err)
			return err
		}
		for _, r := range resp.Results {
			if rollJSON {
				fmt.Fprintf(out, "%s\n", r.Detail)
				continue
			}
			value := "NaN"
			if r.Value != nil {
				value = expr.FormatNumber(*r.Value)
			}
			fmt.Fprintf(out, "%s = %s\n", r.Notation, value)
			for _, s := range r.Statuses {
				fmt.Fprintf(out, "  %s\n", s)
			}
		}
	}
	return nil
}

// parseVars turns name=value pairs into variables. Values that are not
// numbers are parsed as notation, so "--var weapon=1d8" rolls each time.
func parseVars(p *parser.Parser, pairs []string) (expr.Vars, error) {
	vars := make(expr.Vars, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q: expected name=value", pair)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			vars[name] = f
			continue
		}
		tree, err := p.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		vars[name] = tree
	}
	return vars, nil
}

func printResult(w io.Writer, rendered string, res *types.Result) {
	fmt.Fprintf(w, "%s = %s\n", rendered, expr.FormatNumber(res.Value))
	for _, s := range collectStatuses(res) {
		fmt.Fprintf(w, "  %s: %s\n", s.Op, s.Text)
	}
	if rollTrace {
		writeTrace(w, res, 1)
	}
}

// collectStatuses gathers statuses from res and everything it came from,
// outermost first.
func collectStatuses(res *types.Result) []types.Status {
	var out []types.Status
	var walk func(r *types.Result)
	seen := map[*types.Result]bool{}
	walk = func(r *types.Result) {
		if r == nil || seen[r] {
			return
		}
		seen[r] = true
		for _, s := range r.Statuses {
			if !containsStatus(out, s) {
				out = append(out, s)
			}
		}
		for _, p := range r.Prev {
			walk(p)
		}
	}
	walk(res)
	return out
}

func containsStatus(list []types.Status, s types.Status) bool {
	for _, x := range list {
		if x.Op == s.Op && x.Text == s.Text {
			return true
		}
	}
	return false
}

func writeTrace(w io.Writer, res *types.Result, depth int) {
	indent := strings.Repeat("  ", depth)
	source := ""
	if res.Source != nil {
		source = res.Source.String()
	}
	if res.IsDice() {
		fmt.Fprintf(w, "%s%s -> %s %v\n", indent, source, expr.FormatNumber(res.Value), res.Rolls)
	} else {
		fmt.Fprintf(w, "%s%s -> %s\n", indent, source, expr.FormatNumber(res.Value))
	}
	for _, p := range res.Prev {
		writeTrace(w, p, depth+1)
	}
}
