//go:build wasip1

// Command godice-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "notation": "4d6kh3, 1d20+$str", "vars": {"str": 3}, "seed": 42 }
//	stdout: { "results": [ { "notation": ..., "value": ..., ... } ] }  on success
//	        { "error":  "<message>" }                                  on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o godice.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"notation":"4d6kh3"}' | wasmtime godice.wasm
//
// Usage from Go, see internal/wasmhost.
package main

import (
	"encoding/json"
	"math"
	"os"

	"github.com/sandrolain/godice"
	"github.com/sandrolain/godice/internal/wasmhost/proto"
	"github.com/sandrolain/godice/pkg/expr"
	"github.com/sandrolain/godice/pkg/random"
)

func writeResponse(r proto.Response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req proto.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(proto.Response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	results, err := roll(req)
	if err != nil {
		writeResponse(proto.Response{Error: err.Error()}, 1)
	}
	writeResponse(proto.Response{Results: results}, 0)
}

func roll(req proto.Request) ([]proto.Roll, error) {
	trees, err := godice.ParseList(req.Notation)
	if err != nil {
		return nil, err
	}

	vars := make(godice.Vars, len(req.Vars))
	for k, v := range req.Vars {
		vars[k] = v
	}
	seed := req.Seed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return nil, err
		}
	}
	ctx, err := expr.NewContext(vars, expr.WithSeed(seed))
	if err != nil {
		return nil, err
	}

	out := make([]proto.Roll, 0, len(trees))
	for _, tree := range trees {
		res, err := tree.EvalContext(ctx)
		if err != nil {
			return nil, err
		}
		detail, err := json.Marshal(res)
		if err != nil {
			return nil, err
		}
		r := proto.Roll{
			Notation: tree.Source,
			Rolls:    res.Rolls,
			Detail:   detail,
		}
		if v := res.Value; !math.IsNaN(v) && !math.IsInf(v, 0) {
			r.Value = &v
		}
		for _, s := range res.Statuses {
			r.Statuses = append(r.Statuses, s.Text)
		}
		out = append(out, r)
	}
	return out, nil
}
