//go:build js && wasm

// Command godice-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `godice` object with the following API:
//
//	godice.version()                      → string
//	godice.roll(notation, varsJSON, seed) → resultJSON  (throws on error)
//	godice.parse(notation)                → { roll(varsJSON, seed) → resultJSON, text }  (throws on error)
//
// varsJSON may be omitted or empty; a seed of 0 or undefined picks one.
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o godice.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	require('./wasm_exec.js')
//	// ... instantiate godice.wasm with a Go() instance, then:
//	const res = JSON.parse(godice.roll('4d6kh3+$str', '{"str":3}', 42))
//	console.log(res.value, res.rolls)
package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/godice"
	"github.com/sandrolain/godice/pkg/expr"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	js.Global().Get("Error").New(msg)
	panic(msg)
}

// evalOptions reads the optional vars JSON and seed arguments.
func evalOptions(fn string, args []js.Value) (godice.Vars, []expr.EvalOption) {
	var vars godice.Vars
	if len(args) > 0 && args[0].Type() == js.TypeString && args[0].String() != "" {
		var raw map[string]float64
		if err := json.Unmarshal([]byte(args[0].String()), &raw); err != nil {
			jsThrow(fmt.Sprintf("%s: invalid vars JSON: %v", fn, err))
		}
		vars = make(godice.Vars, len(raw))
		for k, v := range raw {
			vars[k] = v
		}
	}
	var opts []expr.EvalOption
	if len(args) > 1 && args[1].Type() == js.TypeNumber && args[1].Int() > 0 {
		opts = append(opts, expr.WithSeed(uint64(args[1].Int())))
	}
	return vars, opts
}

func marshal(fn string, res *godice.Result) string {
	out, err := json.Marshal(res)
	if err != nil {
		jsThrow(fmt.Sprintf("%s: marshal result: %v", fn, err))
	}
	return string(out)
}

// jsRoll implements godice.roll(notation, varsJSON, seed) → resultJSON.
func jsRoll(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("godice.roll requires at least 1 argument: notation (string)")
	}
	vars, opts := evalOptions("godice.roll", args[1:])
	res, err := godice.Roll(args[0].String(), vars, opts...)
	if err != nil {
		jsThrow(fmt.Sprintf("godice.roll: %v", err))
	}
	return marshal("godice.roll", res)
}

// jsParse implements godice.parse(notation) → { roll(varsJSON, seed) → resultJSON, text }.
// The returned object keeps take-list state between rolls.
func jsParse(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("godice.parse requires 1 argument: notation (string)")
	}
	tree, err := godice.Parse(args[0].String())
	if err != nil {
		jsThrow(fmt.Sprintf("godice.parse: %v", err))
	}

	rollFn := js.FuncOf(func(_ js.Value, innerArgs []js.Value) interface{} {
		vars, opts := evalOptions("parsed.roll", innerArgs)
		res, e := tree.Eval(vars, opts...)
		if e != nil {
			jsThrow(fmt.Sprintf("parsed.roll: %v", e))
		}
		return marshal("parsed.roll", res)
	})

	return js.ValueOf(map[string]interface{}{
		"roll": rollFn,
		"text": tree.String(),
	})
}

func main() {
	api := map[string]interface{}{
		"roll":  js.FuncOf(jsRoll),
		"parse": js.FuncOf(jsParse),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return godice.Version()
		}),
	}
	js.Global().Set("godice", js.ValueOf(api))

	// Block forever; the JS event loop owns execution from here.
	select {}
}
