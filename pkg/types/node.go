package types

import (
	"log/slog"
	"math/rand/v2"
)

// Node is an expression tree node.
type Node interface {
	// Eval evaluates the node. ctx may be nil.
	Eval(ctx *Context) (*Result, error)
	// Render re-renders the notation, substituting bound variables from ctx.
	Render(ctx *Context) string
	// String re-renders the notation without a context.
	String() string
	// Cacheable reports whether the node memoizes its first result.
	Cacheable() bool
}

// Recounter is implemented by nodes that can produce a copy of themselves
// rolling a different number of dice.
type Recounter interface {
	WithCount(n int) (Node, bool)
}

// ElementRemover is implemented by group nodes whose elements can be
// permanently removed after selection.
type ElementRemover interface {
	RemoveElement(i int)
}

// RandSource draws uniform integers in [0, n).
type RandSource interface {
	IntN(n int) int
}

// Context carries per-evaluation state.
// It lives only for the duration of one Eval call.
type Context struct {
	Vars   map[string]Node
	Rand   RandSource
	Logger *slog.Logger
}

// Lookup returns the node bound to name.
func (c *Context) Lookup(name string) (Node, bool) {
	if c == nil || c.Vars == nil {
		return nil, false
	}
	n, ok := c.Vars[name]
	return n, ok
}

// IntN draws a uniform integer in [0, n) from the context's source,
// or from the process-wide source when none is set.
func (c *Context) IntN(n int) int {
	if c == nil || c.Rand == nil {
		return rand.IntN(n)
	}
	return c.Rand.IntN(n)
}

// Log returns the context logger, or slog.Default().
func (c *Context) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
