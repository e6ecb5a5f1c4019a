package expr

import "github.com/sandrolain/godice/pkg/types"

// memo is a write-once result slot.
//
// Memoization is the one sanctioned mutation of an otherwise immutable
// node: a cacheable node stores its first successful result here and
// returns it on every later evaluation, whatever the context.
type memo struct {
	result *types.Result
}

func (m *memo) get() (*types.Result, bool) {
	return m.result, m.result != nil
}

func (m *memo) store(enabled bool, r *types.Result) {
	if enabled && m.result == nil {
		m.result = r
	}
}
