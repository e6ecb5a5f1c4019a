package expr

import (
	"strconv"

	"github.com/sandrolain/godice/pkg/types"
)

// Constant is a numeric literal. Constants are always cacheable.
type Constant struct {
	Value float64
	memo  memo
}

// NewConstant creates a constant node.
func NewConstant(v float64) *Constant {
	return &Constant{Value: v}
}

// Eval implements types.Node.
func (c *Constant) Eval(*types.Context) (*types.Result, error) {
	if r, ok := c.memo.get(); ok {
		return r, nil
	}
	r := types.NewBasic(c, c.Value)
	c.memo.store(true, r)
	return r, nil
}

// Render implements types.Node.
func (c *Constant) Render(*types.Context) string {
	return c.String()
}

// String implements types.Node.
func (c *Constant) String() string {
	return FormatNumber(c.Value)
}

// Cacheable implements types.Node.
func (c *Constant) Cacheable() bool { return true }

// FormatNumber renders a number the way notation is written:
// integers without a fractional part, everything else in the shortest form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
