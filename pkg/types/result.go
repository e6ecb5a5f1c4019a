package types

import (
	"encoding/json"
	"math"
)

// Variant tags the shape of a Result.
type Variant uint8

const (
	// VariantAny is only meaningful in definitions, where it means "no requirement".
	VariantAny Variant = iota
	// VariantBasic is a plain numeric result.
	VariantBasic
	// VariantDice is a result that carries individual die rolls.
	VariantDice
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantBasic:
		return "basic"
	case VariantDice:
		return "dice"
	default:
		return "any"
	}
}

// Accepts reports whether a result of variant got satisfies the requirement v.
func (v Variant) Accepts(got Variant) bool {
	return v == VariantAny || v == got
}

// Status is an annotation attached to a Result by an operator.
// Statuses propagate upward without altering the numeric value.
type Status struct {
	Op      string    `json:"op"`
	Text    string    `json:"text"`
	Results []*Result `json:"results,omitempty"`
}

// Result is the value and provenance produced by evaluating one tree node.
//
// Results are treated as immutable once returned. Operators that pass an
// operand through must call Derive rather than modify the operand.
type Result struct {
	Source   Node
	Value    float64
	Prev     []*Result
	Statuses []Status
	Variant  Variant

	// Dice fields, only meaningful when Variant is VariantDice.
	Rolls     []int
	RollCount int
	MaxRoll   int
	MinRoll   *int
}

// NewBasic creates a basic result.
func NewBasic(source Node, value float64, prev ...*Result) *Result {
	return &Result{
		Source:  source,
		Value:   value,
		Prev:    prev,
		Variant: VariantBasic,
	}
}

// IsDice reports whether r carries die rolls.
func (r *Result) IsDice() bool {
	return r != nil && r.Variant == VariantDice
}

// LowestFace returns the lowest face of the die that produced r.
func (r *Result) LowestFace() int {
	if r.MinRoll != nil {
		return *r.MinRoll
	}
	return 1
}

// Derive returns a copy of r attributed to source.
// Slices are copied so the derived result can be changed freely.
func (r *Result) Derive(source Node) *Result {
	c := *r
	c.Source = source
	c.Prev = append([]*Result(nil), r.Prev...)
	c.Statuses = append([]Status(nil), r.Statuses...)
	c.Rolls = append([]int(nil), r.Rolls...)
	if r.MinRoll != nil {
		m := *r.MinRoll
		c.MinRoll = &m
	}
	return &c
}

// AddStatus appends a status to r.
func (r *Result) AddStatus(s Status) {
	r.Statuses = append(r.Statuses, s)
}

// Sum returns the sum of rolls.
func Sum(rolls []int) float64 {
	var total int
	for _, v := range rolls {
		total += v
	}
	return float64(total)
}

// resultJSON is the wire shape used by MarshalJSON.
type resultJSON struct {
	Source    string    `json:"source,omitempty"`
	Value     *float64  `json:"value"`
	Variant   string    `json:"variant"`
	Rolls     []int     `json:"rolls,omitempty"`
	RollCount int       `json:"rollCount,omitempty"`
	MaxRoll   int       `json:"maxRoll,omitempty"`
	MinRoll   *int      `json:"minRoll,omitempty"`
	Statuses  []Status  `json:"statuses,omitempty"`
	Prev      []*Result `json:"prev,omitempty"`
}

// MarshalJSON implements json.Marshaler.
// The source node is rendered as notation and NaN values encode as null.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Variant:  r.Variant.String(),
		Statuses: r.Statuses,
		Prev:     r.Prev,
	}
	if r.Source != nil {
		out.Source = r.Source.String()
	}
	if !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0) {
		v := r.Value
		out.Value = &v
	}
	if r.Variant == VariantDice {
		out.Rolls = r.Rolls
		out.RollCount = r.RollCount
		out.MaxRoll = r.MaxRoll
		out.MinRoll = r.MinRoll
	}
	return json.Marshal(out)
}
