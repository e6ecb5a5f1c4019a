// Package proto defines the JSON messages exchanged with the godice WASI
// module over stdin and stdout.
package proto

import "encoding/json"

// Request asks the module to roll one or more comma-separated expressions.
type Request struct {
	Notation string             `json:"notation"`
	Vars     map[string]float64 `json:"vars,omitempty"`
	// Seed makes the rolls reproducible. Zero lets the module pick one.
	Seed uint64 `json:"seed,omitempty"`
}

// Roll is the outcome of one expression.
type Roll struct {
	Notation string `json:"notation"`
	// Value is nil when the total is not a number.
	Value    *float64 `json:"value"`
	Rolls    []int    `json:"rolls,omitempty"`
	Statuses []string `json:"statuses,omitempty"`
	// Detail is the full result with provenance.
	Detail json.RawMessage `json:"detail,omitempty"`
}

// Response carries either the rolls or an error message.
type Response struct {
	Results []Roll `json:"results,omitempty"`
	Error   string `json:"error,omitempty"`
}
