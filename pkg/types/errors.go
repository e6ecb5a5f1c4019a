package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a dice notation error code.
type ErrorCode string

// Error codes grouped by the stage that raises them.
const (
	// L0xxx: Lexer errors
	ErrUnexpectedToken ErrorCode = "L0101"
	ErrMissingOperator ErrorCode = "L0102"

	// P0xxx: Structural parse errors
	ErrEmptyExpression     ErrorCode = "P0201"
	ErrUnmatchedDelimiter  ErrorCode = "P0202"
	ErrMissingOperand      ErrorCode = "P0203"
	ErrUnreducedExpression ErrorCode = "P0204"
	ErrTooManyElements     ErrorCode = "P0205"

	// E0xxx: Evaluation errors
	ErrOperandVariant      ErrorCode = "E0301"
	ErrDiceCount           ErrorCode = "E0302"
	ErrDiceSides           ErrorCode = "E0303"
	ErrExplosionLimit      ErrorCode = "E0304"
	ErrUnsatisfiableReroll ErrorCode = "E0305"
	ErrNotRerollable       ErrorCode = "E0306"
	ErrInvalidVariable     ErrorCode = "E0307"

	// R0xxx: Registration errors
	ErrDuplicateName        ErrorCode = "R0401"
	ErrConflictingToken     ErrorCode = "R0402"
	ErrConflictingDelimiter ErrorCode = "R0403"
	ErrInvalidDefinition    ErrorCode = "R0404"
)

// Error represents a structured dice notation error.
//
// Position is the byte offset into the notation for lex and parse errors,
// and -1 for errors raised during evaluation or registration.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new notation error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Errorf creates a new error without position information.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...), -1)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// IsCode reports whether err, or any error it wraps, is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
