// Package outcome defines the error taxonomy shared by every workflow.
// Each kind carries its wire code and HTTP status, defined once here so
// the handlers never hold their own status/code tables.
package outcome

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a recoverable workflow failure.
type Kind int

const (
	// KindInvalidData marks malformed or semantically invalid input:
	// a bad quantity, an unknown product reference, or a zero-row update/delete.
	KindInvalidData Kind = iota
	// KindStockProblem marks a requested quantity exceeding available stock.
	KindStockProblem
	// KindNotFound marks a malformed identifier or a missing record on sale lookups.
	KindNotFound
)

// Code returns the wire-level error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindStockProblem:
		return "stock_problem"
	case KindNotFound:
		return "not_found"
	default:
		return "invalid_data"
	}
}

// HTTPStatus returns the transport status the kind maps to.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindStockProblem, KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

// Error is a structured workflow outcome carrying a kind and a human-readable message.
// Storage faults are never wrapped into an Error; they propagate as plain errors.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// InvalidData builds an invalid-data outcome.
func InvalidData(message string) *Error {
	return &Error{Kind: KindInvalidData, Message: message}
}

// InvalidDataf builds an invalid-data outcome with a formatted message.
func InvalidDataf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidData, Message: fmt.Sprintf(format, args...)}
}

// StockProblem builds a stock-problem outcome.
func StockProblem(message string) *Error {
	return &Error{Kind: KindStockProblem, Message: message}
}

// NotFound builds a not-found outcome.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// As extracts an *Error from an error chain.
// Returns false for storage faults and other plain errors.
func As(err error) (*Error, bool) {
	var oe *Error
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}
