package pager

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrStatementNotFound is returned when a statement id is not registered.
	ErrStatementNotFound = errors.New("pager: statement not found")

	// ErrPageInUse is returned when a Page is attached to a call while it is
	// still bound to another one.
	ErrPageInUse = errors.New("pager: page is already bound to an in-flight call")
)

// UnsupportedDialectError is returned when the configured dialect has no
// paging strategy.
type UnsupportedDialectError struct {
	Dialect string
}

// Error returns the error string.
func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("pager: unsupported dialect %q", e.Dialect)
}

// NewUnsupportedDialectError returns a new UnsupportedDialectError.
func NewUnsupportedDialectError(name string) *UnsupportedDialectError {
	return &UnsupportedDialectError{Dialect: name}
}

// IsUnsupportedDialect returns true if the error is an UnsupportedDialectError.
func IsUnsupportedDialect(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedDialectError
	return errors.As(err, &e)
}

// MissingTypeHandlerError is returned when a parameter of a statement has
// no converter to bind it with. It is a configuration defect.
type MissingTypeHandlerError struct {
	Param       string // Property name of the parameter mapping
	StatementID string // Statement that owns the mapping
}

// Error returns the error string.
func (e *MissingTypeHandlerError) Error() string {
	return fmt.Sprintf("pager: no type handler found for parameter %s of statement %s", e.Param, e.StatementID)
}

// NewMissingTypeHandlerError returns a new MissingTypeHandlerError.
func NewMissingTypeHandlerError(param, statementID string) *MissingTypeHandlerError {
	return &MissingTypeHandlerError{Param: param, StatementID: statementID}
}

// IsMissingTypeHandler returns true if the error is a MissingTypeHandlerError.
func IsMissingTypeHandler(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingTypeHandlerError
	return errors.As(err, &e)
}

// CountQueryError wraps a failure of the derived count query. The call it
// belongs to is aborted before any rewrite takes place.
type CountQueryError struct {
	StatementID string
	SQL         string
	Err         error
}

// Error returns the error string.
func (e *CountQueryError) Error() string {
	return fmt.Sprintf("pager: count query for %s: %v", e.StatementID, e.Err)
}

// Unwrap returns the underlying error.
func (e *CountQueryError) Unwrap() error {
	return e.Err
}

// NewCountQueryError returns a new CountQueryError.
func NewCountQueryError(statementID, sql string, err error) *CountQueryError {
	return &CountQueryError{StatementID: statementID, SQL: sql, Err: err}
}

// IsCountQueryError returns true if the error is a CountQueryError.
func IsCountQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *CountQueryError
	return errors.As(err, &e)
}

// StatementError wraps an error with the statement it occurred in.
type StatementError struct {
	StatementID string
	Op          string // Operation (e.g., "bind", "query", "scan")
	Err         error
}

// Error returns the error string.
func (e *StatementError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("pager: statement %s (%s): %v", e.StatementID, e.Op, e.Err)
	}
	return fmt.Sprintf("pager: statement %s: %v", e.StatementID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StatementError) Unwrap() error {
	return e.Err
}

// NewStatementError returns a new StatementError.
func NewStatementError(id, op string, err error) *StatementError {
	return &StatementError{StatementID: id, Op: op, Err: err}
}

// IsStatementError returns true if the error is a StatementError.
func IsStatementError(err error) bool {
	if err == nil {
		return false
	}
	var e *StatementError
	return errors.As(err, &e)
}
