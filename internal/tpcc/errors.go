package tpcc

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrConnection          = errors.New("connection failure")
	ErrTimeout             = errors.New("timeout")
	ErrInvalidInput        = errors.New("invalid input")
)

// Entity names the table a NotFoundError refers to.
type Entity string

const (
	EntityWarehouse Entity = "warehouse"
	EntityDistrict  Entity = "district"
	EntityCustomer  Entity = "customer"
	EntityItem      Entity = "item"
	EntityStock     Entity = "stock"
)

// NotFoundError reports a referenced row that does not exist. It matches ErrNotFound.
type NotFoundError struct {
	Entity Entity
	Key    string
}

// NotFound builds a NotFoundError whose key is formatted like "w_id=1 d_id=2".
func NotFound(entity Entity, format string, args ...any) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found (%s)", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TxError wraps a driver error with the failure kind it was classified as.
// errors.Is matches both Kind and the wrapped driver error.
type TxError struct {
	Op   string
	Kind error
	Err  error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *TxError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Outcome maps an error to the label used in metrics and API responses.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint_violation"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrConnection):
		return "connection_failure"
	default:
		return "error"
	}
}
