package speckle

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks an unrecognized operation or enhancement kind.
	ErrConfiguration = errors.New("speckle: configuration error")

	// ErrInvariant marks an input that violates a precondition of the filter,
	// such as an inverted hole-size range or a mask of the wrong shape.
	ErrInvariant = errors.New("speckle: invariant violation")
)

// ConfigurationError reports a setting value the filter does not know.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("speckle: unrecognized %s %q", e.Field, e.Value)
}

// Is makes errors.Is(err, ErrConfiguration) succeed.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InvariantError reports the precondition that failed. Err, when set, is
// the underlying cause.
type InvariantError struct {
	Condition string
	Err       error
}

func (e *InvariantError) Error() string {
	return "speckle: invariant violated: " + e.Condition
}

// Is makes errors.Is(err, ErrInvariant) succeed.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}
