package scalarop

import "errors"

var (
	// ErrNilScalar indicates that a nil scalar operand was passed to a builder.
	ErrNilScalar = errors.New("scalarop: nil scalar operand")

	// ErrNoOperands indicates that a variadic builder received no operands.
	ErrNoOperands = errors.New("scalarop: at least one operand required")

	// ErrZeroScalar indicates an attempt to invert a scalar that is
	// constant and exactly zero. Zeros that appear only after an update are
	// caught later, at solve time, by the consuming operator.
	ErrZeroScalar = errors.New("scalarop: cannot invert zero scalar")
)
