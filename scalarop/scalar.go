package scalarop

// Updater recomputes a scalar coefficient from its current value and the
// ambient (state, param, time) triple. Hooks must be deterministic and
// side-effect free; the package never calls them concurrently.
type Updater func(cur float64, state []float64, param any, tm float64) float64

// Operator is the common contract of every scalar coefficient expression.
//
// Semantics:
//   - Value collapses the expression to its current float64 (the "convert"
//     operation: a constant expression round-trips to a plain number).
//   - IsConstant reports whether no update hook exists anywhere in the tree.
//     Constant expressions are exempt from update traversal: Update returns
//     the receiver itself, UpdateInPlace is a no-op.
//   - IsZero reports whether the current value is exactly zero. For constant
//     expressions this is a structural guarantee; for updating expressions
//     it reflects the coefficients as of the last update.
//   - Update returns a new expression with refreshed coefficients, leaving
//     the receiver untouched. UpdateInPlace refreshes the receiver.
//   - Clone deep-copies the expression so that in-place updates on the copy
//     never touch the original; update hooks are shared.
type Operator interface {
	Value() float64
	IsConstant() bool
	IsZero() bool
	Update(state []float64, param any, tm float64) (Operator, error)
	UpdateInPlace(state []float64, param any, tm float64) error
	Clone() Operator
}

// Scalar is the leaf of the algebra: one float64 plus an optional Updater.
// A nil Updater marks the scalar constant.
type Scalar struct {
	val    float64
	update Updater
}

// New returns a constant scalar with the given value.
func New(v float64) *Scalar {
	return &Scalar{val: v}
}

// NewUpdating returns a scalar whose value is recomputed by f on every
// update. The initial value is v.
func NewUpdating(v float64, f Updater) *Scalar {
	return &Scalar{val: v, update: f}
}

// Value returns the current value.
func (s *Scalar) Value() float64 { return s.val }

// IsConstant reports whether the scalar carries no update hook.
func (s *Scalar) IsConstant() bool { return s.update == nil }

// IsZero reports whether the current value is exactly zero.
func (s *Scalar) IsZero() bool { return s.val == 0 }

// Update returns a scalar refreshed through the update hook. Constant
// scalars return the receiver unchanged.
func (s *Scalar) Update(state []float64, param any, tm float64) (Operator, error) {
	if s.update == nil {
		return s, nil
	}

	return &Scalar{val: s.update(s.val, state, param, tm), update: s.update}, nil
}

// UpdateInPlace refreshes the receiver through the update hook.
func (s *Scalar) UpdateInPlace(state []float64, param any, tm float64) error {
	if s.update == nil {
		return nil
	}
	s.val = s.update(s.val, state, param, tm)

	return nil
}

// Clone returns an independent copy; the hook is shared.
func (s *Scalar) Clone() Operator {
	return &Scalar{val: s.val, update: s.update}
}
