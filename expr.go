package devfft

import "fmt"

// AssignMode states how an expression's result combines with the
// destination's existing contents.
type AssignMode uint8

const (
	// Assign overwrites the destination with the transform result.
	Assign AssignMode = iota
	// AssignNegated would write the sign-flipped result. Not supported.
	AssignNegated
	// AssignAccumulate would add the result to the destination. Not
	// supported.
	AssignAccumulate
)

// Expr is a deferred transform: a transient pairing of a plan with an input
// vector, borrowing both and owning neither. It carries no result state.
//
// An Expr is consumed by exactly one Evaluate call and must not outlive the
// statement that produced it.
type Expr struct {
	plan     *Plan
	input    Vector
	consumed bool
}

// Evaluate writes the transform of the expression's input into output,
// in-place when output shares the input's buffer. Only the plain Assign mode
// is supported; AssignNegated and AssignAccumulate are rejected before any
// native call. Evaluate returns once the transform is enqueued, not when it
// completes on the device.
func (e *Expr) Evaluate(output Vector, mode AssignMode) error {
	switch mode {
	case Assign:
	case AssignNegated:
		return fmt.Errorf("%w: negated assignment of a transform", ErrUnsupported)
	case AssignAccumulate:
		return fmt.Errorf("%w: accumulating assignment of a transform", ErrUnsupported)
	default:
		return fmt.Errorf("%w: assign mode %d", ErrConfiguration, mode)
	}

	if e.consumed {
		return ErrExprConsumed
	}
	e.consumed = true

	return e.plan.execute(e.input, output)
}
