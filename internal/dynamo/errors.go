package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for world operations.
var (
	// ErrUnknownBody indicates a handle that does not name a live body.
	ErrUnknownBody = errors.New("dynamo: unknown body handle")

	// ErrConstraintExists indicates the constraint was already added.
	ErrConstraintExists = errors.New("dynamo: constraint already in world")

	// ErrUnknownConstraint indicates the constraint is not in the world.
	ErrUnknownConstraint = errors.New("dynamo: constraint not in world")

	// ErrInvalidStep indicates a non-positive fixed step or a negative elapsed time.
	ErrInvalidStep = errors.New("dynamo: invalid step parameters")

	// ErrInvalidState indicates a body whose state became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid body state (NaN or Inf detected)")
)

// StepError wraps an error with the context of the step that produced it.
type StepError struct {
	Step    int
	Time    float64
	Body    Handle
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) body %d: %s", e.Step, e.Time, e.Body, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
