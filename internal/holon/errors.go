package holon

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParticle = errors.New("holon: invalid particle (NaN or Inf state)")
	ErrNonPositiveMass = errors.New("holon: particle mass must be positive")
	ErrEmptyPopulation = errors.New("holon: empty particle population")
)

// TickError wraps a failure during one tick with its step and simulation
// time.
type TickError struct {
	Step int
	Time float64
	Err  error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Step, e.Time, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
