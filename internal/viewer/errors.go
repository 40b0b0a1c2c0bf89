package viewer

import (
	"errors"
	"fmt"
)

// ErrStopped is returned by OnTick once the loop has stopped.
var ErrStopped = errors.New("viewer: loop stopped")

// SimulationError wraps a failure of the simulation or the surface after
// construction. It is fatal to the loop.
type SimulationError struct {
	Op   string // "reset", "step", "render", "convert" or "present"
	Tick uint64 // Tick during which the failure happened, 0 for construction
	Err  error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("viewer: %s failed at tick %d: %v", e.Op, e.Tick, e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}
