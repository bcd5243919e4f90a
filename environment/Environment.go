// Package environment outlines the interface that concrete Jenga
// games must satisfy to be driven by the training loop
package environment

import (
	"github.com/towerlab/jengaq/jenga"
	"github.com/towerlab/jengaq/timestep"
)

// Environment implements a playable Jenga game. An Environment renders
// the tower to a visual observation, executes block removals, and
// supplies the stability measurements and fallen flag that the reward
// computation needs.
//
// Environments are stepped synchronously by a single training loop;
// implementations need not be safe for concurrent use.
type Environment interface {
	// Reset rebuilds the tower and returns the first timestep of a
	// new episode
	Reset() (timestep.TimeStep, error)

	// Step removes the block named by the action, lets the tower
	// settle, and returns the resulting timestep together with
	// whether the episode has ended. The reward on the returned
	// timestep is computed from the stability change and fallen flag
	// that the removal caused.
	//
	// Stepping with an action that is out of range or already taken
	// is a caller error and returns a non-nil error.
	Step(action jenga.Action) (timestep.TimeStep, bool, error)

	// TakenActions returns the set of actions executed so far in the
	// current episode. The returned map must not be mutated by the
	// caller.
	TakenActions() map[jenga.Action]bool

	// Stability returns the current tilt measurement of the tower.
	// Lower values mean a steadier tower.
	Stability() float64

	// Fallen returns whether the tower has collapsed
	Fallen() bool

	// ObservationSize returns the length of the observation vectors
	// produced by Reset and Step
	ObservationSize() int
}
