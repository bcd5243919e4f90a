// Package agent defines the agent interfaces for the block-removal
// game
package agent

import (
	"github.com/towerlab/jengaq/environment"
	"github.com/towerlab/jengaq/jenga"
	"github.com/towerlab/jengaq/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights, and a
// Policy which chooses actions in each state. The Policy chooses which
// actions are taken, and the Learner uses these actions to update the
// Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how weights are
// updated.
type Learner interface {
	// Step performs a single update to the learner. Step is a no-op
	// when too little experience has been observed to learn from.
	Step() error

	// Observe records that an action led to some timestep
	Observe(action jenga.Action, nextStep timestep.TimeStep) error

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. The Policy and Learner
// of an agent share the same underlying weights so that any changes
// the Learner makes are reflected in the actions the Policy chooses.
type Policy interface {
	// SelectAction returns the composite action to take at timestep t
	SelectAction(t timestep.TimeStep) jenga.Action

	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}

// Config represents a configuration from which an Agent can be
// constructed.
type Config interface {
	// Validate returns an error describing whether the configuration
	// is valid
	Validate() error

	// CreateAgent creates the Agent that the Config describes on a
	// given environment
	CreateAgent(env environment.Environment, seed int64) (Agent, error)
}
