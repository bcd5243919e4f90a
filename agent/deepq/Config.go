package deepq

import (
	"fmt"

	"github.com/towerlab/jengaq/agent"
	"github.com/towerlab/jengaq/environment"
	"github.com/towerlab/jengaq/expreplay"
	"github.com/towerlab/jengaq/initwfn"
	"github.com/towerlab/jengaq/network"
	"github.com/towerlab/jengaq/solver"
)

// Config implements a configuration for a hierarchical deep Q-learning
// agent. Both sub-problem networks share the same architecture,
// initialization, and solver settings.
type Config struct {
	PolicyLayers []int                 // Hidden layer sizes
	Biases       []bool                // Use bias on each hidden layer
	Activations  []*network.Activation // Activation on each hidden layer
	InitWFn      *initwfn.InitWFn
	Solver       *solver.Solver

	Gamma float64

	EpsilonStart float64
	EpsilonEnd   float64
	EpsilonDecay float64

	ExpReplay expreplay.Config

	// TargetUpdateInterval is the number of gradient steps between
	// wholesale copies of the learned weights into the target networks.
	TargetUpdateInterval int
}

// BatchSize returns the batch size of the agent constructed from this
// Config.
func (c Config) BatchSize() int {
	return c.ExpReplay.SampleSize
}

// Validate returns an error describing why the Config cannot be used
// to construct an agent, or nil if it can.
func (c Config) Validate() error {
	if len(c.PolicyLayers) != len(c.Biases) {
		return fmt.Errorf("invalid configuration: policy network must "+
			"have a bias flag for each layer \n\twant(%d) \n\thave(%d)",
			len(c.PolicyLayers), len(c.Biases))
	}
	if len(c.PolicyLayers) != len(c.Activations) {
		return fmt.Errorf("invalid configuration: policy network must "+
			"have an activation for each layer \n\twant(%d) \n\thave(%d)",
			len(c.PolicyLayers), len(c.Activations))
	}
	if c.InitWFn == nil {
		return fmt.Errorf("invalid configuration: no weight initializer")
	}
	if c.Solver == nil {
		return fmt.Errorf("invalid configuration: no solver")
	}

	if c.Gamma < 0.0 || c.Gamma > 1.0 {
		return fmt.Errorf("invalid configuration: discount must be in "+
			"[0, 1] but got %v", c.Gamma)
	}
	if c.EpsilonDecay <= 0.0 {
		return fmt.Errorf("invalid configuration: epsilon decay time "+
			"constant must be positive but got %v", c.EpsilonDecay)
	}
	if c.EpsilonEnd < 0.0 || c.EpsilonStart < c.EpsilonEnd {
		return fmt.Errorf("invalid configuration: epsilon must decay "+
			"from %v to %v", c.EpsilonStart, c.EpsilonEnd)
	}

	if c.BatchSize() < 1 {
		return fmt.Errorf("invalid configuration: batch size must be "+
			"positive but got %v", c.BatchSize())
	}
	if c.TargetUpdateInterval < 1 {
		return fmt.Errorf("invalid configuration: target update interval "+
			"must be positive but got %v", c.TargetUpdateInterval)
	}
	return nil
}

// CreateAgent creates a new hierarchical deep Q-learning agent acting
// in env.
func (c Config) CreateAgent(env environment.Environment,
	seed int64) (agent.Agent, error) {
	return New(env, c, seed)
}

// Interface compliance
var _ agent.Config = Config{}
