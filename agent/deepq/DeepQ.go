// Package deepq implements a hierarchical deep Q-learning agent for
// tower block removal. The agent factors the action space into two
// sub-problems, each learned by its own action-value network: which
// level to remove a block from, and which colour of block to remove.
// Both networks share a single replay buffer and are updated from the
// same sampled transitions.
package deepq

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/towerlab/jengaq/agent"
	"github.com/towerlab/jengaq/environment"
	"github.com/towerlab/jengaq/expreplay"
	"github.com/towerlab/jengaq/jenga"
	"github.com/towerlab/jengaq/timestep"
	"github.com/towerlab/jengaq/utils/floatutils"
)

// Hierarchical is an ε-greedy deep Q-learning agent that selects
// composite actions by running two independent action-value networks,
// one over tower levels and one over block colours.
type Hierarchical struct {
	level *valueNet
	color *valueNet

	gamma float64

	// Exploration schedule. Each greedy/explore decision decays epsilon
	// toward epsilonEnd with time constant epsilonDecay.
	epsilon      float64
	epsilonEnd   float64
	epsilonDecay float64
	stepsDone    int

	rng *rand.Rand

	replay    expreplay.ExperienceReplayer
	batchSize int

	targetUpdateInterval int
	gradientSteps        int

	prevStep timestep.TimeStep

	eval bool
}

// New creates a hierarchical deep Q-learning agent acting in env.
func New(env environment.Environment, c Config, seed int64) (*Hierarchical,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: invalid configuration: %v", err)
	}
	features := env.ObservationSize()

	// Each sub-problem gets its own solver so that per-parameter
	// optimizer state is not shared between the two networks.
	levelNet, err := newValueNet(features, jenga.MaxLevel, c.BatchSize(),
		c.PolicyLayers, c.Biases, c.Activations, c.InitWFn.InitWFn(),
		c.Solver.Create())
	if err != nil {
		return nil, fmt.Errorf("new: could not create level network: %v", err)
	}
	colorNet, err := newValueNet(features, jenga.BlocksPerLevel, c.BatchSize(),
		c.PolicyLayers, c.Biases, c.Activations, c.InitWFn.InitWFn(),
		c.Solver.Create())
	if err != nil {
		return nil, fmt.Errorf("new: could not create colour network: %v", err)
	}

	replay, err := c.ExpReplay.Create(features, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create replay buffer: %v", err)
	}

	return &Hierarchical{
		level: levelNet,
		color: colorNet,

		gamma: c.Gamma,

		epsilon:      c.EpsilonStart,
		epsilonEnd:   c.EpsilonEnd,
		epsilonDecay: c.EpsilonDecay,

		rng: rand.New(rand.NewSource(seed)),

		replay:    replay,
		batchSize: c.BatchSize(),

		targetUpdateInterval: c.TargetUpdateInterval,
	}, nil
}

// SelectAction returns the composite action to take at timestep t. With
// probability 1-ε both sub-problem networks act greedily on the current
// observation; otherwise a level and colour are drawn uniformly at
// random. Each call advances the exploration schedule unless the agent
// is in evaluation mode.
func (d *Hierarchical) SelectAction(t timestep.TimeStep) jenga.Action {
	// The schedule advances before the explore/exploit decision, so
	// the decision is made against the freshly decayed rate
	if !d.eval {
		d.stepsDone++
		d.epsilon = d.epsilonEnd + (d.epsilon-d.epsilonEnd)*
			math.Exp(-float64(d.stepsDone)/d.epsilonDecay)
	}

	threshold := d.epsilon
	if d.eval {
		threshold = 0.0
	}

	if d.rng.Float64() > threshold {
		obs := t.Observation.RawVector().Data

		levelValues, err := d.level.actionValues(obs)
		if err != nil {
			panic(fmt.Sprintf("selectaction: could not predict level "+
				"values: %v", err))
		}
		colorValues, err := d.color.actionValues(obs)
		if err != nil {
			panic(fmt.Sprintf("selectaction: could not predict colour "+
				"values: %v", err))
		}

		return jenga.Action{
			Level: d.argMax(levelValues),
			Color: jenga.ColorOf(d.argMax(colorValues)),
		}
	}

	return jenga.Action{
		Level: d.rng.Intn(jenga.MaxLevel),
		Color: jenga.ColorOf(d.rng.Intn(jenga.BlocksPerLevel)),
	}
}

// argMax returns the index of the maximum value, breaking ties
// uniformly at random.
func (d *Hierarchical) argMax(values []float64) int {
	_, indices := floatutils.MaxSlice(values)
	return indices[d.rng.Intn(len(indices))]
}

// ObserveFirst records the first timestep of an episode.
func (d *Hierarchical) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observefirst: timestep number %d is not the "+
			"first in an episode", t.Number)
	}
	d.prevStep = t
	return nil
}

// Observe stores the transition induced by taking action in the last
// observed state and arriving at nextStep.
func (d *Hierarchical) Observe(action jenga.Action,
	nextStep timestep.TimeStep) error {
	transition := timestep.NewTransition(d.prevStep, action, nextStep)
	if err := d.replay.Add(transition); err != nil {
		return fmt.Errorf("observe: could not store transition: %v", err)
	}
	d.prevStep = nextStep
	return nil
}

// Step samples a batch of transitions and performs one gradient step
// on each sub-problem network. If the replay buffer does not yet hold
// enough transitions to fill a batch, Step does nothing.
func (d *Hierarchical) Step() error {
	states, levels, colors, rewards, nextStates, dones, err :=
		d.replay.Sample()
	if expreplay.IsEmptyBuffer(err) || expreplay.IsInsufficientSamples(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("step: could not sample transitions: %v", err)
	}

	// γ(1-done): terminal transitions bootstrap nothing
	discounts := make([]float64, len(dones))
	for i, done := range dones {
		discounts[i] = d.gamma * (1.0 - done)
	}

	levelActions := oneHot(levels, jenga.MaxLevel)
	colorActions := oneHot(colors, jenga.BlocksPerLevel)

	if err := d.level.step(states, levelActions, rewards, discounts,
		nextStates); err != nil {
		return fmt.Errorf("step: could not update level network: %v", err)
	}
	if err := d.color.step(states, colorActions, rewards, discounts,
		nextStates); err != nil {
		return fmt.Errorf("step: could not update colour network: %v", err)
	}

	d.gradientSteps++
	if d.gradientSteps%d.targetUpdateInterval == 0 {
		if err := d.UpdateTargetNets(); err != nil {
			return fmt.Errorf("step: %v", err)
		}
	}
	return nil
}

// UpdateTargetNets copies the current learned weights of both
// sub-problem networks into their target networks.
func (d *Hierarchical) UpdateTargetNets() error {
	if err := d.level.sync(); err != nil {
		return fmt.Errorf("updatetargetnets: level network: %v", err)
	}
	if err := d.color.sync(); err != nil {
		return fmt.Errorf("updatetargetnets: colour network: %v", err)
	}
	return nil
}

// EndEpisode performs cleanup at the end of an episode.
func (d *Hierarchical) EndEpisode() {}

// Eval sets the agent to evaluation mode: action selection becomes
// fully greedy and the exploration schedule is left untouched.
func (d *Hierarchical) Eval() { d.eval = true }

// Train sets the agent to training mode.
func (d *Hierarchical) Train() { d.eval = false }

// IsEval returns whether the agent is in evaluation mode.
func (d *Hierarchical) IsEval() bool { return d.eval }

// Epsilon returns the current exploration rate.
func (d *Hierarchical) Epsilon() float64 { return d.epsilon }

// oneHot expands a slice of action indices into a flattened batch of
// one-hot rows of width numActions.
func oneHot(indices []float64, numActions int) []float64 {
	out := make([]float64, len(indices)*numActions)
	for i, index := range indices {
		out[i*numActions+int(index)] = 1.0
	}
	return out
}

// Interface compliance
var _ agent.Agent = (*Hierarchical)(nil)
