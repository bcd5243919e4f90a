// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"github.com/towerlab/jengaq/jenga"
	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either the
// first environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment. The
// Observation is the preprocessed visual capture of the tower and the
// Reward is the reward earned by the action that led to this step.
type TimeStep struct {
	stepType    StepType
	Reward      float64
	Observation *mat.VecDense
	Number      int
}

// New constructs a new TimeStep
func New(t StepType, reward float64, obs *mat.VecDense, number int) TimeStep {
	return TimeStep{t, reward, obs, number}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.stepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.stepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Step Number:  %v"

	return fmt.Sprintf(str, t.stepType, t.Reward, t.Number)
}

// Transition is one recorded step of experience. It is created by the
// training loop and owned exclusively by the replay buffer once
// stored; it is never mutated after creation. Done records whether
// NextState was terminal, that is, whether the tower fell or was fully
// disassembled.
type Transition struct {
	State     *mat.VecDense
	Action    jenga.Action
	Reward    float64
	NextState *mat.VecDense
	Done      bool
}

// NewTransition packages two consecutive timesteps and the action
// taken between them into a Transition. The reward of the transition
// is the reward delivered with the resulting timestep.
func NewTransition(step TimeStep, action jenga.Action,
	nextStep TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		NextState: nextStep.Observation,
		Done:      nextStep.Last(),
	}
}
