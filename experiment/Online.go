package experiment

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/towerlab/jengaq/agent"
	env "github.com/towerlab/jengaq/environment"
	"github.com/towerlab/jengaq/experiment/tracker"
	"github.com/towerlab/jengaq/jenga"
	ts "github.com/towerlab/jengaq/timestep"
	"github.com/towerlab/jengaq/utils/progressbar"
)

// Online is an Experiment that trains an agent online. No offline
// evaluation is performed.
type Online struct {
	environment  env.Environment
	agent        agent.Agent
	maxSteps     uint
	currentSteps uint
	trackers     []tracker.Tracker

	rng      *rand.Rand
	progress *progressbar.ProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, and the t parameter
// determines which data generated during the experiment is saved.
func NewOnline(e env.Environment, a agent.Agent, steps uint, seed int64,
	t ...tracker.Tracker) *Online {
	return &Online{
		environment: e,
		agent:       a,
		maxSteps:    steps,
		trackers:    t,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Register registers a tracker.Tracker with the experiment so that
// data generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment and returns
// whether the maximum timestep limit has been reached
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.environment.Reset()
	if err != nil {
		return false, fmt.Errorf("runepisode: could not reset "+
			"environment: %v", err)
	}
	if err := o.agent.ObserveFirst(step); err != nil {
		return false, fmt.Errorf("runepisode: %v", err)
	}
	o.track(step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		action := o.agent.SelectAction(step)

		// The agent selects levels and colours independently, so it may
		// name a block that was already removed this episode. Such
		// removals are replaced by a random legal one. If every block
		// has already been removed, the episode is over.
		if o.environment.TakenActions()[action] {
			var ok bool
			action, ok = o.randomLegalAction()
			if !ok {
				break
			}
		}

		step, _, err = o.environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runepisode: could not step "+
				"environment: %v", err)
		}
		o.track(step)

		if err := o.agent.Observe(action, step); err != nil {
			return false, fmt.Errorf("runepisode: %v", err)
		}
		if err := o.agent.Step(); err != nil {
			return false, fmt.Errorf("runepisode: could not step agent: %v",
				err)
		}

		if o.progress != nil {
			o.progress.Increment()
		}
	}
	o.agent.EndEpisode()

	return o.currentSteps >= o.maxSteps, nil
}

// randomLegalAction returns a block removal chosen uniformly from the
// blocks still standing. The second return value is false when no
// blocks remain.
func (o *Online) randomLegalAction() (jenga.Action, bool) {
	possible := jenga.PossibleActions(o.environment.TakenActions())
	if len(possible) == 0 {
		return jenga.Action{}, false
	}
	return possible[o.rng.Intn(len(possible))], true
}

// Run runs the entire experiment for all timesteps, displaying a
// progress bar on the terminal
func (o *Online) Run() error {
	o.progress = progressbar.NewProgressBar(65, int(o.maxSteps),
		time.Second, false)
	o.progress.Display()
	defer o.progress.Close()

	for {
		ended, err := o.RunEpisode()
		if err != nil {
			return err
		}
		if ended {
			return nil
		}
	}
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() {
	for _, t := range o.trackers {
		t.Save()
	}
}

// track caches the current timestep's data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, saver := range o.trackers {
		saver.Track(t)
	}
}

// Interface compliance
var _ Experiment = (*Online)(nil)
