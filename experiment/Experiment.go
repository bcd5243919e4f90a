// Package experiment implements functionality for running an
// experiment: repeatedly playing episodes with an agent in an
// environment while Trackers record the generated data.
package experiment

import (
	"github.com/towerlab/jengaq/experiment/tracker"
)

// Experiment outlines structs that can run experiments. The Run()
// method runs episodes until the maximum timestep limit is reached.
// The RunEpisode() method runs a single episode and reports whether
// the experiment has finished.
//
// Experiments send each environment TimeStep to their Trackers, which
// cache the data they care about in RAM. The Save() method then writes
// all cached data to disk, usually after the experiment has been run.
type Experiment interface {
	Run() error
	RunEpisode() (bool, error)

	// Save all tracked data to disk
	Save()

	// Register adds a tracker.Tracker to the (possibly already
	// running) experiment. Useful if data should only be tracked after
	// a specified event.
	Register(t tracker.Tracker)
}
