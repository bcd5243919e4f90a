package tracker

import (
	env "github.com/towerlab/jengaq/environment"
	ts "github.com/towerlab/jengaq/timestep"
)

// Falls tracks whether each episode in an experiment ended with the
// tower collapsing. The tracker is registered with the environment it
// observes and reads the collapse state directly from it, since the
// final reward mixes the collapse penalty with the removal's base
// reward and stability credit. An episode is recorded as 1 if the
// tower had fallen when the episode ended and 0 otherwise.
type Falls struct {
	environment env.Environment
	falls       []float64
	filename    string
}

// NewFalls returns a new Falls tracker observing e which will save its
// data at the specified location filename
func NewFalls(e env.Environment, filename string) Tracker {
	var t Falls
	t.environment = e
	t.filename = filename
	return &t
}

// Track caches whether the tower has collapsed whenever the timestep
// passed to it is the last in an episode.
func (f *Falls) Track(t ts.TimeStep) {
	if !t.Last() {
		return
	}

	if f.environment.Fallen() {
		f.falls = append(f.falls, 1.0)
	} else {
		f.falls = append(f.falls, 0.0)
	}
}

// Save saves the data tracked by the Falls Tracker to disk.
func (f *Falls) Save() {
	save(f.filename, f.falls)
}
