package tracker

import (
	ts "github.com/towerlab/jengaq/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment. For the tower this is the number of blocks removed
// before the episode ended.
//
// Note that an episode must finish for this Tracker to save its data.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) Tracker {
	var t EpisodeLength
	t.filename = filename
	return &t
}

// Track caches the episode length whenever the timestep passed to it
// is the last timestep in an episode.
func (e *EpisodeLength) Track(t ts.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number))
	}
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() {
	save(e.filename, e.episodeLengths)
}
