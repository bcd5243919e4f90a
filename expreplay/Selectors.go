package expreplay

import (
	"math/rand"

	"github.com/towerlab/jengaq/utils/intutils"
)

// Selector implements functionality for choosing how data should be
// sampled and/or removed from an experience replay buffer
type Selector interface {
	// choose selects the indices at which data should be sampled from
	// the experience replay buffer
	choose(c *cache) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int

	// registerAsRemover registers a Selector as a remover
	//
	// Some Selectors require different behaviour if they are removers,
	// so they should be notified if they become a remover to add this
	// additional behaviour
	registerAsRemover()
}

// uniformSelector is a Selector which selects data from an experience
// replay buffer uniformly randomly without replacement, so a single
// batch never contains the same stored transition twice.
type uniformSelector struct {
	samples int
	rng     *rand.Rand
}

// NewUniformSelector returns a new Selector which selects data
// uniformly randomly, without replacement, from an experience replay
// buffer
func NewUniformSelector(samples int, seed int64) Selector {
	source := rand.NewSource(seed)
	rng := rand.New(source)

	return &uniformSelector{samples: samples, rng: rng}
}

// registerAsRemover implements Selector interface
func (u *uniformSelector) registerAsRemover() {}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

// choose selects a number of distinct indices at which to draw data
// from the buffer
func (u *uniformSelector) choose(c *cache) []int {
	size := intutils.Min(u.BatchSize(), c.Capacity())
	selected := make([]int, size)

	for i, index := range u.rng.Perm(c.Capacity())[:size] {
		selected[i] = c.inUseIndices[index]
	}

	return selected
}

// fifoSelector is a Selector which selects data from an experience
// replay buffer as first-in-first-out. Used as a remover of size 1, it
// implements the oldest-first eviction of a ring buffer.
type fifoSelector struct {
	samples int
	remover bool
}

// NewFifoSelector returns a new Selector which draws data from an
// experience replay buffer as FiFo.
func NewFifoSelector(samples int) Selector {
	return &fifoSelector{samples: samples, remover: false}
}

// registerAsRemover implements Selector interface
func (f *fifoSelector) registerAsRemover() {
	f.remover = true
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (f *fifoSelector) BatchSize() int {
	return f.samples
}

// choose selects a number of indices at which to draw data from the
// buffer, oldest first
func (f *fifoSelector) choose(c *cache) []int {
	size := intutils.Min(f.BatchSize(), c.Capacity())
	selected := make([]int, size)
	insertOrder := c.insertOrder(size)

	for i := 0; i < size; i++ {
		selected[i] = insertOrder[i]

		if f.remover {
			// A FiFo remover frees the indices at which data was
			// added earliest, so the front of the insertion order is
			// dropped with each choice
			c.removeFront()
		}
	}

	return selected
}
