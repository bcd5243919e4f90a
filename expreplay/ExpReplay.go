// Package expreplay implements fixed-capacity experience replay for
// transitions of the block-removal game. Once capacity is reached the
// oldest stored transition is evicted first, and batches are sampled
// uniformly at random without replacement.
package expreplay

import (
	"container/list"
	"fmt"

	"github.com/towerlab/jengaq/timestep"
	"github.com/towerlab/jengaq/utils/intutils"
)

// Config implements a specific configuration of an ExperienceReplayer
type Config struct {
	MinReplayCapacity int
	MaxReplayCapacity int
	SampleSize        int
}

// Create creates and returns the ExperienceReplayer with the specified
// Config. Eviction is always oldest-first; sampling is uniform without
// replacement.
func (c Config) Create(featureSize int, seed int64) (ExperienceReplayer,
	error) {
	remover := NewFifoSelector(1)
	sampler := NewUniformSelector(c.SampleSize, seed)

	return New(remover, sampler, c.MinReplayCapacity, c.MaxReplayCapacity,
		featureSize)
}

// ExperienceReplayer implements an experience replay buffer
type ExperienceReplayer interface {
	// Add adds a transition to the buffer, evicting the oldest stored
	// transition if the buffer is full
	Add(t timestep.Transition) error

	// Sample draws a batch of experience from the buffer and returns
	// it as parallel slices: states, level indices, colour indices,
	// rewards, next states, and done flags. Done flags are exactly
	// 0 or 1.
	Sample() ([]float64, []float64, []float64, []float64, []float64,
		[]float64, error)

	// Capacity returns the current number of samples in the buffer
	Capacity() int

	// MaxCapacity returns the maximum allowable samples in the buffer
	MaxCapacity() int

	// MinCapacity returns the number of samples required to be in
	// the buffer before the buffer can be sampled
	MinCapacity() int

	// BatchSize returns the number of samples returned by Sample()
	BatchSize() int
}

// cache implements a concrete ExperienceReplayer
type cache struct {
	stateCache     []float64
	levelCache     []float64
	colorCache     []float64
	rewardCache    []float64
	nextStateCache []float64
	doneCache      []float64

	// The indices of the cache that are empty and have no data
	emptyIndices []int

	// The indices of the cache that have data
	inUseIndices []int

	// orderOfInsert records the chronological order of inserts. For
	// i > j, the data at index orderOfInsert[i] was inserted into the
	// buffer after the data at index orderOfInsert[j]
	orderOfInsert *list.List

	// Outlines how data is removed and sampled
	remover Selector
	sampler Selector

	minCapacity int
	maxCapacity int
	featureSize int
}

// New creates and returns a new ExperienceReplayer. The remover and
// sampler parameters are Selectors which determine how data is evicted
// and sampled from the replay buffer. The featureSize parameter
// defines the length of the flattened state vectors.
func New(remover, sampler Selector, minCapacity, maxCapacity,
	featureSize int) (ExperienceReplayer, error) {
	if minCapacity <= 0 {
		return nil, fmt.Errorf("new: minCapacity must be > 0")
	}
	if maxCapacity < 1 {
		return nil, fmt.Errorf("new: maxCapacity must be >= 1")
	}
	if maxCapacity < sampler.BatchSize() {
		return nil, fmt.Errorf("new: cannot have batch size (%v) > max "+
			"buffer capacity (%v)", sampler.BatchSize(), maxCapacity)
	}
	if minCapacity < sampler.BatchSize() {
		return nil, fmt.Errorf("new: cannot have batch size (%v) > min "+
			"buffer capacity (%v)", sampler.BatchSize(), minCapacity)
	}

	remover.registerAsRemover()

	emptyIndices := make([]int, maxCapacity)
	for i := 0; i < maxCapacity; i++ {
		emptyIndices[i] = i
	}

	return &cache{
		stateCache:     make([]float64, maxCapacity*featureSize),
		levelCache:     make([]float64, maxCapacity),
		colorCache:     make([]float64, maxCapacity),
		rewardCache:    make([]float64, maxCapacity),
		nextStateCache: make([]float64, maxCapacity*featureSize),
		doneCache:      make([]float64, maxCapacity),

		emptyIndices:  emptyIndices,
		inUseIndices:  make([]int, 0, maxCapacity),
		orderOfInsert: list.New(),

		remover: remover,
		sampler: sampler,

		minCapacity: minCapacity,
		maxCapacity: maxCapacity,
		featureSize: featureSize,
	}, nil
}

// insertOrder returns a slice of at most n indices which describes
// the order that the first n data were inserted into the buffer.
//
// For example, if this function returns []int{9, 15, 1}, this means
// that the oldest data in the buffer is at position 9, the next oldest
// at position 15, and the next at position 1.
func (c *cache) insertOrder(n int) []int {
	size := intutils.Min(n, c.Capacity())
	order := make([]int, size)
	element := c.orderOfInsert.Front()

	for i := 0; i < size; i++ {
		order[i] = element.Value.(int)
		element = element.Next()
		if element == nil {
			break
		}
	}
	return order
}

// removeFront drops the earliest tracked insertion index from the
// insertion order
func (c *cache) removeFront() {
	c.orderOfInsert.Remove(c.orderOfInsert.Front())
}

// String returns the string representation of the cache
func (c *cache) String() string {
	baseStr := "Indices Available: %v \nIndices Used: %v \nLevels: %v " +
		"\nColours: %v \nRewards: %v \nDones: %v"
	return fmt.Sprintf(baseStr, c.emptyIndices, c.inUseIndices, c.levelCache,
		c.colorCache, c.rewardCache, c.doneCache)
}

// BatchSize returns the number of samples drawn by Sample()
func (c *cache) BatchSize() int {
	return c.sampler.BatchSize()
}

// Capacity returns the current number of elements in the cache that
// are available for sampling
func (c *cache) Capacity() int {
	return len(c.inUseIndices)
}

// MaxCapacity returns the maximum number of elements that are allowed
// in the cache
func (c *cache) MaxCapacity() int {
	return c.maxCapacity
}

// MinCapacity returns the minimum number of elements required in the
// cache before sampling is allowed
func (c *cache) MinCapacity() int {
	return c.minCapacity
}

// remove evicts elements from the cache at indices chosen by the
// cache's remover
func (c *cache) remove() {
	indices := c.remover.choose(c)
	for _, index := range indices {
		for i := range c.inUseIndices {
			if c.inUseIndices[i] == index {
				c.inUseIndices[i] = c.inUseIndices[len(c.inUseIndices)-1]
				c.inUseIndices = c.inUseIndices[:len(c.inUseIndices)-1]
				break
			}
		}
		c.emptyIndices = append(c.emptyIndices, index)
	}
}

// Add adds a transition to the cache, evicting the oldest transition
// first when the cache is full
func (c *cache) Add(t timestep.Transition) error {
	if !t.Action.Valid() {
		return fmt.Errorf("add: illegal action %v", t.Action)
	}
	if t.State.Len() != c.featureSize || t.NextState.Len() != c.featureSize {
		return fmt.Errorf("add: invalid feature size \n\twant(%v)"+
			"\n\thave(%v)", c.featureSize, t.State.Len())
	}

	if c.Capacity() >= c.maxCapacity {
		c.remove()
	}

	index := c.emptyIndices[len(c.emptyIndices)-1]
	c.emptyIndices = c.emptyIndices[:len(c.emptyIndices)-1]
	c.orderOfInsert.PushBack(index)
	c.inUseIndices = append(c.inUseIndices, index)

	stateInd := index * c.featureSize
	copy(c.stateCache[stateInd:stateInd+c.featureSize],
		t.State.RawVector().Data)
	copy(c.nextStateCache[stateInd:stateInd+c.featureSize],
		t.NextState.RawVector().Data)

	c.levelCache[index] = float64(t.Action.Level)
	c.colorCache[index] = float64(t.Action.Color)
	c.rewardCache[index] = t.Reward

	// Done flags must be exactly 0 or 1: they mask the continuation
	// value in the Bellman target
	if t.Done {
		c.doneCache[index] = 1.0
	} else {
		c.doneCache[index] = 0.0
	}

	return nil
}

// Sample samples and returns a batch of transitions from the replay
// buffer as parallel slices
func (c *cache) Sample() ([]float64, []float64, []float64, []float64,
	[]float64, []float64, error) {
	if c.Capacity() == 0 {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errEmptyCache,
		}
		return nil, nil, nil, nil, nil, nil, err
	}
	if c.Capacity() < c.MinCapacity() || c.Capacity() < c.BatchSize() {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errInsufficientSamples,
		}
		return nil, nil, nil, nil, nil, nil, err
	}

	indices := c.sampler.choose(c)

	stateBatch := make([]float64, c.BatchSize()*c.featureSize)
	nextStateBatch := make([]float64, c.BatchSize()*c.featureSize)
	for i, index := range indices {
		batchStartInd := i * c.featureSize
		expStartInd := index * c.featureSize
		copy(stateBatch[batchStartInd:batchStartInd+c.featureSize],
			c.stateCache[expStartInd:expStartInd+c.featureSize],
		)
		copy(nextStateBatch[batchStartInd:batchStartInd+c.featureSize],
			c.nextStateCache[expStartInd:expStartInd+c.featureSize],
		)
	}

	levelBatch := make([]float64, c.BatchSize())
	colorBatch := make([]float64, c.BatchSize())
	rewardBatch := make([]float64, c.BatchSize())
	doneBatch := make([]float64, c.BatchSize())
	for i, index := range indices {
		levelBatch[i] = c.levelCache[index]
		colorBatch[i] = c.colorCache[index]
		rewardBatch[i] = c.rewardCache[index]
		doneBatch[i] = c.doneCache[index]
	}

	return stateBatch, levelBatch, colorBatch, rewardBatch, nextStateBatch,
		doneBatch, nil
}
