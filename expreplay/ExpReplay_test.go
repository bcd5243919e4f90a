package expreplay

import (
	"testing"

	"github.com/towerlab/jengaq/jenga"
	"github.com/towerlab/jengaq/timestep"
	"gonum.org/v1/gonum/mat"
)

const testFeatures int = 3

// transitionWithReward returns a transition whose reward tags it so
// that individual stored transitions can be identified in a batch
func transitionWithReward(reward float64, done bool) timestep.Transition {
	state := mat.NewVecDense(testFeatures, []float64{reward, 0, 0})
	nextState := mat.NewVecDense(testFeatures, []float64{reward + 0.5, 0, 0})

	return timestep.Transition{
		State:     state,
		Action:    jenga.Action{Level: 1, Color: jenga.Blue},
		Reward:    reward,
		NextState: nextState,
		Done:      done,
	}
}

func newTestBuffer(t *testing.T, minCapacity, maxCapacity,
	batchSize int) ExperienceReplayer {
	t.Helper()

	buffer, err := New(NewFifoSelector(1),
		NewUniformSelector(batchSize, 14), minCapacity, maxCapacity,
		testFeatures)
	if err != nil {
		t.Fatalf("could not create buffer: %v", err)
	}
	return buffer
}

func TestAddEvictsOldestAtCapacity(t *testing.T) {
	maxCapacity := 5
	buffer := newTestBuffer(t, 5, maxCapacity, 5)

	for i := 0; i <= maxCapacity; i++ {
		err := buffer.Add(transitionWithReward(float64(i), false))
		if err != nil {
			t.Fatalf("could not add transition %v: %v", i, err)
		}
	}

	if buffer.Capacity() != maxCapacity {
		t.Errorf("capacity exceeded \n\twant(%v)\n\thave(%v)", maxCapacity,
			buffer.Capacity())
	}

	// Sampling the full buffer should never return the first-pushed
	// transition, which was evicted
	_, _, _, rewards, _, _, err := buffer.Sample()
	if err != nil {
		t.Fatalf("could not sample: %v", err)
	}
	for _, reward := range rewards {
		if reward == 0.0 {
			t.Error("evicted transition still retrievable")
		}
	}
}

func TestSampleDistinct(t *testing.T) {
	batchSize := 4
	buffer := newTestBuffer(t, batchSize, 10, batchSize)

	for i := 0; i < 6; i++ {
		if err := buffer.Add(transitionWithReward(float64(i), false)); err != nil {
			t.Fatalf("could not add transition: %v", err)
		}
	}

	_, _, _, rewards, _, _, err := buffer.Sample()
	if err != nil {
		t.Fatalf("could not sample: %v", err)
	}
	if len(rewards) != batchSize {
		t.Fatalf("wrong batch size \n\twant(%v)\n\thave(%v)", batchSize,
			len(rewards))
	}

	seen := make(map[float64]bool)
	for _, reward := range rewards {
		if seen[reward] {
			t.Errorf("transition with reward %v sampled twice in one batch",
				reward)
		}
		seen[reward] = true
	}
}

func TestSampleInsufficientSamples(t *testing.T) {
	buffer := newTestBuffer(t, 4, 10, 4)

	if err := buffer.Add(transitionWithReward(1.0, false)); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}

	_, _, _, _, _, _, err := buffer.Sample()
	if !IsInsufficientSamples(err) {
		t.Errorf("expected insufficient samples error, got %v", err)
	}
}

func TestSampleEmptyBuffer(t *testing.T) {
	buffer := newTestBuffer(t, 1, 10, 1)

	_, _, _, _, _, _, err := buffer.Sample()
	if !IsEmptyBuffer(err) {
		t.Errorf("expected empty buffer error, got %v", err)
	}
}

func TestDoneFlagsAreBinary(t *testing.T) {
	buffer := newTestBuffer(t, 2, 10, 2)

	if err := buffer.Add(transitionWithReward(1.0, true)); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}
	if err := buffer.Add(transitionWithReward(2.0, false)); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}

	_, _, _, _, _, dones, err := buffer.Sample()
	if err != nil {
		t.Fatalf("could not sample: %v", err)
	}
	for _, done := range dones {
		if done != 0.0 && done != 1.0 {
			t.Errorf("done flag not exactly 0 or 1: %v", done)
		}
	}
}

func TestAddRejectsIllegalAction(t *testing.T) {
	buffer := newTestBuffer(t, 1, 10, 1)

	transition := transitionWithReward(1.0, false)
	transition.Action = jenga.Action{Level: jenga.MaxLevel, Color: jenga.Blue}

	if err := buffer.Add(transition); err == nil {
		t.Error("expected error adding out-of-range action")
	}
}
