package tower

import (
	"testing"

	"github.com/towerlab/jengaq/jenga"
	"github.com/towerlab/jengaq/vision"
)

func TestNewTowerStartsAnEpisode(t *testing.T) {
	env, step, err := New(13, 0)
	if err != nil {
		t.Fatalf("could not create tower: %v", err)
	}

	if !step.First() {
		t.Error("first timestep of an episode is not marked First")
	}
	if step.Observation.Len() != vision.Features {
		t.Errorf("observation has %d features but expected %d",
			step.Observation.Len(), vision.Features)
	}
	if env.RemainingBlocks() != jenga.NumActions() {
		t.Errorf("a fresh tower has %d blocks but expected %d",
			env.RemainingBlocks(), jenga.NumActions())
	}
	if len(env.TakenActions()) != 0 {
		t.Error("a fresh tower has removed blocks")
	}
	if env.Fallen() {
		t.Error("a fresh tower is marked as fallen")
	}
}

func TestStepRemovesBlock(t *testing.T) {
	env, _, err := New(13, 0)
	if err != nil {
		t.Fatalf("could not create tower: %v", err)
	}

	// Removing a block from the topmost level leaves the rest of the
	// tower standing
	action := jenga.Action{Level: jenga.MaxLevel - 1, Color: jenga.Yellow}
	step, last, err := env.Step(action)
	if err != nil {
		t.Fatalf("could not remove block: %v", err)
	}

	if last {
		t.Error("removing a single top block ended the episode")
	}
	if env.RemainingBlocks() != jenga.NumActions()-1 {
		t.Errorf("tower has %d blocks after one removal but expected %d",
			env.RemainingBlocks(), jenga.NumActions()-1)
	}
	if !env.TakenActions()[action] {
		t.Error("removed block is not recorded as taken")
	}
	if step.Number != 1 {
		t.Errorf("timestep number is %d after one removal", step.Number)
	}
}

func TestStepRejectsIllegalActions(t *testing.T) {
	env, _, err := New(13, 0)
	if err != nil {
		t.Fatalf("could not create tower: %v", err)
	}

	action := jenga.Action{Level: jenga.MaxLevel - 1, Color: jenga.Green}
	if _, _, err := env.Step(action); err != nil {
		t.Fatalf("could not remove block: %v", err)
	}

	if _, _, err := env.Step(action); err == nil {
		t.Error("removing the same block twice did not return an error")
	}
	if _, _, err := env.Step(jenga.Action{Level: jenga.MaxLevel,
		Color: jenga.Blue}); err == nil {
		t.Error("removing a block from a level that does not exist did " +
			"not return an error")
	}
}

func TestEpisodeEndsAtStepLimit(t *testing.T) {
	env, _, err := New(13, 2)
	if err != nil {
		t.Fatalf("could not create tower: %v", err)
	}

	top := jenga.MaxLevel - 1
	if _, last, err := env.Step(jenga.Action{Level: top,
		Color: jenga.Yellow}); err != nil || last {
		t.Fatalf("first removal ended the episode: last %v, err %v", last,
			err)
	}

	_, last, err := env.Step(jenga.Action{Level: top, Color: jenga.Green})
	if err != nil {
		t.Fatalf("could not remove block: %v", err)
	}
	if !last {
		t.Error("episode did not end at the step limit")
	}
}

func TestObservationsAreNormalized(t *testing.T) {
	env, step, err := New(13, 0)
	if err != nil {
		t.Fatalf("could not create tower: %v", err)
	}

	obs := step.Observation.RawVector().Data
	for i, value := range obs {
		if value < -1.0 || value > 1.0 {
			t.Fatalf("observation feature %d is %v, outside [-1, 1]", i,
				value)
		}
	}

	step, _, err = env.Step(jenga.Action{Level: jenga.MaxLevel - 1,
		Color: jenga.Blue})
	if err != nil {
		t.Fatalf("could not remove block: %v", err)
	}
	for i, value := range step.Observation.RawVector().Data {
		if value < -1.0 || value > 1.0 {
			t.Fatalf("observation feature %d is %v, outside [-1, 1]", i,
				value)
		}
	}
}

func TestResetRebuildsTower(t *testing.T) {
	env, _, err := New(13, 0)
	if err != nil {
		t.Fatalf("could not create tower: %v", err)
	}

	actions := []jenga.Action{
		{Level: jenga.MaxLevel - 1, Color: jenga.Yellow},
		{Level: jenga.MaxLevel - 1, Color: jenga.Green},
	}
	for _, action := range actions {
		if _, _, err := env.Step(action); err != nil {
			t.Fatalf("could not remove block: %v", err)
		}
	}

	step, err := env.Reset()
	if err != nil {
		t.Fatalf("could not reset tower: %v", err)
	}
	if !step.First() {
		t.Error("reset did not return a First timestep")
	}
	if env.RemainingBlocks() != jenga.NumActions() {
		t.Errorf("reset tower has %d blocks but expected %d",
			env.RemainingBlocks(), jenga.NumActions())
	}
	if len(env.TakenActions()) != 0 {
		t.Error("reset tower still records removed blocks")
	}
}
