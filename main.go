package main

import (
	"fmt"
	"log"

	"github.com/towerlab/jengaq/agent/deepq"
	"github.com/towerlab/jengaq/environment/tower"
	"github.com/towerlab/jengaq/experiment"
	"github.com/towerlab/jengaq/experiment/tracker"
	"github.com/towerlab/jengaq/expreplay"
	"github.com/towerlab/jengaq/initwfn"
	"github.com/towerlab/jengaq/network"
	"github.com/towerlab/jengaq/solver"
)

func main() {
	var seed int64 = 192382

	// Create the environment
	env, _, err := tower.New(uint64(seed), 0)
	if err != nil {
		log.Fatalf("could not create tower: %v", err)
	}

	// Weight initializer and solver shared by both value networks
	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		log.Fatalf("could not create weight initializer: %v", err)
	}
	sol, err := solver.NewDefaultAdam(1e-4, 32)
	if err != nil {
		log.Fatalf("could not create solver: %v", err)
	}

	// Create the learning algorithm
	config := deepq.Config{
		PolicyLayers: []int{512, 256},
		Biases:       []bool{true, true},
		Activations: []*network.Activation{
			network.ReLU(),
			network.ReLU(),
		},
		InitWFn: init,
		Solver:  sol,

		Gamma: 0.99,

		EpsilonStart: 0.9,
		EpsilonEnd:   0.05,
		EpsilonDecay: 200,

		ExpReplay: expreplay.Config{
			MinReplayCapacity: 32,
			MaxReplayCapacity: 10_000,
			SampleSize:        32,
		},

		TargetUpdateInterval: 100,
	}
	agent, err := deepq.New(env, config, seed)
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}

	// Experiment
	returns := tracker.NewReturn("./returns.bin")
	falls := tracker.NewFalls(env, "./falls.bin")
	e := experiment.NewOnline(env, agent, 50_000, seed, returns, falls)
	if err := e.Run(); err != nil {
		log.Fatalf("experiment failed: %v", err)
	}
	e.Save()

	data := tracker.LoadData("./returns.bin")
	if len(data) > 10 {
		data = data[len(data)-10:]
	}
	fmt.Println(data)
}
