package deepq

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/towerlab/jengaq/network"
)

// valueNet bundles the networks needed to learn a single action-value
// function: a batch-1 policy network for action selection, a train
// network that gradients flow through, and a frozen target network
// that produces bootstrap values. The train network owns the loss
// graph; the policy and target networks share its weights through
// wholesale copies.
type valueNet struct {
	policyNet network.NeuralNet
	policyVM  G.VM

	trainNet network.NeuralNet
	trainVM  G.VM
	solver   G.Solver

	targetNet network.NeuralNet
	targetVM  G.VM

	// Input nodes on the train network's graph
	selectedActions  *G.Node
	nextActionValues *G.Node
	rewards          *G.Node
	discounts        *G.Node

	numActions int
	batchSize  int
}

// newValueNet creates the policy, train, and target networks for one
// action-value function and assembles the squared Bellman error loss
// on the train network's graph.
func newValueNet(features, numActions, batchSize int, hiddenSizes []int,
	biases []bool, activations []*network.Activation, init G.InitWFn,
	solver G.Solver) (*valueNet, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("newvaluenet: batch size must be positive")
	}

	// Policy network for selecting actions one observation at a time
	g := G.NewGraph()
	policyNet, err := network.NewMultiHeadMLP(features, 1, numActions, g,
		hiddenSizes, biases, init, activations)
	if err != nil {
		return nil, fmt.Errorf("newvaluenet: could not create policy "+
			"network: %v", err)
	}
	policyVM := G.NewTapeMachine(policyNet.Graph())

	// Train network with the update batch size
	trainNet, err := policyNet.CloneWithBatch(batchSize)
	if err != nil {
		return nil, fmt.Errorf("newvaluenet: could not create train "+
			"network: %v", err)
	}
	gTrain := trainNet.Graph()

	// Bootstrap target: r + discount * max_a' Q'(s', a'). The discount
	// placeholder holds γ(1-done) so terminal transitions contribute
	// only their reward.
	nextActionValues := G.NewMatrix(gTrain, tensor.Float64,
		G.WithShape(batchSize, numActions), G.WithName("targetActionVals"))
	rewards := G.NewVector(gTrain, tensor.Float64, G.WithShape(batchSize),
		G.WithName("reward"))
	discounts := G.NewVector(gTrain, tensor.Float64, G.WithShape(batchSize),
		G.WithName("discount"))

	updateTarget := G.Must(G.Max(nextActionValues, 1))
	updateTarget = G.Must(G.HadamardProd(updateTarget, discounts))
	updateTarget = G.Must(G.Add(updateTarget, rewards))

	// Predicted value of the action that was actually taken
	selectedActions := G.NewMatrix(gTrain, tensor.Float64,
		G.WithShape(batchSize, numActions), G.WithName("selectedActions"))
	selectedActionValues := G.Must(G.HadamardProd(trainNet.Prediction(),
		selectedActions))
	selectedActionValues = G.Must(G.Sum(selectedActionValues, 1))

	losses := G.Must(G.Sub(updateTarget, selectedActionValues))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))

	if _, err := G.Grad(cost, trainNet.Learnables()...); err != nil {
		return nil, fmt.Errorf("newvaluenet: could not compute gradient: %v",
			err)
	}
	trainVM := G.NewTapeMachine(gTrain,
		G.BindDualValues(trainNet.Learnables()...))

	// Target network starts as a copy of the train network and is only
	// updated through sync()
	targetNet, err := policyNet.CloneWithBatch(batchSize)
	if err != nil {
		return nil, fmt.Errorf("newvaluenet: could not create target "+
			"network: %v", err)
	}
	targetVM := G.NewTapeMachine(targetNet.Graph())

	return &valueNet{
		policyNet: policyNet,
		policyVM:  policyVM,

		trainNet: trainNet,
		trainVM:  trainVM,
		solver:   solver,

		targetNet: targetNet,
		targetVM:  targetVM,

		selectedActions:  selectedActions,
		nextActionValues: nextActionValues,
		rewards:          rewards,
		discounts:        discounts,

		numActions: numActions,
		batchSize:  batchSize,
	}, nil
}

// actionValues returns the policy network's value estimates for each
// action at the argument observation.
func (v *valueNet) actionValues(obs []float64) ([]float64, error) {
	if err := v.policyNet.SetInput(obs); err != nil {
		return nil, fmt.Errorf("actionvalues: could not set input: %v", err)
	}
	if err := v.policyVM.RunAll(); err != nil {
		return nil, fmt.Errorf("actionvalues: could not run policy "+
			"network: %v", err)
	}

	data := v.policyNet.Output().Data().([]float64)
	values := make([]float64, len(data))
	copy(values, data)

	v.policyVM.Reset()
	return values, nil
}

// step performs a single gradient step on the train network given a
// batch of transitions, then copies the updated weights into the
// policy network so that action selection sees them.
func (v *valueNet) step(states, selected, rewards, discounts,
	nextStates []float64) error {
	// Bootstrap values come from the frozen target network
	if err := v.targetNet.SetInput(nextStates); err != nil {
		return fmt.Errorf("step: could not set target network input: %v", err)
	}
	if err := v.targetVM.RunAll(); err != nil {
		return fmt.Errorf("step: could not run target network: %v", err)
	}
	if err := G.Let(v.nextActionValues, v.targetNet.Output()); err != nil {
		return fmt.Errorf("step: could not set next action values: %v", err)
	}
	v.targetVM.Reset()

	selectedTensor := tensor.New(
		tensor.WithShape(v.batchSize, v.numActions),
		tensor.WithBacking(selected),
	)
	if err := G.Let(v.selectedActions, selectedTensor); err != nil {
		return fmt.Errorf("step: could not set selected actions: %v", err)
	}

	rewardTensor := tensor.New(tensor.WithShape(v.batchSize),
		tensor.WithBacking(rewards))
	if err := G.Let(v.rewards, rewardTensor); err != nil {
		return fmt.Errorf("step: could not set rewards: %v", err)
	}

	discountTensor := tensor.New(tensor.WithShape(v.batchSize),
		tensor.WithBacking(discounts))
	if err := G.Let(v.discounts, discountTensor); err != nil {
		return fmt.Errorf("step: could not set discounts: %v", err)
	}

	if err := v.trainNet.SetInput(states); err != nil {
		return fmt.Errorf("step: could not set train network input: %v", err)
	}
	if err := v.trainVM.RunAll(); err != nil {
		return fmt.Errorf("step: could not run train network: %v", err)
	}
	if err := v.solver.Step(v.trainNet.Model()); err != nil {
		return fmt.Errorf("step: could not update train network: %v", err)
	}
	v.trainVM.Reset()

	// Keep the selection weights in lockstep with the train network
	if err := v.policyNet.Set(v.trainNet); err != nil {
		return fmt.Errorf("step: could not update policy network: %v", err)
	}
	return nil
}

// sync copies the train network's weights into the target network.
func (v *valueNet) sync() error {
	if err := v.targetNet.Set(v.trainNet); err != nil {
		return fmt.Errorf("sync: could not update target network: %v", err)
	}
	return nil
}
