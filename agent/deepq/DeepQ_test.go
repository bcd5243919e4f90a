package deepq

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/towerlab/jengaq/environment"
	"github.com/towerlab/jengaq/expreplay"
	"github.com/towerlab/jengaq/initwfn"
	"github.com/towerlab/jengaq/jenga"
	"github.com/towerlab/jengaq/network"
	"github.com/towerlab/jengaq/solver"
	"github.com/towerlab/jengaq/timestep"
)

// stubEnv provides observations of a fixed size without any physics
// behind them.
type stubEnv struct {
	features int
}

func (s stubEnv) Reset() (timestep.TimeStep, error) {
	obs := mat.NewVecDense(s.features, nil)
	return timestep.New(timestep.First, 0, obs, 0), nil
}

func (s stubEnv) Step(_ jenga.Action) (timestep.TimeStep, bool, error) {
	obs := mat.NewVecDense(s.features, nil)
	return timestep.New(timestep.Mid, 0, obs, 1), false, nil
}

func (s stubEnv) TakenActions() map[jenga.Action]bool { return nil }
func (s stubEnv) Stability() float64                  { return 0 }
func (s stubEnv) Fallen() bool                        { return false }
func (s stubEnv) ObservationSize() int                { return s.features }

func testConfig(t *testing.T, batchSize int) Config {
	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		t.Fatalf("could not create weight initializer: %v", err)
	}
	sol, err := solver.NewDefaultAdam(0.01, batchSize)
	if err != nil {
		t.Fatalf("could not create solver: %v", err)
	}

	return Config{
		PolicyLayers: []int{8},
		Biases:       []bool{true},
		Activations:  []*network.Activation{network.ReLU()},
		InitWFn:      init,
		Solver:       sol,

		Gamma: 0.99,

		EpsilonStart: 1.0,
		EpsilonEnd:   0.05,
		EpsilonDecay: 200,

		ExpReplay: expreplay.Config{
			MinReplayCapacity: batchSize,
			MaxReplayCapacity: 16,
			SampleSize:        batchSize,
		},

		TargetUpdateInterval: 2,
	}
}

func testAgent(t *testing.T, features, batchSize int) *Hierarchical {
	env := stubEnv{features: features}
	agent, err := New(env, testConfig(t, batchSize), 1)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}
	return agent
}

func randomObs(rng *rand.Rand, features int) *mat.VecDense {
	data := make([]float64, features)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewVecDense(features, data)
}

func TestSelectActionDecaysEpsilon(t *testing.T) {
	agent := testAgent(t, 4, 2)
	step := timestep.New(timestep.First, 0, mat.NewVecDense(4, nil), 0)

	last := agent.Epsilon()
	for i := 0; i < 100; i++ {
		agent.SelectAction(step)
		current := agent.Epsilon()
		if current >= last {
			t.Errorf("epsilon did not decay on step %d: last %v, "+
				"current %v", i, last, current)
		}
		if current < agent.epsilonEnd {
			t.Errorf("epsilon decayed below its floor: got %v, floor %v",
				current, agent.epsilonEnd)
		}
		last = current
	}
}

// zeroInitConfig returns a configuration whose networks start with all
// weights zero, so greedy selections are deterministic given the seed.
func zeroInitConfig(t *testing.T, batchSize int) Config {
	config := testConfig(t, batchSize)

	init, err := initwfn.NewZeroes()
	if err != nil {
		t.Fatalf("could not create weight initializer: %v", err)
	}
	config.InitWFn = init
	return config
}

func TestSelectActionComparesAgainstDecayedEpsilon(t *testing.T) {
	// With a near-instant decay epsilon reaches its floor of zero on
	// the very first selection, so the first training-mode selection
	// must already be greedy. A selection made against the rate from
	// before the decay would instead explore almost every time.
	config := zeroInitConfig(t, 2)
	config.EpsilonStart = 1.0
	config.EpsilonEnd = 0.0
	config.EpsilonDecay = 1e-9

	step := timestep.New(timestep.First, 0, mat.NewVecDense(4, nil), 0)
	for seed := int64(0); seed < 10; seed++ {
		trained, err := New(stubEnv{features: 4}, config, seed)
		if err != nil {
			t.Fatalf("could not create agent: %v", err)
		}
		greedy, err := New(stubEnv{features: 4}, config, seed)
		if err != nil {
			t.Fatalf("could not create agent: %v", err)
		}
		greedy.Eval()

		if got, want := trained.SelectAction(step),
			greedy.SelectAction(step); got != want {
			t.Errorf("seed %d: first training-mode selection %v is not "+
				"the greedy selection %v", seed, got, want)
		}
		if trained.Epsilon() != 0.0 {
			t.Errorf("seed %d: epsilon is %v after a near-instant decay",
				seed, trained.Epsilon())
		}
	}
}

func TestSelectActionEvalFreezesEpsilon(t *testing.T) {
	agent := testAgent(t, 4, 2)
	step := timestep.New(timestep.First, 0, mat.NewVecDense(4, nil), 0)

	agent.Eval()
	if !agent.IsEval() {
		t.Error("agent did not enter evaluation mode")
	}

	before := agent.Epsilon()
	for i := 0; i < 10; i++ {
		agent.SelectAction(step)
	}
	if agent.Epsilon() != before {
		t.Errorf("evaluation mode changed epsilon from %v to %v", before,
			agent.Epsilon())
	}

	agent.Train()
	agent.SelectAction(step)
	if agent.Epsilon() >= before {
		t.Error("epsilon did not decay after returning to training mode")
	}
}

func TestSelectActionReturnsLegalActions(t *testing.T) {
	agent := testAgent(t, 4, 2)
	rng := rand.New(rand.NewSource(13))

	for i := 0; i < 200; i++ {
		step := timestep.New(timestep.Mid, 0, randomObs(rng, 4), i)
		action := agent.SelectAction(step)
		if !action.Valid() {
			t.Fatalf("selected illegal action %v", action)
		}
	}
}

func TestStepWithoutEnoughTransitions(t *testing.T) {
	agent := testAgent(t, 4, 2)

	// An empty replay buffer should leave the networks untouched
	if err := agent.Step(); err != nil {
		t.Errorf("step with an empty replay buffer returned error: %v", err)
	}
	if agent.gradientSteps != 0 {
		t.Errorf("step with an empty replay buffer performed %d gradient "+
			"steps", agent.gradientSteps)
	}

	rng := rand.New(rand.NewSource(13))
	first := timestep.New(timestep.First, 0, randomObs(rng, 4), 0)
	if err := agent.ObserveFirst(first); err != nil {
		t.Fatalf("could not observe first step: %v", err)
	}
	next := timestep.New(timestep.Mid, 1.0, randomObs(rng, 4), 1)
	if err := agent.Observe(jenga.Action{Level: 0, Color: jenga.Blue},
		next); err != nil {
		t.Fatalf("could not observe transition: %v", err)
	}

	if err := agent.Step(); err != nil {
		t.Errorf("step with a single stored transition returned error: %v",
			err)
	}
	if agent.gradientSteps != 0 {
		t.Error("step updated the networks with fewer stored transitions " +
			"than the batch size")
	}
}

func TestStepUpdatesNetworks(t *testing.T) {
	agent := testAgent(t, 4, 2)
	rng := rand.New(rand.NewSource(13))

	step := timestep.New(timestep.First, 0, randomObs(rng, 4), 0)
	if err := agent.ObserveFirst(step); err != nil {
		t.Fatalf("could not observe first step: %v", err)
	}

	for i := 1; i <= 8; i++ {
		action := agent.SelectAction(step)
		step = timestep.New(timestep.Mid, rng.Float64(), randomObs(rng, 4), i)
		if err := agent.Observe(action, step); err != nil {
			t.Fatalf("could not observe transition: %v", err)
		}
		if err := agent.Step(); err != nil {
			t.Fatalf("could not step agent: %v", err)
		}
	}

	if agent.gradientSteps == 0 {
		t.Error("no gradient steps were performed with a full replay buffer")
	}
}

// learnableValues copies the current weight values of net's learnables
func learnableValues(net network.NeuralNet) [][]float64 {
	nodes := net.Learnables()
	values := make([][]float64, len(nodes))
	for i, node := range nodes {
		data := node.Value().Data().([]float64)
		values[i] = make([]float64, len(data))
		copy(values[i], data)
	}
	return values
}

func TestStepMasksTerminalBootstrapValues(t *testing.T) {
	const (
		features   = 3
		numActions = 4
		batch      = 2
	)

	newNet := func() *valueNet {
		init, err := initwfn.NewOnes()
		if err != nil {
			t.Fatalf("could not create weight initializer: %v", err)
		}
		sol, err := solver.NewVanilla(0.1, batch, -1)
		if err != nil {
			t.Fatalf("could not create solver: %v", err)
		}
		net, err := newValueNet(features, numActions, batch, []int{},
			[]bool{}, []*network.Activation{}, init.InitWFn(), sol.Create())
		if err != nil {
			t.Fatalf("could not create value network: %v", err)
		}
		return net
	}

	// With all weights and biases one, the predicted value of every
	// action at the zero state is exactly the bias, 1. Rewards of 1 on
	// terminal transitions then make the Bellman target equal the
	// prediction, so the update is a no-op only if the continuation
	// term is fully masked. The next states are nonzero, so any leak
	// of their values into the target moves the weights.
	states := make([]float64, batch*features)
	nextStates := []float64{1, 1, 1, 1, 1, 1}
	selected := oneHot([]float64{0, 0}, numActions)
	rewards := []float64{1, 1}

	terminal := newNet()
	before := learnableValues(terminal.trainNet)
	if err := terminal.step(states, selected, rewards, []float64{0, 0},
		nextStates); err != nil {
		t.Fatalf("could not step value network: %v", err)
	}
	after := learnableValues(terminal.trainNet)
	for i := range before {
		for j := range before[i] {
			if math.Abs(before[i][j]-after[i][j]) > 1e-12 {
				t.Fatalf("terminal transitions still bootstrapped: "+
					"learnable %d index %d moved from %v to %v", i, j,
					before[i][j], after[i][j])
			}
		}
	}

	// The same batch with the episode continuing bootstraps from the
	// next state's values and must move the weights
	continuing := newNet()
	before = learnableValues(continuing.trainNet)
	if err := continuing.step(states, selected, rewards,
		[]float64{0.99, 0.99}, nextStates); err != nil {
		t.Fatalf("could not step value network: %v", err)
	}
	after = learnableValues(continuing.trainNet)

	moved := false
	for i := range before {
		for j := range before[i] {
			if math.Abs(before[i][j]-after[i][j]) > 1e-6 {
				moved = true
			}
		}
	}
	if !moved {
		t.Error("non-terminal transitions did not update the weights")
	}
}

func TestUpdateTargetNetsCopiesWeights(t *testing.T) {
	agent := testAgent(t, 4, 2)
	rng := rand.New(rand.NewSource(13))

	// Train for a few steps so the learned weights drift away from the
	// targets
	step := timestep.New(timestep.First, 0, randomObs(rng, 4), 0)
	if err := agent.ObserveFirst(step); err != nil {
		t.Fatalf("could not observe first step: %v", err)
	}
	for i := 1; i <= 5; i++ {
		action := agent.SelectAction(step)
		step = timestep.New(timestep.Mid, 1.0, randomObs(rng, 4), i)
		if err := agent.Observe(action, step); err != nil {
			t.Fatalf("could not observe transition: %v", err)
		}
		if err := agent.Step(); err != nil {
			t.Fatalf("could not step agent: %v", err)
		}
	}

	if err := agent.UpdateTargetNets(); err != nil {
		t.Fatalf("could not update target networks: %v", err)
	}

	for _, net := range []*valueNet{agent.level, agent.color} {
		trained := net.trainNet.Learnables()
		target := net.targetNet.Learnables()
		if len(trained) != len(target) {
			t.Fatalf("train and target networks have a different number "+
				"of learnables: %d and %d", len(trained), len(target))
		}

		for i := range trained {
			trainedWeights := trained[i].Value().Data().([]float64)
			targetWeights := target[i].Value().Data().([]float64)
			for j := range trainedWeights {
				if math.Abs(trainedWeights[j]-targetWeights[j]) > 1e-12 {
					t.Fatalf("target weights differ from learned weights "+
						"after update at learnable %d index %d", i, j)
				}
			}
		}
	}
}

func TestOneHot(t *testing.T) {
	got := oneHot([]float64{0, 2}, 3)
	want := []float64{1, 0, 0, 0, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %d elements but got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v but got %v", i, want[i], got[i])
		}
	}
}

// Interface compliance for the test double
var _ environment.Environment = stubEnv{}
