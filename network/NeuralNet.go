// Package network implements value-function approximators using
// Gorgonia. A network maps a batch of flattened visual states to a
// batch of action-value vectors, one value per discrete action of the
// sub-problem the network serves.
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a value-function approximator. Implementations
// populate a gorgonia.ExprGraph with the approximator; an external VM
// runs the graph. The VM should always be run after SetInput() and
// before reading Output().
//
// Learnables() exposes the full parameter set for target-network
// copying, and Model() exposes it for solver registration.
type NeuralNet interface {
	// Graph returns the computational graph the network populates
	Graph() *G.ExprGraph

	// CloneWithBatch clones the network, and its current weights,
	// into a fresh graph that accepts a new input batch size
	CloneWithBatch(int) (NeuralNet, error)

	BatchSize() int
	Features() int
	Outputs() int

	// SetInput sets the network input before a VM run. The input must
	// hold BatchSize() * Features() values in row-major order.
	SetInput([]float64) error

	// Set overwrites this network's weights with those of source
	Set(source NeuralNet) error

	// Polyak sets this network's weights to a Polyak average between
	// its current weights and those of source
	Polyak(source NeuralNet, tau float64) error

	Learnables() G.Nodes
	Model() []G.ValueGrad

	// Output returns the value of the prediction node after the last
	// VM run
	Output() G.Value

	// Prediction returns the node of the computational graph that
	// stores the network's predictions
	Prediction() *G.Node
}
