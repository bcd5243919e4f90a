package initwfn

import G "gorgonia.org/gorgonia"

// HeUConfig describes He initialization with weights drawn uniformly,
// scaled by the layer's fan-in.
type HeUConfig struct {
	Gain float64
}

// NewHeU returns a He uniform weight initializer with the given gain
func NewHeU(gain float64) (*InitWFn, error) {
	return newInitWFn(HeUConfig{Gain: gain})
}

// Type returns the type of weight initializer this config creates
func (h HeUConfig) Type() Type {
	return HeU
}

// Create returns the initializer as a Gorgonia InitWFn
func (h HeUConfig) Create() G.InitWFn {
	return G.HeU(h.Gain)
}

// HeNConfig describes He initialization with normally distributed
// weights.
type HeNConfig struct {
	Gain float64
}

// NewHeN returns a He normal weight initializer with the given gain
func NewHeN(gain float64) (*InitWFn, error) {
	return newInitWFn(HeNConfig{Gain: gain})
}

// Type returns the type of weight initializer this config creates
func (h HeNConfig) Type() Type {
	return HeN
}

// Create returns the initializer as a Gorgonia InitWFn
func (h HeNConfig) Create() G.InitWFn {
	return G.HeN(h.Gain)
}
