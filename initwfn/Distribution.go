package initwfn

import G "gorgonia.org/gorgonia"

// UniformConfig describes an initializer that draws every weight
// independently from the interval [Low, High).
type UniformConfig struct {
	Low, High float64
}

// NewUniform returns a weight initializer that samples uniformly from
// [low, high)
func NewUniform(low, high float64) (*InitWFn, error) {
	return newInitWFn(UniformConfig{Low: low, High: high})
}

// Type returns the type of weight initializer this config creates
func (u UniformConfig) Type() Type {
	return Uniform
}

// Create returns the initializer as a Gorgonia InitWFn
func (u UniformConfig) Create() G.InitWFn {
	return G.Uniform(u.Low, u.High)
}

// GaussianConfig describes an initializer that draws every weight
// independently from a normal distribution.
type GaussianConfig struct {
	Mean, StdDev float64
}

// NewGaussian returns a weight initializer that samples from a normal
// distribution with the given mean and standard deviation
func NewGaussian(mean, stddev float64) (*InitWFn, error) {
	return newInitWFn(GaussianConfig{Mean: mean, StdDev: stddev})
}

// Type returns the type of weight initializer this config creates
func (g GaussianConfig) Type() Type {
	return Gaussian
}

// Create returns the initializer as a Gorgonia InitWFn
func (g GaussianConfig) Create() G.InitWFn {
	return G.Gaussian(g.Mean, g.StdDev)
}
