package dist

import "github.com/xor-shift/samplefarm/engine"

// Uniform is the continuous uniform distribution over [a, b). It draws from
// the even lattice; there is no tail to protect, so the uneven machinery
// buys nothing here.
type Uniform struct {
	a, b  float64
	width float64
}

func NewUniform(a, b float64) (*Uniform, error) {
	if !(b > a) {
		return nil, &ParameterDomainError{"uniform", "b must be greater than a"}
	}
	return &Uniform{a: a, b: b, width: b - a}, nil
}

func (d *Uniform) A() float64 { return d.a }
func (d *Uniform) B() float64 { return d.b }

func (d *Uniform) Sample(e *engine.Engine) float64 {
	return d.a + d.width*e.Even()
}

func (d *Uniform) PDF(x float64) float64 {
	if x < d.a || x >= d.b {
		return 0
	}
	return 1 / d.width
}

func (d *Uniform) CDF(x float64) float64 {
	switch {
	case x < d.a:
		return 0
	case x >= d.b:
		return 1
	}
	return (x - d.a) / d.width
}

func (d *Uniform) CompCDF(x float64) float64 {
	switch {
	case x < d.a:
		return 1
	case x >= d.b:
		return 0
	}
	return (d.b - x) / d.width
}

func (d *Uniform) Mean() float64     { return 0.5 * (d.a + d.b) }
func (d *Uniform) Variance() float64 { return d.width * d.width / 12 }
