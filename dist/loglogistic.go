package dist

import (
	"math"

	"github.com/xor-shift/samplefarm/engine"
)

// LogLogistic with scale alpha and shape beta. Doubles as the proposal
// distribution of the gamma rejection sampler.
type LogLogistic struct {
	alpha     float64
	beta      float64
	betaRecip float64
}

func NewLogLogistic(alpha, beta float64) (*LogLogistic, error) {
	if !(alpha > 0) {
		return nil, &ParameterDomainError{"log-logistic", "alpha must be positive"}
	}
	if !(beta > 0) {
		return nil, &ParameterDomainError{"log-logistic", "beta must be positive"}
	}
	return &LogLogistic{alpha: alpha, beta: beta, betaRecip: 1 / beta}, nil
}

func (d *LogLogistic) Alpha() float64 { return d.alpha }
func (d *LogLogistic) Beta() float64  { return d.beta }

func (d *LogLogistic) QSmall(u float64) float64 {
	return d.alpha * math.Pow(u/(1-u), d.betaRecip)
}

func (d *LogLogistic) QLarge(u float64) float64 {
	return d.alpha * math.Pow((1-u)/u, d.betaRecip)
}

func (d *LogLogistic) Sample(e *engine.Engine) float64 {
	hu := e.HalfUneven()

	if e.RandBool() {
		return d.QLarge(hu)
	}
	return d.QSmall(hu)
}

func (d *LogLogistic) PDF(x float64) float64 {
	if x < 0 {
		return 0
	}
	z := math.Pow(x/d.alpha, d.beta)
	return d.beta / d.alpha * math.Pow(x/d.alpha, d.beta-1) / ((1 + z) * (1 + z))
}

func (d *LogLogistic) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := math.Pow(x/d.alpha, d.beta)
	return z / (1 + z)
}

func (d *LogLogistic) CompCDF(x float64) float64 {
	if x <= 0 {
		return 1
	}
	return 1 / (1 + math.Pow(x/d.alpha, d.beta))
}

// Mean is infinite for beta <= 1.
func (d *LogLogistic) Mean() float64 {
	if d.beta <= 1 {
		return math.Inf(1)
	}
	b := math.Pi / d.beta
	return d.alpha * b / math.Sin(b)
}

// Variance is infinite for beta <= 2.
func (d *LogLogistic) Variance() float64 {
	if d.beta <= 2 {
		return math.Inf(1)
	}
	b := math.Pi / d.beta
	m := b / math.Sin(b)
	return d.alpha * d.alpha * (2*b/math.Sin(2*b) - m*m)
}
