package dist

import (
	"math"

	"github.com/xor-shift/samplefarm/engine"
)

// Gamma with shape > 1 and rate > 0, sampled by rejection from a
// log-logistic proposal (Cheng's construction): the proposal has scale
// equal to the shape and shape lambda = sqrt(2*shape - 1), which hugs the
// unit-rate gamma density closely enough that the expected number of
// proposal draws stays below ~1.5 for all shapes.
type Gamma struct {
	shape, rate float64

	lambda   float64
	b        float64 // shape - ln 4; log of the acceptance envelope at the mode
	proposal LogLogistic
}

func NewGamma(shape, rate float64) (*Gamma, error) {
	if !(shape > 1) {
		return nil, &ParameterDomainError{"gamma", "shape must be greater than 1"}
	}
	if !(rate > 0) {
		return nil, &ParameterDomainError{"gamma", "rate must be positive"}
	}

	lambda := math.Sqrt(2*shape - 1)
	return &Gamma{
		shape:    shape,
		rate:     rate,
		lambda:   lambda,
		b:        shape - math.Log(4),
		proposal: LogLogistic{alpha: shape, beta: lambda, betaRecip: 1 / lambda},
	}, nil
}

func (d *Gamma) Shape() float64 { return d.shape }
func (d *Gamma) Rate() float64  { return d.rate }

func (d *Gamma) Sample(e *engine.Engine) float64 {
	for {
		x := d.proposal.Sample(e)

		v := math.Log(x / d.shape)
		t := math.Pow(x/d.shape, d.lambda)

		// log of target density over scaled proposal density, equal to 0
		// at x == shape. The t > 1 branch keeps the tail term finite when
		// t overflows.
		var tail float64
		if t > 1 {
			tail = 2 * (d.lambda*v + math.Log1p(1/t))
		} else {
			tail = 2 * math.Log1p(t)
		}
		logRatio := d.b + (d.shape-d.lambda)*v - x + tail

		// Uneven is never 0, so the log is always finite.
		if math.Log(e.Uneven()) < logRatio {
			return x / d.rate
		}
	}
}

func (d *Gamma) PDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	lg, _ := math.Lgamma(d.shape)
	return math.Exp(d.shape*math.Log(d.rate) + (d.shape-1)*math.Log(x) - d.rate*x - lg)
}

func (d *Gamma) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := d.rate * x
	if z < d.shape+1 {
		return lowerGammaSeries(d.shape, z)
	}
	return 1 - upperGammaCF(d.shape, z)
}

func (d *Gamma) CompCDF(x float64) float64 {
	if x <= 0 {
		return 1
	}
	z := d.rate * x
	if z < d.shape+1 {
		return 1 - lowerGammaSeries(d.shape, z)
	}
	return upperGammaCF(d.shape, z)
}

// lowerGammaSeries evaluates the regularized lower incomplete gamma
// P(a, x) by its power series; converges quickly for x < a+1.
func lowerGammaSeries(a, x float64) float64 {
	lg, _ := math.Lgamma(a)

	term := 1 / a
	sum := term
	for k := 1; k < 500; k++ {
		term *= x / (a + float64(k))
		sum += term
		if math.Abs(term) < math.Abs(sum)*1e-17 {
			break
		}
	}

	return sum * math.Exp(a*math.Log(x)-x-lg)
}

// upperGammaCF evaluates the regularized upper incomplete gamma Q(a, x)
// with the Lentz continued fraction; converges quickly for x >= a+1.
func upperGammaCF(a, x float64) float64 {
	const floor = 1e-300

	lg, _ := math.Lgamma(a)

	b := x + 1 - a
	c := 1 / floor
	d := 1 / b
	h := d

	for k := 1; k < 500; k++ {
		an := -float64(k) * (float64(k) - a)
		b += 2

		d = an*d + b
		if math.Abs(d) < floor {
			d = floor
		}
		c = b + an/c
		if math.Abs(c) < floor {
			c = floor
		}
		d = 1 / d

		delta := d * c
		h *= delta
		if math.Abs(delta-1) < 1e-17 {
			break
		}
	}

	return h * math.Exp(a*math.Log(x)-x-lg)
}

func (d *Gamma) Mean() float64     { return d.shape / d.rate }
func (d *Gamma) Variance() float64 { return d.shape / (d.rate * d.rate) }
