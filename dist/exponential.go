package dist

import (
	"math"

	"github.com/xor-shift/samplefarm/engine"
)

// Exponential with rate lambda (mean 1/lambda).
type Exponential struct {
	lambda float64
}

func NewExponential(lambda float64) (*Exponential, error) {
	if !(lambda > 0) {
		return nil, &ParameterDomainError{"exponential", "lambda must be positive"}
	}
	return &Exponential{lambda: lambda}, nil
}

func (d *Exponential) Lambda() float64 { return d.lambda }

// QSmall inverts the CDF near u = 0; -log(1-u) written as log1p to keep
// the small-u digits.
func (d *Exponential) QSmall(u float64) float64 {
	return math.Log1p(u/(1-u)) / d.lambda
}

// QLarge is the reflected evaluation, exact in the far tail.
func (d *Exponential) QLarge(u float64) float64 {
	return -math.Log(u) / d.lambda
}

func (d *Exponential) Sample(e *engine.Engine) float64 {
	hu := e.HalfUneven()

	if e.RandBool() {
		return d.QLarge(hu)
	}
	return d.QSmall(hu)
}

func (d *Exponential) PDF(x float64) float64 {
	if x < 0 {
		return 0
	}
	return d.lambda * math.Exp(-d.lambda*x)
}

func (d *Exponential) CDF(x float64) float64 {
	if x < 0 {
		return 0
	}
	return -math.Expm1(-d.lambda * x)
}

func (d *Exponential) CompCDF(x float64) float64 {
	if x < 0 {
		return 1
	}
	return math.Exp(-d.lambda * x)
}

func (d *Exponential) Mean() float64     { return 1 / d.lambda }
func (d *Exponential) Variance() float64 { return 1 / (d.lambda * d.lambda) }
