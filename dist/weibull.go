package dist

import (
	"math"

	"github.com/xor-shift/samplefarm/engine"
)

// Weibull with scale lambda and shape k.
type Weibull struct {
	lambda float64
	k      float64
	kRecip float64
}

func NewWeibull(lambda, k float64) (*Weibull, error) {
	if !(lambda > 0) {
		return nil, &ParameterDomainError{"weibull", "lambda must be positive"}
	}
	if !(k > 0) {
		return nil, &ParameterDomainError{"weibull", "k must be positive"}
	}
	return &Weibull{lambda: lambda, k: k, kRecip: 1 / k}, nil
}

func (d *Weibull) Lambda() float64 { return d.lambda }
func (d *Weibull) K() float64      { return d.k }

func (d *Weibull) QSmall(u float64) float64 {
	return d.lambda * math.Pow(math.Log1p(u/(1-u)), d.kRecip)
}

func (d *Weibull) QLarge(u float64) float64 {
	return d.lambda * math.Pow(-math.Log(u), d.kRecip)
}

func (d *Weibull) Sample(e *engine.Engine) float64 {
	hu := e.HalfUneven()

	if e.RandBool() {
		return d.QLarge(hu)
	}
	return d.QSmall(hu)
}

func (d *Weibull) PDF(x float64) float64 {
	if x < 0 {
		return 0
	}
	z := x / d.lambda
	return d.k / d.lambda * math.Pow(z, d.k-1) * math.Exp(-math.Pow(z, d.k))
}

func (d *Weibull) CDF(x float64) float64 {
	if x < 0 {
		return 0
	}
	return -math.Expm1(-math.Pow(x/d.lambda, d.k))
}

func (d *Weibull) CompCDF(x float64) float64 {
	if x < 0 {
		return 1
	}
	return math.Exp(-math.Pow(x/d.lambda, d.k))
}

func (d *Weibull) Mean() float64 {
	return d.lambda * math.Gamma(1+d.kRecip)
}

func (d *Weibull) Variance() float64 {
	m := math.Gamma(1 + d.kRecip)
	return d.lambda * d.lambda * (math.Gamma(1+2*d.kRecip) - m*m)
}
