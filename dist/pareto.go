package dist

import (
	"math"

	"github.com/xor-shift/samplefarm/engine"
)

// Pareto with minimum xMin and index alpha. Its inverse CDF only loses
// precision in one tail, so a full-range uneven draw covers it without a
// flip-flop: x = xMin * u^(-1/alpha) is exact as u -> 0 (the far tail) and
// the near boundary x = xMin needs no special care.
type Pareto struct {
	xMin          float64
	alpha         float64
	negRecipAlpha float64
}

func NewPareto(xMin, alpha float64) (*Pareto, error) {
	if !(xMin > 0) {
		return nil, &ParameterDomainError{"pareto", "xMin must be positive"}
	}
	if !(alpha > 0) {
		return nil, &ParameterDomainError{"pareto", "alpha must be positive"}
	}
	return &Pareto{xMin: xMin, alpha: alpha, negRecipAlpha: -1 / alpha}, nil
}

func (d *Pareto) XMin() float64  { return d.xMin }
func (d *Pareto) Alpha() float64 { return d.alpha }

func (d *Pareto) Sample(e *engine.Engine) float64 {
	return d.xMin * math.Pow(e.Uneven(), d.negRecipAlpha)
}

func (d *Pareto) PDF(x float64) float64 {
	if x < d.xMin {
		return 0
	}
	return d.alpha / x * math.Pow(d.xMin/x, d.alpha)
}

func (d *Pareto) CDF(x float64) float64 {
	if x < d.xMin {
		return 0
	}
	return -math.Expm1(d.alpha * math.Log(d.xMin/x))
}

func (d *Pareto) CompCDF(x float64) float64 {
	if x < d.xMin {
		return 1
	}
	return math.Pow(d.xMin/x, d.alpha)
}

// Mean is infinite for alpha <= 1.
func (d *Pareto) Mean() float64 {
	if d.alpha <= 1 {
		return math.Inf(1)
	}
	return d.alpha * d.xMin / (d.alpha - 1)
}

// Variance is infinite for alpha <= 2.
func (d *Pareto) Variance() float64 {
	if d.alpha <= 2 {
		return math.Inf(1)
	}
	m := d.xMin / (d.alpha - 1)
	return d.alpha * m * m / (d.alpha - 2)
}
