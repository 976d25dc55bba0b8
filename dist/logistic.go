package dist

import (
	"math"

	"github.com/xor-shift/samplefarm/engine"
)

// Logistic with location mu and scale s.
type Logistic struct {
	mu float64
	s  float64
}

func NewLogistic(mu, s float64) (*Logistic, error) {
	if !(s > 0) {
		return nil, &ParameterDomainError{"logistic", "s must be positive"}
	}
	return &Logistic{mu: mu, s: s}, nil
}

func (d *Logistic) Mu() float64 { return d.mu }
func (d *Logistic) S() float64  { return d.s }

// QSmall covers the lower tail: log(u/(1-u)) <= 0 for u in (0, 0.5] and
// keeps all its digits as u -> 0.
func (d *Logistic) QSmall(u float64) float64 {
	return d.mu + d.s*math.Log(u/(1-u))
}

// QLarge is the mirror image covering the upper tail.
func (d *Logistic) QLarge(u float64) float64 {
	return d.mu - d.s*math.Log(u/(1-u))
}

func (d *Logistic) Sample(e *engine.Engine) float64 {
	hu := e.HalfUneven()

	if e.RandBool() {
		return d.QLarge(hu)
	}
	return d.QSmall(hu)
}

func (d *Logistic) PDF(x float64) float64 {
	z := math.Exp(-math.Abs(x-d.mu) / d.s)
	return z / (d.s * (1 + z) * (1 + z))
}

func (d *Logistic) CDF(x float64) float64 {
	return 1 / (1 + math.Exp(-(x-d.mu)/d.s))
}

func (d *Logistic) CompCDF(x float64) float64 {
	return 1 / (1 + math.Exp((x-d.mu)/d.s))
}

func (d *Logistic) Mean() float64 { return d.mu }

func (d *Logistic) Variance() float64 {
	return d.s * d.s * math.Pi * math.Pi / 3
}
