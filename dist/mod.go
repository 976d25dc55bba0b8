// Package dist implements high-precision samplers for the distributions
// served by the farm. Distributions with an analytically invertible CDF use
// the quantile flip-flop: a half-range uneven draw picks a point in the
// numerically safe half of the quantile's domain and a fair coin selects
// which tail it lands in, so neither evaluation ever suffers cancellation.
package dist

import (
	"fmt"

	"github.com/xor-shift/samplefarm/engine"
)

// Sampler is the capability every distribution implements.
type Sampler interface {
	Sample(e *engine.Engine) float64
}

// PDF is implemented by distributions with a closed-form density.
type PDF interface {
	PDF(x float64) float64
}

// CDF is implemented by distributions with a closed-form cumulative. The
// complementary form is provided separately because 1-CDF(x) loses all
// precision in the upper tail.
type CDF interface {
	CDF(x float64) float64
	CompCDF(x float64) float64
}

// Quantile is implemented by the flip-flop distributions. QSmall maps
// u in (0, 0.5] to the lower half of the support and stays accurate as
// u -> 0; QLarge is the reflected evaluation covering the upper half,
// mathematically QSmall(1-u) but free of cancellation.
type Quantile interface {
	QSmall(u float64) float64
	QLarge(u float64) float64
}

// ParameterDomainError reports invalid distribution parameters at
// construction time. No distribution object is ever produced alongside one.
type ParameterDomainError struct {
	Dist   string
	Reason string
}

func (e *ParameterDomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Dist, e.Reason)
}

// SampleMany draws n variates into a fresh slice.
func SampleMany(s Sampler, e *engine.Engine, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Sample(e)
	}
	return out
}
