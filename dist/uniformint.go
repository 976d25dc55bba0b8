package dist

import (
	"github.com/xor-shift/samplefarm/engine"
)

const reducedBits = 64 - engine.BadBits

// UniformInt draws integers exactly uniformly from [min, max). Raw words
// are shifted right past the bad bits, then rejected above the largest
// multiple of the spread fitting the reduced range, so non-power-of-two
// spreads carry no modulo bias. The number of redraws is unbounded but
// geometrically convergent (worst case rejects just under half the range).
type UniformInt struct {
	min, max int64

	spread uint64
	bound  uint64
}

func NewUniformInt(min, max int64) (*UniformInt, error) {
	if max <= min {
		return nil, &ParameterDomainError{"uniform-int", "max must be greater than min"}
	}

	spread := uint64(max) - uint64(min)
	if spread > 1<<reducedBits {
		return nil, &ParameterDomainError{"uniform-int", "spread exceeds the 62-bit sample range"}
	}

	bound := uint64(1) << reducedBits
	bound -= bound % spread

	return &UniformInt{min: min, max: max, spread: spread, bound: bound}, nil
}

func (d *UniformInt) Min() int64 { return d.min }
func (d *UniformInt) Max() int64 { return d.max }

func (d *UniformInt) Sample(e *engine.Engine) int64 {
	for {
		v := e.NextWord() >> engine.BadBits
		if v < d.bound {
			return d.min + int64(v%d.spread)
		}
	}
}

// SampleMany draws n integers into a fresh slice.
func (d *UniformInt) SampleMany(e *engine.Engine, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = d.Sample(e)
	}
	return out
}
