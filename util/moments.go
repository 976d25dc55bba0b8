package util

import "math"

// Moments accumulates running mean and variance (Welford) without keeping
// the sample around. Used by the stats consumer and the sampler tests.
type Moments struct {
	Count uint64

	mean float64
	m2   float64
}

func (m *Moments) Add(x float64) {
	m.Count++
	delta := x - m.mean
	m.mean += delta / float64(m.Count)
	m.m2 += delta * (x - m.mean)
}

func (m *Moments) AddAll(xs []float64) {
	for _, x := range xs {
		m.Add(x)
	}
}

func (m *Moments) Mean() float64 { return m.mean }

func (m *Moments) Variance() float64 {
	if m.Count < 2 {
		return math.NaN()
	}
	return m.m2 / float64(m.Count-1)
}

func (m *Moments) StdDev() float64 { return math.Sqrt(m.Variance()) }
