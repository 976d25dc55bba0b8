package util

import (
	"math"
	"testing"
)

func TestMomentsSmallSample(t *testing.T) {
	var m Moments
	m.AddAll([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if m.Count != 8 {
		t.Fatalf("count %d, want 8", m.Count)
	}
	if m.Mean() != 5 {
		t.Fatalf("mean %g, want 5", m.Mean())
	}

	// sample variance with Bessel's correction: 32/7
	if d := math.Abs(m.Variance() - 32.0/7); d > 1e-12 {
		t.Fatalf("variance %g, want %g", m.Variance(), 32.0/7)
	}
	if d := math.Abs(m.StdDev() - math.Sqrt(32.0/7)); d > 1e-12 {
		t.Fatalf("stddev %g", m.StdDev())
	}
}

func TestMomentsDegenerate(t *testing.T) {
	var m Moments

	if !math.IsNaN(m.Variance()) {
		t.Fatal("variance of an empty accumulator should be NaN")
	}

	m.Add(3)
	if m.Mean() != 3 {
		t.Fatalf("mean %g, want 3", m.Mean())
	}
	if !math.IsNaN(m.Variance()) {
		t.Fatal("variance of a single sample should be NaN")
	}
}

// Welford must not lose the variance to cancellation when the mean dwarfs
// the spread; the naive sum-of-squares formula returns garbage here.
func TestMomentsLargeOffset(t *testing.T) {
	var m Moments
	for i := 0; i < 1000; i++ {
		m.Add(1e9 + float64(i%2))
	}

	if d := math.Abs(m.Variance() - 0.25025); d > 1e-4 {
		t.Fatalf("variance %g, want ~0.25", m.Variance())
	}
}

func TestArrayToString(t *testing.T) {
	if got := ArrayToString([]uint8{0x01, 0xab}); got != "01ab" {
		t.Fatalf("got %q", got)
	}
	if got := ArrayToString([]uint64{0, 0xdeadbeef}); got != "000000000000000000000000deadbeef" {
		t.Fatalf("got %q", got)
	}
	if got := ArrayToString([]uint16{}); got != "" {
		t.Fatalf("got %q", got)
	}
}
