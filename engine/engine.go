// Package engine wraps the raw bit generator in the precision layer used by
// all samplers: quasiuniform ("uneven") draws with entropy top-up, canonical
// ("even") draws, and a bit cache for cheap fair booleans.
package engine

import (
	"math"

	"github.com/xor-shift/samplefarm/prng"
)

const (
	// BadBits is the number of low generator bits considered too weak to
	// use (they are degree-1024 LFSRs, see the prng package).
	BadBits = 2

	wordBits     = prng.WordSize
	mantissaBits = 53 // float64

	bitShiftRightEven = wordBits - mantissaBits

	scaleEven   = 0x1p-53
	scaleUneven = 0x1p-64

	// Sentinel value of cacheMask meaning "refill on next RandBool". The
	// scan stops above the bad bits, so this position is never a live mask.
	replenishBitCache = 1 << (BadBits - 1)

	// The mantissa plus a buffer bit of real entropy; the sticky bit is
	// always forced to 1 and can live in a bad bit.
	entropyBitsRequired = mantissaBits + 1 + (BadBits - 1)

	// Words below this lack the entropy for a correctly rounded mantissa.
	minEntropy = 1 << (entropyBitsRequired - 1)
)

// Engine owns one generator plus the boolean bit cache. It is not safe for
// concurrent use; give each goroutine its own engine, decorrelated with
// Jump rather than independent re-seeding (independent seeds cannot rule
// out sequence overlap). Engine contains no references, so Clone is a full
// value copy.
type Engine struct {
	gen prng.XorShift1024Star

	bitCache  uint64
	cacheMask uint64
}

// New returns an engine auto-seeded from the OS entropy source.
func New() (*Engine, error) {
	e := NewUnseeded()
	if err := e.Seed(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewUnseeded returns an engine whose generator state is all zeroes. The
// caller must seed it before drawing anything.
func NewUnseeded() *Engine {
	return &Engine{cacheMask: replenishBitCache}
}

// NewFromString returns an engine seeded from a state-string.
func NewFromString(text string) (*Engine, error) {
	e := NewUnseeded()
	if err := e.SeedFromString(text); err != nil {
		return nil, err
	}
	return e, nil
}

// NewFromFile returns an engine seeded from the first line of a seed file.
func NewFromFile(path string) (*Engine, error) {
	e := NewUnseeded()
	if err := e.SeedFromFile(path); err != nil {
		return nil, err
	}
	return e, nil
}

// Clone returns an independent deep copy of the engine.
func (e *Engine) Clone() *Engine {
	c := *e
	return &c
}

// NextWord returns the next raw word of the underlying generator.
func (e *Engine) NextWord() uint64 { return e.gen.Next() }

// Jump advances the underlying generator by 2^512 calls.
func (e *Engine) Jump() { e.gen.Jump() }

// JumpN applies Jump n times.
func (e *Engine) JumpN(n int) { e.gen.JumpN(n) }

// Uneven draws a quasiuniform variate from (0, 1]: a random real rounded to
// the nearest float64. Exactly 1 is half as probable as its next-door
// neighbor, matching the open upper boundary of the real interval.
func (e *Engine) Uneven() float64 {
	word := e.gen.Next()

	if word < minEntropy {
		return e.unevenTopUp(word)
	}
	return scaleUneven * float64(word|1)
}

// HalfUneven draws a quasiuniform variate from (0, 0.5], the half-interval
// consumed by the quantile flip-flop.
func (e *Engine) HalfUneven() float64 {
	word := e.gen.Next()

	if word < minEntropy {
		return 0.5 * e.unevenTopUp(word)
	}
	return 0.5 * scaleUneven * float64(word|1)
}

// unevenTopUp handles the rare draw whose leading zeroes leave too little
// entropy for a full mantissa. It behaves as if the generator emitted one
// endless bit stream: shift left until the top bit of entropy is in place,
// refill the vacated low bits from a fresh word, set the sticky bit to
// defeat round-to-even, and downscale back to the original magnitude.
func (e *Engine) unevenTopUp(word uint64) float64 {
	downScale := scaleUneven

	shiftLeft := 1
	word <<= 1

	if word == 0 {
		shiftLeft = 0

		// Every all-zero word shifted through costs a full word of scale.
		for {
			downScale *= scaleUneven
			if word = e.gen.Next(); word != 0 {
				break
			}
		}
	}

	for word < minEntropy {
		word <<= 1
		shiftLeft++
	}
	downScale *= math.Ldexp(1, -shiftLeft)

	// Fill the gap opened by the shift with fresh bits (a shift of zero
	// keeps none of them).
	word |= e.gen.Next() >> uint(wordBits-shiftLeft)

	return float64(word|1) * downScale
}

// Even draws from [0, 1) on the conventional evenly spaced lattice of
// 2^53 points. Lower precision than Uneven, but matches what garden-variety
// uniform generators produce.
func (e *Engine) Even() float64 {
	return scaleEven * float64(e.gen.Next()>>bitShiftRightEven)
}

// RandBool is an ideal coin flip costing one generator word per 62 calls.
// Bits are consumed from the most significant end down to the bad bits.
func (e *Engine) RandBool() bool {
	if e.cacheMask == replenishBitCache {
		e.bitCache = e.gen.Next()
		e.cacheMask = 1 << (wordBits - 1)
	}

	decision := e.bitCache&e.cacheMask != 0
	e.cacheMask >>= 1
	return decision
}

// ApplyRandomSign returns x negated half the time.
func (e *Engine) ApplyRandomSign(x float64) float64 {
	if e.RandBool() {
		return -x
	}
	return x
}
