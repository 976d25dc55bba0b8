package engine

import (
	"strconv"

	"github.com/xor-shift/samplefarm/prng"
)

// The engine extends the generator's state-string with the bit cache:
//
//	w_1 ... w_16 16 p bitCache cacheMask
//
// Both extra tokens are optional on input but mutually required; when
// absent the cache is considered empty and refills on the next RandBool.
// User-written seeds should stick to the minimal format and let both p and
// the cache default.

// Seed auto-seeds from the OS entropy source and resets the bit cache.
func (e *Engine) Seed() error {
	text, err := prng.EntropyStateString()
	if err != nil {
		return err
	}
	return e.SeedFromString(text)
}

// SeedFromString seeds the engine from a state-string.
func (e *Engine) SeedFromString(text string) error {
	gen, rest, err := prng.ParseState(text)
	if err != nil {
		return err
	}

	switch len(rest) {
	case 0:
		e.gen = gen
		e.bitCache = 0
		e.cacheMask = replenishBitCache
		return nil
	case 2:
		bitCache, err := strconv.ParseUint(rest[0], 10, 64)
		if err != nil {
			return &prng.SeedFormatError{Reason: "bitCache is not an unsigned integer"}
		}
		cacheMask, err := strconv.ParseUint(rest[1], 10, 64)
		if err != nil {
			return &prng.SeedFormatError{Reason: "cacheMask is not an unsigned integer"}
		}
		// either the refill sentinel or a single set bit above the bad
		// bits; anything else would wedge RandBool
		singleBit := cacheMask&(cacheMask-1) == 0
		if cacheMask != replenishBitCache && !(singleBit && cacheMask >= 1<<BadBits) {
			return &prng.SeedFormatError{Reason: "cacheMask is not a valid bit position"}
		}
		e.gen = gen
		e.bitCache = bitCache
		e.cacheMask = cacheMask
		return nil
	case 1:
		return &prng.SeedFormatError{Reason: "bitCache stored in seed, but not cacheMask"}
	default:
		return &prng.SeedFormatError{Reason: "trailing tokens after cacheMask"}
	}
}

// SeedFromFile seeds the engine from the first line of the file at path.
func (e *Engine) SeedFromFile(path string) error {
	text, err := prng.ReadStateFile(path)
	if err != nil {
		return err
	}
	return e.SeedFromString(text)
}

// State returns the engine's full state-string, bit cache included.
func (e *Engine) State() string {
	return e.gen.StateString() +
		" " + strconv.FormatUint(e.bitCache, 10) +
		" " + strconv.FormatUint(e.cacheMask, 10)
}

// WriteState stores the full state-string at path, overwriting without
// warning. Missing directories are not created.
func (e *Engine) WriteState(path string) error {
	return prng.WriteStateFile(path, e.State())
}

// JumpVector returns k state-strings, each one Jump apart: the engine's
// state as it was on entry, then k-1 further jumps. The engine is left one
// additional jump ahead, in a state not present in the returned slice, so
// it can keep drawing without colliding with any of the handed-out
// streams. Re-seeding from the first string and calling JumpVector again
// regenerates the same vector.
func (e *Engine) JumpVector(k int) []string {
	states := make([]string, 0, k)

	for i := 0; i < k; i++ {
		states = append(states, e.State())
		e.Jump()
	}

	return states
}
