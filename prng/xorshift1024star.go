package prng

import "github.com/xor-shift/samplefarm/util"

// An implementation of Vigna's xorshift1024* generator (2017 edit), period
// 2^1024 - 1. The two lowest bits of every word are LFSRs of degree 1024 and
// will fail binary rank tests; consumers should discard them (the engine
// package does).
//
// https://prng.di.unimi.it/xorshift1024star.c

const (
	// StateSize is the number of 64-bit words in the generator state.
	StateSize = 16

	// WordSize is the number of bits per generated word.
	WordSize = 64

	multiplier = 1181783497276652981
)

// XorShift1024Star holds the full generator state. The zero value is a
// degenerate all-zero state that only ever returns 0; it must be seeded
// before use. The struct contains no references, so assignment is a deep
// copy and two copies evolve independently.
type XorShift1024Star struct {
	State [StateSize]uint64
	P     uint64
}

// Next advances the state and returns the next 64-bit word.
func (g *XorShift1024Star) Next() uint64 {
	s0 := g.State[g.P]
	g.P = (g.P + 1) & 15
	s1 := g.State[g.P]

	s1 ^= s1 << 31
	s1 = s1 ^ s0 ^ (s1 >> 11) ^ (s0 >> 30)

	g.State[g.P] = s1
	return s1 * multiplier
}

// jumpTable is the polynomial for a 2^512-call stride, precomputed by Vigna.
// Opaque constant; verified by test, never re-derived.
var jumpTable = [StateSize]uint64{
	0x84242f96eca9c41d, 0xa3c65b8776f96855, 0x5b34a39f070b5837, 0x4489affce4f31a1e,
	0x2ffeeb0a48316f40, 0xdc2d9891fe68c022, 0x3659132bb12fea70, 0xaac17d8efa43cab8,
	0xc4cb815590989b13, 0x5ee975283d71c93b, 0x691548c86c1bd540, 0x7910c41d10a1e6a5,
	0x0b5fc64563b3e2a8, 0x047f7684e9fc949d, 0xb99181f2d8f685ca, 0x284600e3f30e38c3,
}

// Jump advances the generator by 2^512 calls to Next without performing
// them. Jumping commutes with stepping: Next-then-Jump lands on the same
// state as Jump-then-Next.
func (g *XorShift1024Star) Jump() {
	var t [StateSize]uint64

	for i := 0; i < StateSize; i++ {
		for b := 0; b < WordSize; b++ {
			if jumpTable[i]&(uint64(1)<<b) != 0 {
				for j := uint64(0); j < StateSize; j++ {
					t[j] ^= g.State[(j+g.P)&15]
				}
			}
			_ = g.Next()
		}
	}

	for j := uint64(0); j < StateSize; j++ {
		g.State[(j+g.P)&15] = t[j]
	}
}

// JumpN applies Jump n times.
func (g *XorShift1024Star) JumpN(n int) {
	for i := 0; i < n; i++ {
		g.Jump()
	}
}

// String renders the state words as one hex blob, for logs. Not the
// canonical state-string; see StateString.
func (g *XorShift1024Star) String() string {
	return util.ArrayToString(g.State[:])
}
