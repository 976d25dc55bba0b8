package prng

import (
	"strings"
	"testing"
)

func testGenerator(salt uint64) XorShift1024Star {
	var g XorShift1024Star
	// splitmix64, the seeding helper Vigna recommends
	x := salt
	for i := 0; i < StateSize; i++ {
		x += 0x9e3779b97f4a7c15
		z := x
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		g.State[i] = z ^ (z >> 31)
	}
	return g
}

func TestNextDeterministic(t *testing.T) {
	a := testGenerator(1)
	b := testGenerator(1)

	for i := 0; i < 10000; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("same-seeded generators diverged at call %d", i)
		}
	}
}

func TestNextNotStuck(t *testing.T) {
	g := testGenerator(2)

	seen := map[uint64]bool{}
	for i := 0; i < 1000; i++ {
		seen[g.Next()] = true
	}

	if len(seen) != 1000 {
		t.Fatalf("expected 1000 distinct words, got %d", len(seen))
	}
}

func TestJumpCommutesWithNext(t *testing.T) {
	a := testGenerator(3)
	b := a

	_ = a.Next()
	a.Jump()

	b.Jump()
	_ = b.Next()

	if a != b {
		t.Fatal("Next-then-Jump and Jump-then-Next landed on different states")
	}
}

func TestJumpChangesState(t *testing.T) {
	g := testGenerator(4)
	before := g

	g.Jump()

	if g.State == before.State {
		t.Fatal("Jump left the state words unchanged")
	}
}

func TestJumpN(t *testing.T) {
	a := testGenerator(5)
	b := a

	a.JumpN(3)

	b.Jump()
	b.Jump()
	b.Jump()

	if a != b {
		t.Fatal("JumpN(3) differs from three Jump calls")
	}
}

func TestJumpStreamsDisjoint(t *testing.T) {
	a := testGenerator(6)
	b := a
	b.Jump()

	for i := 0; i < 10000; i++ {
		if a.Next() == b.Next() {
			t.Fatalf("jumped stream collided with the base stream at call %d", i)
		}
	}
}

func TestStateStringRoundTrip(t *testing.T) {
	g := testGenerator(7)
	for i := 0; i < 5; i++ {
		_ = g.Next()
	}

	parsed, rest, err := ParseState(g.StateString())
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected leftover tokens: %v", rest)
	}
	if parsed != g {
		t.Fatal("round-tripped generator differs from the original")
	}

	for i := 0; i < 100; i++ {
		if parsed.Next() != g.Next() {
			t.Fatalf("round-tripped generator diverged at call %d", i)
		}
	}
}

func TestParseStateDefaultsP(t *testing.T) {
	g := testGenerator(8)
	g.P = 9

	text := g.StateString()
	minimal := text[:strings.LastIndexByte(text, ' ')]

	parsed, _, err := ParseState(minimal)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.P != 0 {
		t.Fatalf("omitted rotation index should default to 0, got %d", parsed.P)
	}
	if parsed.State != g.State {
		t.Fatal("state words did not survive the minimal format")
	}
}

func TestParseStateErrors(t *testing.T) {
	gen := testGenerator(9)
	good := gen.StateString()

	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"too few words", "1 2 3 16"},
		{"wrong count", strings.Replace(good, " 16 ", " 15 ", 1)},
		{"garbage word", "x " + good},
		{"rotation index out of range", strings.TrimSuffix(good, "0") + "16"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := ParseState(c.text)
			if err == nil {
				t.Fatalf("expected an error for %q", c.text)
			}
			if _, ok := err.(*SeedFormatError); !ok {
				t.Fatalf("expected a SeedFormatError, got %T", err)
			}
		})
	}
}

func TestStringHexRender(t *testing.T) {
	var g XorShift1024Star
	g.State[0] = 0xdeadbeef

	s := g.String()
	if len(s) != StateSize*16 {
		t.Fatalf("expected %d hex digits, got %d", StateSize*16, len(s))
	}
	if !strings.HasPrefix(s, "00000000deadbeef") {
		t.Fatalf("unexpected rendering %q", s[:16])
	}
}

func TestEntropyStateString(t *testing.T) {
	a, err := EntropyStateString()
	if err != nil {
		t.Fatal(err)
	}

	b, err := EntropyStateString()
	if err != nil {
		t.Fatal(err)
	}

	if a == b {
		t.Fatal("two entropy seeds came out identical")
	}

	gen, rest, err := ParseState(a)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected leftover tokens: %v", rest)
	}
	if gen.P != 0 {
		t.Fatalf("entropy seed should leave p at 0, got %d", gen.P)
	}
}

func TestStateFileRoundTrip(t *testing.T) {
	path := t.TempDir() + "/seed.txt"

	g := testGenerator(10)
	if err := WriteStateFile(path, g.StateString()); err != nil {
		t.Fatal(err)
	}

	line, err := ReadStateFile(path)
	if err != nil {
		t.Fatal(err)
	}

	parsed, _, err := ParseState(line)
	if err != nil {
		t.Fatal(err)
	}
	if parsed != g {
		t.Fatal("generator did not survive the file round trip")
	}
}

func TestReadStateFileMissing(t *testing.T) {
	_, err := ReadStateFile(t.TempDir() + "/nonexistent")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if _, ok := err.(*SeedIOError); !ok {
		t.Fatalf("expected a SeedIOError, got %T", err)
	}
}

func BenchmarkNext(b *testing.B) {
	g := testGenerator(11)
	for i := 0; i < b.N; i++ {
		_ = g.Next()
	}
}

func BenchmarkJump(b *testing.B) {
	g := testGenerator(12)
	for i := 0; i < b.N; i++ {
		g.Jump()
	}
}
