package prng

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// State-strings are a single ASCII line of space-separated unsigned
// integers:
//
//	w_1 w_2 ... w_16 16 [p] [extra ...]
//
// The literal 16 after the state words is a word-count sanity check. The
// rotation index p is optional and defaults to 0, which is also what the
// minimal auto-seed format relies on. Tokens past p are left for callers
// with more state to store (see the engine package).

// SeedFormatError reports a malformed state-string.
type SeedFormatError struct {
	Reason string
}

func (e *SeedFormatError) Error() string {
	return "malformed state-string: " + e.Reason
}

// SeedIOError reports a failure to read or write a seed file.
type SeedIOError struct {
	Path string
	Err  error
}

func (e *SeedIOError) Error() string {
	return fmt.Sprintf("seed file <%s>: %s", e.Path, e.Err)
}

func (e *SeedIOError) Unwrap() error { return e.Err }

// ParseState parses the generator portion of a state-string and returns
// any leftover tokens untouched.
func ParseState(text string) (XorShift1024Star, []string, error) {
	var gen XorShift1024Star

	tokens := strings.Fields(text)
	if len(tokens) < StateSize+1 {
		return gen, nil, &SeedFormatError{"not enough words to fill state"}
	}

	for i := 0; i < StateSize; i++ {
		word, err := strconv.ParseUint(tokens[i], 10, 64)
		if err != nil {
			return gen, nil, &SeedFormatError{fmt.Sprintf("word %d is not an unsigned integer", i+1)}
		}
		gen.State[i] = word
	}

	count, err := strconv.ParseUint(tokens[StateSize], 10, 64)
	if err != nil {
		return gen, nil, &SeedFormatError{"state size is not an unsigned integer"}
	}
	if count != StateSize {
		return gen, nil, &SeedFormatError{fmt.Sprintf("wrong state size (expected %d, got %d)", StateSize, count)}
	}

	rest := tokens[StateSize+1:]

	// p is optional; it tracks call count modulo 16, not entropy, so the
	// minimal format omits it
	if len(rest) > 0 {
		p, err := strconv.ParseUint(rest[0], 10, 64)
		if err != nil {
			return gen, nil, &SeedFormatError{"rotation index is not an unsigned integer"}
		}
		if p >= StateSize {
			return gen, nil, &SeedFormatError{fmt.Sprintf("rotation index %d is out of range [0, %d)", p, StateSize)}
		}
		gen.P = p
		rest = rest[1:]
	}

	return gen, rest, nil
}

// StateString renders the full state, including the rotation index.
func (g *XorShift1024Star) StateString() string {
	var sb strings.Builder

	for i := 0; i < StateSize; i++ {
		sb.WriteString(strconv.FormatUint(g.State[i], 10))
		sb.WriteByte(' ')
	}

	sb.WriteString(strconv.Itoa(StateSize))
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatUint(g.P, 10))

	return sb.String()
}

// EntropyStateString builds a minimal state-string from the OS entropy
// source, pairing two 32-bit reads per state word. Feeding the result back
// through ParseState leaves p at its default of 0.
func EntropyStateString() (string, error) {
	var sb strings.Builder
	var buf [4]byte

	word32 := func() (uint64, error) {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(buf[:])), nil
	}

	for i := 0; i < StateSize; i++ {
		hi, err := word32()
		if err != nil {
			return "", &SeedIOError{"<entropy source>", err}
		}
		lo, err := word32()
		if err != nil {
			return "", &SeedIOError{"<entropy source>", err}
		}

		sb.WriteString(strconv.FormatUint(hi<<32|lo, 10))
		sb.WriteByte(' ')
	}
	sb.WriteString(strconv.Itoa(StateSize))

	return sb.String(), nil
}

// ReadStateFile returns the first line of the file at path.
func ReadStateFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", &SeedIOError{path, err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", &SeedIOError{path, err}
		}
		return "", &SeedFormatError{"seed file is empty"}
	}

	return scanner.Text(), nil
}

// WriteStateFile stores text as the single line of the file at path,
// truncating any previous contents.
func WriteStateFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return &SeedIOError{path, err}
	}
	return nil
}
