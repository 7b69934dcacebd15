// Package aztectest builds Aztec symbols and renders them to images for
// tests. It writes character streams with a greedy encoder, places them in a
// symbol of a chosen size and draws the result with optional rotation and
// uneven lighting.
package aztectest

import (
	"fmt"

	"github.com/ericlevine/aztecgo/bitutil"
)

const (
	modeUpper = iota
	modeLower
	modeMixed
	modeDigit
	modePunct
)

var modeBits = [5]int{5, 5, 5, 4, 5}

// control codes
const (
	codePS = 0
	codeBS = 31
)

// charMap holds the code of each byte in each mode, or -1.
var charMap = func() (m [256][5]int) {
	for i := range m {
		m[i] = [5]int{-1, -1, -1, -1, -1}
	}
	for _, mode := range []int{modeUpper, modeLower, modeMixed, modeDigit} {
		m[' '][mode] = 1
	}
	for c := 0; c < 26; c++ {
		m['A'+c][modeUpper] = c + 2
		m['a'+c][modeLower] = c + 2
	}
	for c := 1; c <= 13; c++ {
		m[c][modeMixed] = c + 1
	}
	for i, c := range []byte{0x1B, 0x1C, 0x1D, 0x1E, 0x1F, '@', '\\', '^', '_', '`', '|', '~', 0x7F} {
		m[c][modeMixed] = 15 + i
	}
	for c := 0; c < 10; c++ {
		m['0'+c][modeDigit] = c + 2
	}
	m[','][modeDigit] = 12
	m['.'][modeDigit] = 13
	m['\r'][modePunct] = 1
	for i, c := range []byte(`!"#$%&'()*+,-./:;<=>?[]{}`) {
		m[c][modePunct] = 6 + i
	}
	return m
}()

var punctPairs = map[[2]byte]int{
	{'\r', '\n'}: 2,
	{'.', ' '}:   3,
	{',', ' '}:   4,
	{':', ' '}:   5,
}

type step struct{ mode, code int }

// latchSequence returns the codes latching from one mode to another, each
// written at the width of the mode it is issued in.
func latchSequence(from, to int) []step {
	const ul, ll, ml, dl, pl = 29, 28, 29, 30, 30
	switch from {
	case modeUpper:
		switch to {
		case modeLower:
			return []step{{modeUpper, ll}}
		case modeMixed:
			return []step{{modeUpper, ml}}
		case modeDigit:
			return []step{{modeUpper, dl}}
		case modePunct:
			return []step{{modeUpper, ml}, {modeMixed, pl}}
		}
	case modeLower:
		switch to {
		case modeUpper:
			return []step{{modeLower, ml}, {modeMixed, ul}}
		case modeMixed:
			return []step{{modeLower, ml}}
		case modeDigit:
			return []step{{modeLower, dl}}
		case modePunct:
			return []step{{modeLower, ml}, {modeMixed, pl}}
		}
	case modeMixed:
		switch to {
		case modeUpper:
			return []step{{modeMixed, ul}}
		case modeLower:
			return []step{{modeMixed, 28}}
		case modeDigit:
			return []step{{modeMixed, ul}, {modeUpper, dl}}
		case modePunct:
			return []step{{modeMixed, pl}}
		}
	case modeDigit:
		const dul = 14
		switch to {
		case modeUpper:
			return []step{{modeDigit, dul}}
		case modeLower:
			return []step{{modeDigit, dul}, {modeUpper, ll}}
		case modeMixed:
			return []step{{modeDigit, dul}, {modeUpper, ml}}
		case modePunct:
			return []step{{modeDigit, dul}, {modeUpper, ml}, {modeMixed, pl}}
		}
	case modePunct:
		const pul = 31
		switch to {
		case modeUpper:
			return []step{{modePunct, pul}}
		case modeLower:
			return []step{{modePunct, pul}, {modeUpper, ll}}
		case modeMixed:
			return []step{{modePunct, pul}, {modeUpper, ml}}
		case modeDigit:
			return []step{{modePunct, pul}, {modeUpper, dl}}
		}
	}
	return nil
}

// upperShift returns the U/S code of a mode, or -1 when it has none.
func upperShift(mode int) int {
	switch mode {
	case modeLower:
		return 28
	case modeDigit:
		return 15
	}
	return -1
}

// Stream writes an Aztec character stream. Text is encoded greedily; the
// other methods emit specific sequences so tests can exercise them.
type Stream struct {
	bits *bitutil.BitArray
	mode int
}

// NewStream starts a stream in UPPER mode.
func NewStream() *Stream {
	return &Stream{bits: bitutil.NewBitArray(0), mode: modeUpper}
}

// EncodeText encodes data from a fresh stream.
func EncodeText(data string) *bitutil.BitArray {
	return NewStream().Text(data).Bits()
}

// Bits returns the stream written so far.
func (s *Stream) Bits() *bitutil.BitArray {
	return s.bits.Clone()
}

func (s *Stream) emit(mode, code int) {
	s.bits.AppendBits(uint32(code), modeBits[mode])
}

func (s *Stream) latch(to int) {
	for _, st := range latchSequence(s.mode, to) {
		s.emit(st.mode, st.code)
	}
	s.mode = to
}

// Text appends data, preferring shifts for isolated characters of another
// mode and binary shift for bytes no mode holds.
func (s *Stream) Text(data string) *Stream {
	b := []byte(data)
	for i := 0; i < len(b); {
		if i+1 < len(b) {
			if code, ok := punctPairs[[2]byte{b[i], b[i+1]}]; ok {
				s.punct(code)
				i += 2
				continue
			}
		}
		c := b[i]
		if code := charMap[c][s.mode]; code >= 0 {
			s.emit(s.mode, code)
			i++
			continue
		}
		target := bestMode(c, s.mode)
		if target < 0 {
			i += s.binaryRun(b[i:])
			continue
		}
		nextFits := i+1 >= len(b) || charMap[b[i+1]][s.mode] >= 0
		switch {
		case target == modePunct && s.mode != modePunct && nextFits:
			s.punct(charMap[c][modePunct])
		case target == modeUpper && upperShift(s.mode) >= 0 && nextFits:
			s.emit(s.mode, upperShift(s.mode))
			s.emit(modeUpper, charMap[c][modeUpper])
		default:
			s.latch(target)
			s.emit(s.mode, charMap[c][s.mode])
		}
		i++
	}
	return s
}

// punct writes one PUNCT code, through P/S unless already in PUNCT.
func (s *Stream) punct(code int) {
	if s.mode != modePunct {
		s.emit(s.mode, codePS)
	}
	s.emit(modePunct, code)
}

func bestMode(c byte, from int) int {
	order := [5][]int{
		{modeLower, modeMixed, modeDigit, modePunct},
		{modeDigit, modeMixed, modeUpper, modePunct},
		{modeUpper, modePunct, modeLower, modeDigit},
		{modeUpper, modeLower, modeMixed, modePunct},
		{modeUpper, modeLower, modeMixed, modeDigit},
	}
	for _, m := range order[from] {
		if charMap[c][m] >= 0 {
			return m
		}
	}
	return -1
}

func inAnyMode(c byte) bool {
	for _, code := range charMap[c] {
		if code >= 0 {
			return true
		}
	}
	return false
}

// binaryRun binary shifts the leading bytes of data that no mode holds and
// returns how many were written.
func (s *Stream) binaryRun(data []byte) int {
	n := 0
	for n < len(data) && n < 2078 && !inAnyMode(data[n]) {
		n++
	}
	if n == 0 {
		n = 1
	}
	s.Binary(data[:n])
	return n
}

// Binary appends data behind a binary shift. Runs of 32 bytes or more use
// the zero length prefix and an 11 bit extended length.
func (s *Stream) Binary(data []byte) *Stream {
	if len(data) == 0 || len(data) > 2078 {
		panic(fmt.Sprintf("aztectest: binary run of %d bytes", len(data)))
	}
	if s.mode == modeDigit || s.mode == modePunct {
		s.latch(modeUpper)
	}
	s.emit(s.mode, codeBS)
	if len(data) <= 31 {
		s.bits.AppendBits(uint32(len(data)), 5)
	} else {
		s.bits.AppendBits(0, 5)
		s.bits.AppendBits(uint32(len(data)-31), 11)
	}
	for _, c := range data {
		s.bits.AppendBits(uint32(c), 8)
	}
	return s
}

// ECI appends an FLG(n) sequence switching to the given ECI value.
func (s *Stream) ECI(value int) *Stream {
	digits := fmt.Sprint(value)
	if value < 0 || len(digits) > 6 {
		panic(fmt.Sprintf("aztectest: ECI %d", value))
	}
	s.punct(0)
	s.bits.AppendBits(uint32(len(digits)), 3)
	for _, d := range digits {
		s.bits.AppendBits(uint32(d-'0'+2), 4)
	}
	return s
}

// FNC1 appends FLG(0).
func (s *Stream) FNC1() *Stream {
	s.punct(0)
	s.bits.AppendBits(0, 3)
	return s
}

// Raw appends arbitrary bits, leaving the mode unchanged.
func (s *Stream) Raw(value uint32, n int) *Stream {
	s.bits.AppendBits(value, n)
	return s
}
