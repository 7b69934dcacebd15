package decoder

import (
	"fmt"
	"strings"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/bitutil"
	"github.com/ericlevine/aztecgo/charset"
)

// Mode is a character table of the Aztec character stream.
type Mode int

const (
	ModeUpper Mode = iota
	ModeLower
	ModeMixed
	ModePunct
	ModeDigit
	ModeBinary
)

var modeNames = [...]string{"UPPER", "LOWER", "MIXED", "PUNCT", "DIGIT", "BINARY"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "UNKNOWN"
	}
	return modeNames[m]
}

// CodeSize returns the width in bits of a code in this table.
func (m Mode) CodeSize() int {
	if m == ModeDigit {
		return 4
	}
	return 5
}

type opKind uint8

const (
	opChar opKind = iota
	opLatch
	opShift
	opBinaryShift
	opFLG
)

// entry is one code of a table: a literal, or a control with its target.
type entry struct {
	kind   opKind
	text   string
	target Mode
}

func lit(s string) entry { return entry{kind: opChar, text: s} }
func latch(m Mode) entry { return entry{kind: opLatch, target: m} }
func shift(m Mode) entry { return entry{kind: opShift, target: m} }

func letters(from byte) []entry {
	out := make([]entry, 26)
	for i := range out {
		out[i] = lit(string(from + byte(i)))
	}
	return out
}

var (
	binaryShift = entry{kind: opBinaryShift, target: ModeBinary}
	flg         = entry{kind: opFLG}
)

var tables = func() [5][]entry {
	var t [5][]entry
	t[ModeUpper] = append(append([]entry{shift(ModePunct), lit(" ")}, letters('A')...),
		latch(ModeLower), latch(ModeMixed), latch(ModeDigit), binaryShift)
	t[ModeLower] = append(append([]entry{shift(ModePunct), lit(" ")}, letters('a')...),
		shift(ModeUpper), latch(ModeMixed), latch(ModeDigit), binaryShift)

	mixed := []entry{shift(ModePunct), lit(" ")}
	for _, c := range "\x01\x02\x03\x04\x05\x06\x07\b\t\n\v\f\r\x1b\x1c\x1d\x1e\x1f@\\^_`|~\x7f" {
		mixed = append(mixed, lit(string(c)))
	}
	t[ModeMixed] = append(mixed, latch(ModeLower), latch(ModeUpper), latch(ModePunct), binaryShift)

	punct := []entry{flg, lit("\r"), lit("\r\n"), lit(". "), lit(", "), lit(": ")}
	for _, c := range `!"#$%&'()*+,-./:;<=>?[]{}` {
		punct = append(punct, lit(string(c)))
	}
	t[ModePunct] = append(punct, latch(ModeUpper))

	digit := []entry{shift(ModePunct), lit(" ")}
	for _, c := range "0123456789,." {
		digit = append(digit, lit(string(c)))
	}
	t[ModeDigit] = append(digit, latch(ModeUpper), shift(ModeUpper))
	return t
}()

// StreamResult is the decoded character stream.
type StreamResult struct {
	Text     string
	RawBytes []byte
	ECIs     []int
	FNC1     bool
}

type streamDecoder struct {
	src    *bitutil.BitSource
	dec    charset.TextDecoder
	text   strings.Builder
	raw    []byte
	buf    []byte
	eci    *charset.ECI
	result StreamResult
}

// DecodeStream runs the character stream state machine over corrected data
// bits. Byte runs are turned into text by dec, switching charset at each
// ECI designator.
//
// The stream has no terminator: decoding stops when the bits run out. A
// trailing partial code is padding. A shift, binary shift or FLG sequence
// cut short by the end of the stream is padding only when every bit from its
// start onward is set.
func DecodeStream(bits *bitutil.BitArray, dec charset.TextDecoder) (*StreamResult, error) {
	if dec == nil {
		dec = charset.Decoder{}
	}
	d := &streamDecoder{src: bitutil.NewBitSource(bits), dec: dec}
	if err := d.run(); err != nil {
		return nil, err
	}
	if err := d.flush(); err != nil {
		return nil, err
	}
	d.result.Text = d.text.String()
	d.result.RawBytes = d.raw
	return &d.result, nil
}

func (d *streamDecoder) run() error {
	latchMode, shiftMode := ModeUpper, ModeUpper
	// pending is the offset of the first unresolved shift, binary shift or
	// FLG control, or -1.
	pending := -1

	for {
		start := d.src.Offset()
		if pending < 0 {
			pending = start
		}
		if shiftMode == ModeBinary {
			if !d.binaryRun() {
				return d.truncated(pending)
			}
			shiftMode, pending = latchMode, -1
			continue
		}

		size := shiftMode.CodeSize()
		if d.src.Available() < size {
			if shiftMode != latchMode {
				return d.truncated(pending)
			}
			return nil
		}
		code, _ := d.src.ReadBits(size)
		e := tables[shiftMode][code]
		switch e.kind {
		case opChar:
			d.buf = append(d.buf, e.text...)
			shiftMode, pending = latchMode, -1
		case opLatch, opShift, opBinaryShift:
			// a shift issued while shifted returns to the mode it was
			// invoked from
			latchMode = shiftMode
			shiftMode = e.target
			if e.kind == opLatch {
				latchMode = e.target
				pending = -1
			}
		case opFLG:
			ok, err := d.flg()
			if err != nil {
				return err
			}
			if !ok {
				return d.truncated(pending)
			}
			shiftMode, pending = latchMode, -1
		}
	}
}

// binaryRun copies the bytes of a binary shift. It reports false when the
// stream ends before the announced length.
func (d *streamDecoder) binaryRun() bool {
	n, err := d.src.ReadBits(5)
	if err != nil {
		return false
	}
	if n == 0 {
		if n, err = d.src.ReadBits(11); err != nil {
			return false
		}
		n += 31
	}
	if d.src.Available() < 8*n {
		return false
	}
	for i := 0; i < n; i++ {
		b, _ := d.src.ReadBits(8)
		d.buf = append(d.buf, byte(b))
	}
	return true
}

// flg handles the FLG(n) escape. It reports false when the stream ends
// inside the sequence.
func (d *streamDecoder) flg() (bool, error) {
	n, err := d.src.ReadBits(3)
	if err != nil {
		return false, nil
	}
	switch n {
	case 0:
		if err := d.flush(); err != nil {
			return false, err
		}
		d.text.WriteByte(0x1D)
		d.raw = append(d.raw, 0x1D)
		d.result.FNC1 = true
		return true, nil
	case 7:
		return false, fmt.Errorf("%w: reserved FLG(7)", aztecgo.ErrInvalidCharsetSequence)
	}
	if d.src.Available() < 4*n {
		return false, nil
	}
	value := 0
	for i := 0; i < n; i++ {
		digit, _ := d.src.ReadBits(4)
		if digit < 2 || digit > 11 {
			return false, fmt.Errorf("%w: ECI digit code %d", aztecgo.ErrInvalidCharsetSequence, digit)
		}
		value = value*10 + digit - 2
	}
	if err := d.flush(); err != nil {
		return false, err
	}
	d.eci = charset.ECIByValue(value)
	d.result.ECIs = append(d.result.ECIs, value)
	return true, nil
}

// truncated resolves a control sequence cut off by the end of the stream.
func (d *streamDecoder) truncated(start int) error {
	if d.src.OnesFrom(start) {
		d.src.Skip()
		return nil
	}
	return fmt.Errorf("%w: stream ends inside a control sequence at bit %d", aztecgo.ErrInvalidCharsetSequence, start)
}

// flush decodes the pending bytes with the current charset.
func (d *streamDecoder) flush() error {
	if len(d.buf) == 0 {
		return nil
	}
	s, err := d.dec.Decode(d.buf, d.eci)
	if err != nil {
		return fmt.Errorf("%w: %w", aztecgo.ErrInvalidCharsetSequence, err)
	}
	d.text.WriteString(s)
	d.raw = append(d.raw, d.buf...)
	d.buf = d.buf[:0]
	return nil
}
