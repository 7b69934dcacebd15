package bitutil

import (
	"fmt"
	"strings"
)

// BitMatrix represents a 2D matrix of bits.
// x is the column position, y is the row position. The origin is at the top-left.
type BitMatrix struct {
	width   int
	height  int
	rowSize int
	data    []uint32
}

// NewBitMatrix creates a new square BitMatrix with the given dimension.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize creates a new BitMatrix with the given width and height.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic("bitmatrix: dimensions must be greater than 0")
	}
	rowSize := (width + 31) / 32
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		data:    make([]uint32, rowSize*height),
	}
}

// ParseStringMatrix creates a BitMatrix from rows of setStr/unsetStr tokens
// separated by newlines. Blank lines are ignored.
func ParseStringMatrix(repr, setStr, unsetStr string) (*BitMatrix, error) {
	var rows [][]bool
	for _, line := range strings.Split(strings.ReplaceAll(repr, "\r", ""), "\n") {
		if line == "" {
			continue
		}
		var row []bool
		for pos := 0; pos < len(line); {
			switch {
			case strings.HasPrefix(line[pos:], setStr):
				row = append(row, true)
				pos += len(setStr)
			case strings.HasPrefix(line[pos:], unsetStr):
				row = append(row, false)
				pos += len(unsetStr)
			default:
				return nil, fmt.Errorf("bitmatrix: illegal character %q in row %d", line[pos], len(rows))
			}
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("bitmatrix: row %d has %d columns, want %d", len(rows), len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("bitmatrix: empty matrix")
	}
	m := NewBitMatrixWithSize(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, set := range row {
			if set {
				m.Set(x, y)
			}
		}
	}
	return m, nil
}

// Get returns true if the bit at (x, y) is set.
func (bm *BitMatrix) Get(x, y int) bool {
	offset := y*bm.rowSize + x/32
	return (bm.data[offset]>>uint(x&0x1f))&1 != 0
}

// Contains reports whether (x, y) lies inside the matrix.
func (bm *BitMatrix) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < bm.width && y < bm.height
}

// Set sets the bit at (x, y).
func (bm *BitMatrix) Set(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] |= 1 << uint(x&0x1f)
}

// Unset clears the bit at (x, y).
func (bm *BitMatrix) Unset(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] &^= 1 << uint(x&0x1f)
}

// Flip flips the bit at (x, y).
func (bm *BitMatrix) Flip(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] ^= 1 << uint(x&0x1f)
}

// SetRegion sets a rectangular region of bits, clipped to the matrix.
func (bm *BitMatrix) SetRegion(left, top, width, height int) {
	for y := max(top, 0); y < min(top+height, bm.height); y++ {
		for x := max(left, 0); x < min(left+width, bm.width); x++ {
			bm.Set(x, y)
		}
	}
}

// Rotated returns a copy rotated clockwise by degrees (a multiple of 90).
func (bm *BitMatrix) Rotated(degrees int) *BitMatrix {
	turns := ((degrees/90)%4 + 4) % 4
	if degrees%90 != 0 {
		panic("bitmatrix: degrees must be a multiple of 90")
	}
	w, h := bm.width, bm.height
	if turns%2 == 1 {
		w, h = h, w
	}
	out := NewBitMatrixWithSize(w, h)
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if !bm.Get(x, y) {
				continue
			}
			switch turns {
			case 0:
				out.Set(x, y)
			case 1:
				out.Set(bm.height-1-y, x)
			case 2:
				out.Set(bm.width-1-x, bm.height-1-y)
			case 3:
				out.Set(y, bm.width-1-x)
			}
		}
	}
	return out
}

// Width returns the width of the matrix.
func (bm *BitMatrix) Width() int { return bm.width }

// Height returns the height of the matrix.
func (bm *BitMatrix) Height() int { return bm.height }

// Clone returns a deep copy of the BitMatrix.
func (bm *BitMatrix) Clone() *BitMatrix {
	d := make([]uint32, len(bm.data))
	copy(d, bm.data)
	return &BitMatrix{width: bm.width, height: bm.height, rowSize: bm.rowSize, data: d}
}

// String returns a string representation using "X " for set and "  " for unset.
func (bm *BitMatrix) String() string {
	return bm.StringWithChars("X ", "  ")
}

// StringWithChars returns a string representation using the given set/unset strings.
func (bm *BitMatrix) StringWithChars(setString, unsetString string) string {
	var sb strings.Builder
	sb.Grow(bm.height * (bm.width + 1))
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if bm.Get(x, y) {
				sb.WriteString(setString)
			} else {
				sb.WriteString(unsetString)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Equals returns true if two BitMatrices are equal.
func (bm *BitMatrix) Equals(other *BitMatrix) bool {
	if bm.width != other.width || bm.height != other.height {
		return false
	}
	for i := range bm.data {
		if bm.data[i] != other.data[i] {
			return false
		}
	}
	return true
}
