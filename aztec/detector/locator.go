// Package detector finds the bullseye finder pattern of an Aztec symbol in a
// binarized image and fixes the symbol's center, module pitch, class and
// rotation.
//
// Candidates come from a row scan for the dark-light-dark-light-dark run
// pattern through the central module, cross checked along the column. Each
// candidate is then verified as concentric square rings, which also tells
// compact (rings 0..4) from full (rings 0..6) symbols. Finally the
// orientation marks at the corners of the mode ring fix the rotation.
package detector

import (
	"fmt"
	"math"
	"sort"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/bitutil"
	"github.com/ericlevine/aztecgo/transform"
)

// orientation mark patterns, read clockwise as [before corner, corner,
// after corner], for the top-left, top-right, bottom-right and bottom-left
// corners of the mode ring.
var orientationMarks = [4]int{0b111, 0b011, 0b100, 0b000}

const maxOrientationDistance = 2

type candidate struct {
	x, y  float64
	pitch float64
	count int
}

// Locate finds a bullseye and resolves the symbol rotation from the
// orientation marks.
func Locate(image *bitutil.BitMatrix) (*Mapping, error) {
	return locate(image, true)
}

// LocateBullseye finds a bullseye without reading the orientation marks. The
// returned mapping has rotation 0.
func LocateBullseye(image *bitutil.BitMatrix) (*Mapping, error) {
	return locate(image, false)
}

func locate(image *bitutil.BitMatrix, orient bool) (*Mapping, error) {
	candidates := findCandidates(image)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no finder pattern candidates", aztecgo.ErrLocate)
	}
	var lastErr error
	for _, c := range candidates {
		m, err := verify(image, c, orient)
		if err == nil {
			return m, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %d candidates rejected, last: %v", aztecgo.ErrLocate, len(candidates), lastErr)
}

// ---------------------------------------------------------------------------
// Candidate search
// ---------------------------------------------------------------------------

func findCandidates(image *bitutil.BitMatrix) []*candidate {
	width, height := image.Width(), image.Height()
	skip := max(1, height/400)

	var found []*candidate
	for y := skip / 2; y < height; y += skip {
		var stateCount [5]int
		state := 0
		for x := 0; x < width; x++ {
			if image.Get(x, y) {
				if state&1 == 1 {
					state++
				}
				stateCount[state]++
				continue
			}
			if state&1 == 1 {
				stateCount[state]++
				continue
			}
			if state < 4 {
				state++
				stateCount[state]++
				continue
			}
			if foundPattern(stateCount) {
				handlePossibleCenter(image, stateCount, x, y, &found)
			}
			stateCount = [5]int{stateCount[2], stateCount[3], stateCount[4], 1, 0}
			state = 3
		}
		if state == 4 && foundPattern(stateCount) {
			handlePossibleCenter(image, stateCount, width, y, &found)
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].count > found[j].count })
	return found
}

// foundPattern reports whether five runs have similar widths, each within
// half the average run of the others.
func foundPattern(stateCount [5]int) bool {
	total := 0
	for _, c := range stateCount {
		if c == 0 {
			return false
		}
		total += c
	}
	avg := float64(total) / 5
	for _, c := range stateCount {
		if math.Abs(float64(c)-avg) > avg/2 {
			return false
		}
	}
	return true
}

// handlePossibleCenter cross checks a horizontal hit ending just before
// column end, first vertically and then horizontally again through the
// refined row.
func handlePossibleCenter(image *bitutil.BitMatrix, stateCount [5]int, end, y int, found *[]*candidate) {
	total := 0
	for _, c := range stateCount {
		total += c
	}
	cx := float64(end-stateCount[4]-stateCount[3]) - float64(stateCount[2])/2
	cy, vTotal, ok := crossCheck(image, int(cx), y, 0, 1, total)
	if !ok {
		return
	}
	cx2, hTotal, ok := crossCheck(image, int(cx), int(cy), 1, 0, total)
	if !ok {
		return
	}
	pitch := float64(hTotal+vTotal) / 10
	for _, c := range *found {
		if math.Abs(c.x-cx2) <= c.pitch && math.Abs(c.y-cy) <= c.pitch {
			n := float64(c.count)
			c.x = (n*c.x + cx2) / (n + 1)
			c.y = (n*c.y + cy) / (n + 1)
			c.pitch = (n*c.pitch + pitch) / (n + 1)
			c.count++
			return
		}
	}
	*found = append(*found, &candidate{x: cx2, y: cy, pitch: pitch, count: 1})
}

// crossCheck measures the five runs through (x, y) along direction (dx, dy)
// and returns the center of the middle run along that axis. The total run
// length must stay within 40% of originalTotal.
func crossCheck(image *bitutil.BitMatrix, x, y, dx, dy, originalTotal int) (float64, int, bool) {
	if !image.Contains(x, y) || !image.Get(x, y) {
		return 0, 0, false
	}
	maxCount := originalTotal / 2
	var stateCount [5]int

	run := func(px, py, step, state int, dark bool) (int, int) {
		for image.Contains(px, py) && image.Get(px, py) == dark && stateCount[state] <= maxCount {
			stateCount[state]++
			px, py = px+step*dx, py+step*dy
		}
		return px, py
	}

	// backward from the start pixel: middle, light, dark
	px, py := run(x, y, -1, 2, true)
	px, py = run(px, py, -1, 1, false)
	run(px, py, -1, 0, true)
	// forward past the start pixel
	px, py = run(x+dx, y+dy, 1, 2, true)
	px, py = run(px, py, 1, 3, false)
	px, py = run(px, py, 1, 4, true)

	total := 0
	for _, c := range stateCount {
		total += c
	}
	if 5*abs(total-originalTotal) >= 2*originalTotal || !foundPattern(stateCount) {
		return 0, 0, false
	}
	end := px*dx + py*dy
	return float64(end-stateCount[4]-stateCount[3]) - float64(stateCount[2])/2, total, true
}

// ---------------------------------------------------------------------------
// Ring verification
// ---------------------------------------------------------------------------

func verify(image *bitutil.BitMatrix, c *candidate, orient bool) (*Mapping, error) {
	r := ringRadius(image, c.x, c.y, c.pitch)
	if r != 4 && r != 6 {
		return nil, fmt.Errorf("candidate at (%.1f,%.1f) has %d rings", c.x, c.y, r+1)
	}
	m := &Mapping{Center: transform.Point{X: c.x, Y: c.y}, Pitch: c.pitch, Compact: r == 4}
	refine(image, m, r)
	if !orient {
		return m, nil
	}

	grid, err := m.Sample(image, 2*r+3)
	if err != nil {
		return nil, err
	}
	rotation, err := readOrientation(grid, r+1)
	if err != nil {
		return nil, err
	}
	return m.WithRotation(rotation), nil
}

// ringRadius returns the largest d such that rings 0..d around (cx, cy) all
// pass, or -1 when the center itself does not.
func ringRadius(image *bitutil.BitMatrix, cx, cy, pitch float64) int {
	r := -1
	for d := 0; d <= 7; d++ {
		if !ringPasses(image, cx, cy, pitch, d) {
			break
		}
		r = d
	}
	return r
}

// ringPasses checks the 8d modules at Chebyshev distance d: even rings are
// dark, odd rings light, and at most d/2 samples may disagree. Samples
// outside the image disagree.
func ringPasses(image *bitutil.BitMatrix, cx, cy, pitch float64, d int) bool {
	dark := d%2 == 0
	mismatches := 0
	for dy := -d; dy <= d; dy++ {
		for dx := -d; dx <= d; dx++ {
			if max(abs(dx), abs(dy)) != d {
				continue
			}
			x := int(math.Floor(cx + float64(dx)*pitch))
			y := int(math.Floor(cy + float64(dy)*pitch))
			if !image.Contains(x, y) || image.Get(x, y) != dark {
				mismatches++
				if mismatches > d/2 {
					return false
				}
			}
		}
	}
	return true
}

// refine re-measures center and pitch from the inner edges of ring r: the
// r-th color change walking out of the center in each direction. The ring
// r-1 it encloses spans 2r-1 modules. Estimates that disagree with the run
// based pitch by more than a third are discarded.
func refine(image *bitutil.BitMatrix, m *Mapping, r int) {
	x, y := int(math.Floor(m.Center.X)), int(math.Floor(m.Center.Y))
	if !image.Contains(x, y) || !image.Get(x, y) {
		return
	}
	left, okL := edge(image, x, y, -1, 0, r)
	right, okR := edge(image, x, y, 1, 0, r)
	top, okT := edge(image, x, y, 0, -1, r)
	bottom, okB := edge(image, x, y, 0, 1, r)
	if !(okL && okR && okT && okB) {
		return
	}
	span := float64(2*r - 1)
	pitch := (float64(right-left) + float64(bottom-top)) / (2 * span)
	if math.Abs(pitch-m.Pitch) > m.Pitch/3 {
		return
	}
	m.Center = transform.Point{X: float64(left+right) / 2, Y: float64(top+bottom) / 2}
	m.Pitch = pitch
}

// edge walks from (x, y) in direction (dx, dy) and returns the pixel
// boundary coordinate of the n-th color change.
func edge(image *bitutil.BitMatrix, x, y, dx, dy, n int) (int, bool) {
	if !image.Contains(x, y) {
		return 0, false
	}
	color := image.Get(x, y)
	changes := 0
	for {
		nx, ny := x+dx, y+dy
		if !image.Contains(nx, ny) {
			return 0, false
		}
		if image.Get(nx, ny) != color {
			color = !color
			changes++
			if changes == n {
				if dx != 0 {
					return max(x, nx), true
				}
				return max(y, ny), true
			}
		}
		x, y = nx, ny
	}
}

// ---------------------------------------------------------------------------
// Orientation
// ---------------------------------------------------------------------------

// readOrientation reads the corner marks of the ring at distance d around
// the center module of grid and returns the clockwise rotation of the
// symbol. The best cyclic match must be within maxOrientationDistance bits
// and strictly better than every other rotation.
func readOrientation(grid *bitutil.BitMatrix, d int) (int, error) {
	c := grid.Width() / 2
	bit := func(dx, dy int) int {
		if grid.Get(c+dx, c+dy) {
			return 1
		}
		return 0
	}
	mark := func(bx, by, cx, cy, ax, ay int) int {
		return bit(bx, by)<<2 | bit(cx, cy)<<1 | bit(ax, ay)
	}
	observed := [4]int{
		mark(-d, -d+1, -d, -d, -d+1, -d),
		mark(d-1, -d, d, -d, d, -d+1),
		mark(d, d-1, d, d, d-1, d),
		mark(-d+1, d, -d, d, -d, d-1),
	}

	best, bestDist, tie := 0, math.MaxInt, false
	for k := 0; k < 4; k++ {
		dist := 0
		for i, want := range orientationMarks {
			dist += popcount3(observed[(i+k)%4] ^ want)
		}
		switch {
		case dist < bestDist:
			best, bestDist, tie = k, dist, false
		case dist == bestDist:
			tie = true
		}
	}
	if bestDist > maxOrientationDistance || tie {
		return 0, fmt.Errorf("orientation marks %03b unreadable (distance %d)", observed, bestDist)
	}
	return best * 90, nil
}

func popcount3(v int) int {
	return v&1 + v>>1&1 + v>>2&1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
