package aztecgo_test

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/aztec"
	"github.com/ericlevine/aztecgo/binarizer"
	"github.com/ericlevine/aztecgo/internal/aztectest"
)

// blackboxTestRotation defines expected pass/fail thresholds for one rotation angle.
type blackboxTestRotation struct {
	rotation          int
	mustPassCount     int
	globalPassCount   int
	maxMisreads       int
	maxGlobalMisreads int
}

// corpusSymbol describes one generated symbol of a corpus.
type corpusSymbol struct {
	name   string
	text   string
	spec   *aztectest.Spec // nil picks the smallest size
	damage []int           // codewords to corrupt
}

// blackboxTestCase defines a complete blackbox test for one corpus.
type blackboxTestCase struct {
	corpus   []corpusSymbol
	gradient int
	pitch    int
	tests    []blackboxTestRotation
}

type imageTestData struct {
	path         string
	expectedText string
	expectedMeta aztecgo.SymbolMetadata
}

// writeCorpus renders every corpus symbol at the given rotation into dir and
// returns the files with their expected contents.
func writeCorpus(t *testing.T, dir string, tc blackboxTestCase, rotation int) []imageTestData {
	t.Helper()
	opts := aztectest.DefaultRenderOptions()
	opts.Rotation = rotation
	opts.Gradient = tc.gradient
	if tc.pitch > 0 {
		opts.Pitch = tc.pitch
	}

	var out []imageTestData
	for _, cs := range tc.corpus {
		var sym *aztectest.Symbol
		var err error
		if cs.spec != nil {
			sym, err = aztectest.Build(aztectest.EncodeText(cs.text), *cs.spec)
		} else {
			sym, err = aztectest.BuildText(cs.text)
		}
		if err != nil {
			t.Fatalf("build %s: %v", cs.name, err)
		}
		for _, i := range cs.damage {
			sym.CorruptCodeword(i)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-%d.png", cs.name, rotation))
		if err := imaging.Save(aztectest.Render(sym.Matrix, opts), path); err != nil {
			t.Fatalf("save %s: %v", path, err)
		}
		out = append(out, imageTestData{path: path, expectedText: cs.text, expectedMeta: sym.Metadata()})
	}
	return out
}

func loadTestImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// runBlackBoxTest runs a complete blackbox test for a given test case.
func runBlackBoxTest(t *testing.T, tc blackboxTestCase) {
	t.Helper()
	dir := t.TempDir()

	testCount := len(tc.tests)
	passedCounts := make([]int, testCount)
	misreadCounts := make([]int, testCount)
	globalCounts := make([]int, testCount)
	globalMisreadCounts := make([]int, testCount)

	for i, rot := range tc.tests {
		for _, td := range writeCorpus(t, dir, tc, rot.rotation) {
			img, err := loadTestImage(td.path)
			if err != nil {
				t.Fatalf("failed to load %s: %v", td.path, err)
			}
			source := aztecgo.NewImageLuminanceSource(img)

			result, err := aztec.NewReader().Decode(aztecgo.NewBinaryBitmap(binarizer.NewHybrid(source)), nil)
			switch classifyResult(result, td) {
			case resultPassed:
				passedCounts[i]++
			case resultMisread:
				misreadCounts[i]++
				t.Logf("  MISREAD rot=%d file=%s got=%q expected=%q meta=%v",
					rot.rotation, filepath.Base(td.path), result.Text, td.expectedText, result.Metadata)
			case resultNotFound:
				t.Logf("  NOTFOUND rot=%d file=%s: %v", rot.rotation, filepath.Base(td.path), err)
			}

			result, err = aztec.NewReader().Decode(aztecgo.NewBinaryBitmap(binarizer.NewGlobal(source)), nil)
			switch classifyResult(result, td) {
			case resultPassed:
				globalCounts[i]++
			case resultMisread:
				globalMisreadCounts[i]++
				t.Logf("  MISREAD(global) rot=%d file=%s got=%q expected=%q meta=%v",
					rot.rotation, filepath.Base(td.path), result.Text, td.expectedText, result.Metadata)
			case resultNotFound:
				t.Logf("  NOTFOUND(global) rot=%d file=%s: %v", rot.rotation, filepath.Base(td.path), err)
			}
		}
	}

	for i, rot := range tc.tests {
		t.Logf("Rotation %3d°: %d/%d passed (need %d), %d misread (max %d) | Global: %d/%d passed (need %d), %d misread (max %d)",
			rot.rotation,
			passedCounts[i], len(tc.corpus), rot.mustPassCount, misreadCounts[i], rot.maxMisreads,
			globalCounts[i], len(tc.corpus), rot.globalPassCount, globalMisreadCounts[i], rot.maxGlobalMisreads)

		if passedCounts[i] < rot.mustPassCount {
			t.Errorf("Rotation %d°: Too many images failed: got %d, need %d",
				rot.rotation, passedCounts[i], rot.mustPassCount)
		}
		if globalCounts[i] < rot.globalPassCount {
			t.Errorf("Rotation %d° (global): Too many images failed: got %d, need %d",
				rot.rotation, globalCounts[i], rot.globalPassCount)
		}
		if misreadCounts[i] > rot.maxMisreads {
			t.Errorf("Rotation %d°: Too many misreads: got %d, max %d",
				rot.rotation, misreadCounts[i], rot.maxMisreads)
		}
		if globalMisreadCounts[i] > rot.maxGlobalMisreads {
			t.Errorf("Rotation %d° (global): Too many misreads: got %d, max %d",
				rot.rotation, globalMisreadCounts[i], rot.maxGlobalMisreads)
		}
	}
}

type decodeOutcome int

const (
	resultNotFound decodeOutcome = iota
	resultPassed
	resultMisread
)

// classifyResult classifies a decode result as passed, misread, or not found.
func classifyResult(result *aztecgo.Result, td imageTestData) decodeOutcome {
	if result == nil {
		return resultNotFound
	}
	if result.Text != td.expectedText {
		return resultMisread
	}
	got, want := result.Metadata, td.expectedMeta
	if got.Class != want.Class || got.Layers != want.Layers ||
		got.DataCodewords != want.DataCodewords || got.ModeECCBits != want.ModeECCBits {
		return resultMisread
	}
	return resultPassed
}

// Helper to create test rotation with just pass counts (maxMisreads=0)
func rot(degrees, mustPass, globalPass int) blackboxTestRotation {
	return blackboxTestRotation{
		rotation:        degrees,
		mustPassCount:   mustPass,
		globalPassCount: globalPass,
	}
}
