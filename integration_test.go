package aztecgo_test

import (
	"image"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/aztec"
	"github.com/ericlevine/aztecgo/binarizer"
	"github.com/ericlevine/aztecgo/internal/aztectest"
)

// encodeAndDecode renders content, stores it with save, reloads the file and
// decodes it through the image pipeline.
func encodeAndDecode(t *testing.T, content string, save func(path string, img image.Image) error) *aztecgo.Result {
	t.Helper()
	sym, err := aztectest.BuildText(content)
	require.NoError(t, err)
	img := aztectest.Render(sym.Matrix, aztectest.DefaultRenderOptions())

	path := filepath.Join(t.TempDir(), "symbol")
	require.NoError(t, save(path, img))
	loaded, err := imaging.Open(path)
	require.NoError(t, err)

	source := aztecgo.NewImageLuminanceSource(loaded)
	result, err := aztec.NewReader().Decode(aztecgo.NewBinaryBitmap(binarizer.NewHybrid(source)), nil)
	require.NoError(t, err)
	assert.Equal(t, sym.Metadata().Layers, result.Metadata.Layers)
	return result
}

func writeWith(encode func(f *os.File, img image.Image) error) func(string, image.Image) error {
	return func(path string, img image.Image) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := encode(f, img); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

func TestRoundTripFileFormats(t *testing.T) {
	formats := []struct {
		name string
		save func(string, image.Image) error
	}{
		{"png", writeWith(func(f *os.File, img image.Image) error { return png.Encode(f, img) })},
		{"gif", writeWith(func(f *os.File, img image.Image) error { return gif.Encode(f, img, nil) })},
		{"bmp", writeWith(func(f *os.File, img image.Image) error { return bmp.Encode(f, img) })},
		{"tiff", writeWith(func(f *os.File, img image.Image) error { return tiff.Encode(f, img, nil) })},
	}
	content := "Hello, World! 1234567890"
	for _, tc := range formats {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, content, encodeAndDecode(t, content, tc.save).Text)
		})
	}
}

func TestRoundTripContents(t *testing.T) {
	save := writeWith(func(f *os.File, img image.Image) error { return png.Encode(f, img) })
	for _, content := range []string{
		"A",
		"1234567890",
		"lower case only",
		"MiXeD 42, with: punctuation!?",
		"Latin-1 \xe9\xe8\xea",
		"line one\r\nline two",
	} {
		t.Run(content, func(t *testing.T) {
			result := encodeAndDecode(t, content, save)
			assert.Equal(t, []byte(content), result.RawBytes)
		})
	}
}

func TestImageLuminanceSource(t *testing.T) {
	sym, err := aztectest.BuildText("test")
	require.NoError(t, err)
	img := aztectest.Render(sym.Matrix, aztectest.DefaultRenderOptions())
	source := aztecgo.NewImageLuminanceSource(img)

	assert.Equal(t, img.Bounds().Dx(), source.Width())
	assert.Equal(t, img.Bounds().Dy(), source.Height())
	assert.Len(t, source.Matrix(), source.Width()*source.Height())
	assert.Len(t, source.Row(0, nil), source.Width())

	gray := source.Image()
	again := aztecgo.NewGrayImageLuminanceSource(gray)
	assert.Equal(t, source.Matrix(), again.Matrix())
}
