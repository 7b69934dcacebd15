package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ericlevine/aztecgo/internal/aztectest"
)

// execute runs a fresh command tree and returns stdout, stderr and the
// error from Execute.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// writeSymbol renders text as an Aztec symbol and saves it as a PNG in dir.
func writeSymbol(t *testing.T, dir, name, text string, rotation int) string {
	t.Helper()
	sym, err := aztectest.BuildText(text)
	require.NoError(t, err)
	opts := aztectest.DefaultRenderOptions()
	opts.Rotation = rotation
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(aztectest.Render(sym.Matrix, opts), path))
	return path
}

// writePair saves two symbols side by side.
func writePair(t *testing.T, dir, name string, texts ...string) string {
	t.Helper()
	var images []image.Image
	for _, text := range texts {
		sym, err := aztectest.BuildText(text)
		require.NoError(t, err)
		images = append(images, aztectest.Render(sym.Matrix, aztectest.DefaultRenderOptions()))
	}
	canvas, _ := aztectest.Compose(10, images...)
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(canvas, path))
	return path
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "aztecscan", root.Use)
	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"decode", "scan", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestHelp(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "--metrics-file")
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "aztecscan version dev (commit: unknown, built: unknown)\n", out)
}

func TestDecodeText(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "hello.png", "Hello", 90)
	out, _, err := execute(t, "decode", path)
	require.NoError(t, err)
	assert.Equal(t, "[COMPACT layers=1 data=5] Hello\n", out)
}

func TestDecodeBinarizerFlags(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "hello.png", "Hello", 90)
	out, _, err := execute(t, "decode", "--block-size", "16", "--block-radius", "1", path)
	require.NoError(t, err)
	assert.Equal(t, "[COMPACT layers=1 data=5] Hello\n", out)

	_, _, err = execute(t, "decode", "--block-size", "1", path)
	assert.ErrorContains(t, err, "binarizer.block_size")
}

func TestDecodeJSON(t *testing.T) {
	dir := isolate(t)
	a := writeSymbol(t, dir, "a.png", "Hello", 0)
	b := writeSymbol(t, dir, "b.png", "World", 180)
	out, _, err := execute(t, "decode", "-o", "json", a, b)
	require.NoError(t, err)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "Hello", reports[0].Symbols[0].Text)
	assert.Equal(t, "World", reports[1].Symbols[0].Text)
	assert.Equal(t, 180, reports[1].Symbols[0].Metadata.Rotation)
	assert.Empty(t, reports[0].Error)
}

func TestDecodeFailure(t *testing.T) {
	dir := isolate(t)
	blank := filepath.Join(dir, "blank.png")
	require.NoError(t, imaging.Save(imaging.New(64, 64, image.White.C), blank))
	good := writeSymbol(t, dir, "good.png", "Hello", 0)

	out, _, err := execute(t, "decode", "--output", "yaml", blank, good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")

	var reports []fileReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "locate", reports[0].Stage)
	assert.Empty(t, reports[0].Symbols)
	assert.Equal(t, "Hello", reports[1].Symbols[0].Text)
}

func TestDecodeFixedRotation(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "r.png", "Hello", 270)

	out, _, err := execute(t, "decode", "--auto-orient=false", "--rotation", "270", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")

	_, errOut, err := execute(t, "decode", "--auto-orient=false", path)
	require.Error(t, err)
	assert.Contains(t, errOut, "r.png: error:")
}

func TestDecodeMissingFile(t *testing.T) {
	isolate(t)
	_, errOut, err := execute(t, "decode", "missing.png")
	require.Error(t, err)
	assert.Contains(t, errOut, "open image")
}

func TestScan(t *testing.T) {
	dir := isolate(t)
	path := writePair(t, dir, "pair.png", "Hello", "World")
	out, _, err := execute(t, "scan", "--workers", "2", path)
	require.NoError(t, err)
	assert.Equal(t, "[COMPACT layers=1 data=5] Hello\n[COMPACT layers=1 data=5] World\n", out)
}

func TestConfigFileAndMetrics(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "hello.png", "Hello", 0)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aztecscan.yaml"),
		[]byte("output:\n  format: json\nmetrics:\n  file: aztecscan.prom\n"), 0o600))

	out, _, err := execute(t, "decode", path)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))

	prom, err := os.ReadFile(filepath.Join(dir, "aztecscan.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `aztecscan_decodes_total{outcome="ok"} 1`)
	assert.Contains(t, string(prom), `aztecscan_files_total{status="ok"} 1`)

	// flags win over the config file
	out, _, err = execute(t, "decode", "--output", "text", path)
	require.NoError(t, err)
	assert.Equal(t, "[COMPACT layers=1 data=5] Hello\n", out)
}

func TestInvalidConfiguration(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "hello.png", "Hello", 0)
	_, _, err := execute(t, "decode", "--output", "csv", path)
	assert.ErrorContains(t, err, "invalid output format")

	_, _, err = execute(t, "--config", filepath.Join(dir, "nope.yaml"), "decode", path)
	assert.ErrorContains(t, err, "does not exist")
}

func TestDebugLogging(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "hello.png", "Hello", 0)
	_, errOut, err := execute(t, "decode", "--log-level", "debug", "--log-format", "json", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, `"msg":"symbol decoded"`)
	assert.Contains(t, errOut, `"binarizer":"hybrid"`)
}
