package batch

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprite-detector/internal/detect"
	"sprite-detector/internal/engine"
	"sprite-detector/internal/export"
)

// writeSheet writes a 10×10 white PNG with one 3×3 black block per origin.
func writeSheet(t *testing.T, path string, origins ...image.Point) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for _, o := range origins {
		for y := o.Y; y < o.Y+3; y++ {
			for x := o.X; x < o.X+3; x++ {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func inlineEngine() *engine.Engine {
	cfg := detect.DefaultConfig()
	cfg.UseWorker = false
	return engine.New(engine.WithDefaults(cfg))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "hero", SheetName(filepath.Join("sheets", "hero.png")))
	assert.Equal(t, "hero.walk", SheetName("hero.walk.tga"))
	assert.Equal(t, "noext", SheetName("noext"))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	writeSheet(t, filepath.Join(dir, "b.png"))
	writeSheet(t, filepath.Join(dir, "sub", "a.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	paths, err := Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "sub", "a.png"),
	}, paths)

	_, err = Scan(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestRun_SameSizeSheetsDoNotShareResults(t *testing.T) {
	dir := t.TempDir()
	one := filepath.Join(dir, "one.png")
	two := filepath.Join(dir, "two.png")
	writeSheet(t, one, image.Pt(1, 1))
	writeSheet(t, two, image.Pt(1, 1), image.Pt(6, 6))

	results := Run(context.Background(), Config{Engine: inlineEngine(), Workers: 2}, []string{one, two})
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.Equal(t, one, results[0].Path)
	assert.Len(t, results[0].Frames, 1)
	assert.Equal(t, 10, results[0].Width)

	assert.True(t, results[1].Success)
	require.Len(t, results[1].Frames, 2)
	assert.Equal(t, detect.Rect{X: 6, Y: 6, W: 3, H: 3}, results[1].Frames[1].Rect)
}

func TestRun_RecordsFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	bad := filepath.Join(dir, "bad.png")
	writeSheet(t, good, image.Pt(2, 2))
	require.NoError(t, os.WriteFile(bad, []byte("junk"), 0644))

	results := Run(context.Background(), Config{Engine: inlineEngine(), Workers: 1}, []string{bad, good})
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "decode")
	assert.True(t, results[1].Success)
	assert.Equal(t, 1, Failed(results))
}

func TestRun_ExportsFrames(t *testing.T) {
	dir := t.TempDir()
	sheet := filepath.Join(dir, "hero.png")
	writeSheet(t, sheet, image.Pt(0, 0), image.Pt(5, 5))
	out := filepath.Join(dir, "out")

	results := Run(context.Background(), Config{
		Engine:    inlineEngine(),
		OutputDir: out,
		Export:    true,
		Format:    export.Options{Format: export.FormatPNG},
	}, []string{sheet})
	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, []string{
		filepath.Join(out, "hero", "sprite_0.png"),
		filepath.Join(out, "hero", "sprite_1.png"),
	}, results[0].Files)
	assert.FileExists(t, results[0].Files[1])
}

func TestRun_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	sheet := filepath.Join(dir, "a.png")
	writeSheet(t, sheet, image.Pt(1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, Config{Engine: inlineEngine()}, []string{sheet, sheet, sheet})
	require.Len(t, results, 3)
	assert.Equal(t, 3, Failed(results))
	for _, r := range results {
		assert.Equal(t, sheet, r.Path)
		assert.NotEmpty(t, r.Error)
	}
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	results := []Result{
		{Path: "a.png", Width: 4, Height: 4, Success: true,
			Frames: []detect.Frame{detect.NewFrame(0, detect.Rect{W: 2, H: 2})}},
		{Path: "b.png", Error: "boom"},
	}
	require.NoError(t, WriteManifest(path, results))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "sprite_0", entries[0].Frames[0].Name)
	assert.Empty(t, entries[0].Error)
	assert.Equal(t, "boom", entries[1].Error)
	assert.Empty(t, entries[1].Frames)
}
