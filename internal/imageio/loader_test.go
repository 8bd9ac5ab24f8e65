package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(1, 1, color.NRGBA{R: 9, G: 8, B: 7, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	path := filepath.Join(t.TempDir(), "sheet.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 9, G: 8, B: 7, A: 255}, img.NRGBAAt(1, 1))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorContains(t, err, "read")

	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "decode")
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a/b/Sheet.PNG"))
	assert.True(t, Supported("hero.tga"))
	assert.True(t, Supported("hero.webp"))
	assert.False(t, Supported("notes.txt"))
	assert.False(t, Supported("noext"))
}

func TestToNRGBA_RebasesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	src.Set(6, 6, color.RGBA{R: 255, A: 255})

	got := ToNRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 3, 2), got.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, got.NRGBAAt(1, 1))

	n := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	assert.Same(t, n, ToNRGBA(n))
}

func TestDecode_UnknownExtension(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil), ".psd")
	assert.ErrorContains(t, err, "unsupported")
}
