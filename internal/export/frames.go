package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"

	"sprite-detector/internal/detect"
)

// Format selects the encoding of exported frame files.
type Format string

const (
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
)

// ParseFormat accepts "webp" or "png"; empty means webp.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatWebP:
		return FormatWebP, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// Encode writes img to w in the given format.
func (f Format) Encode(w io.Writer, img image.Image) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	}
	return fmt.Errorf("export: unknown format %q", string(f))
}

// FileName returns the output file name for fr.
func (f Format) FileName(fr detect.Frame) string {
	return fr.Name + "." + string(f)
}

// Options controls frame export.
type Options struct {
	Format Format
	Scale  int
}

// WriteFrames crops every frame from sheet and writes one file per frame
// into dir. It returns the written paths in frame order.
func WriteFrames(dir string, sheet image.Image, frames []detect.Frame, opts Options) ([]string, error) {
	if opts.Format == "" {
		opts.Format = FormatWebP
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", dir, err)
	}

	paths := make([]string, 0, len(frames))
	for _, fr := range frames {
		path := filepath.Join(dir, opts.Format.FileName(fr))
		if err := writeFrame(path, sheet, fr, opts); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFrame(path string, sheet image.Image, fr detect.Frame, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	img := Scale(Crop(sheet, fr.Rect), opts.Scale)
	if err := opts.Format.Encode(f, img); err != nil {
		return fmt.Errorf("export: encode %s: %w", fr.Name, err)
	}
	return f.Close()
}
