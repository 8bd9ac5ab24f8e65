package pixel

import (
	"fmt"
	"image"
	"image/color"
)

// BytesPerPixel is the size of one RGBA pixel in Buffer.Pix.
const BytesPerPixel = 4

// Buffer holds an image as a flat RGBA slice for cache locality.
// Rows are stored top to bottom with no padding between them.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA interleaved, len = W*H*4
}

// NewBuffer allocates a zeroed (fully transparent) buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*BytesPerPixel),
	}
}

// FromPix wraps an existing RGBA slice. The slice length must match w*h*4.
func FromPix(w, h int, pix []uint8) (*Buffer, error) {
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("pixel: negative size %dx%d", w, h)
	}
	if len(pix) != w*h*BytesPerPixel {
		return nil, fmt.Errorf("pixel: buffer has %d bytes, want %d for %dx%d", len(pix), w*h*BytesPerPixel, w, h)
	}
	return &Buffer{Width: w, Height: h, Pix: pix}, nil
}

// Len returns the number of pixels.
func (b *Buffer) Len() int {
	return b.Width * b.Height
}

// Empty reports whether the buffer has no pixels.
func (b *Buffer) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Index returns the byte offset of (x, y). No bounds check.
func (b *Buffer) Index(x, y int) int {
	return (y*b.Width + x) * BytesPerPixel
}

// At returns the color at (x, y). Callers bounds-check; out-of-range
// coordinates either panic or alias another pixel.
func (b *Buffer) At(x, y int) Color {
	i := (y*b.Width + x) * BytesPerPixel
	return Color{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

// AtIndex returns the color of pixel number p (row-major).
func (b *Buffer) AtIndex(p int) Color {
	i := p * BytesPerPixel
	return Color{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

// SetIndex overwrites pixel number p with c.
func (b *Buffer) SetIndex(p int, c Color) {
	i := p * BytesPerPixel
	b.Pix[i] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
	b.Pix[i+3] = c.A
}

// Set overwrites the pixel at (x, y) with c.
func (b *Buffer) Set(x, y int, c Color) {
	b.SetIndex(y*b.Width+x, c)
}

// Rows returns a view of rows [y0, y1) sharing the underlying Pix slice.
func (b *Buffer) Rows(y0, y1 int) *Buffer {
	stride := b.Width * BytesPerPixel
	return &Buffer{
		Width:  b.Width,
		Height: y1 - y0,
		Pix:    b.Pix[y0*stride : y1*stride],
	}
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// FromImage copies src into a new non-premultiplied RGBA buffer.
// The result never aliases src, so callers may mutate it freely.
func FromImage(src image.Image) *Buffer {
	r := src.Bounds()
	w, h := r.Dx(), r.Dy()
	buf := NewBuffer(w, h)
	if w <= 0 || h <= 0 {
		return buf
	}

	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			si := s.PixOffset(r.Min.X, r.Min.Y+y)
			copy(buf.Pix[y*w*BytesPerPixel:(y+1)*w*BytesPerPixel], s.Pix[si:si+w*BytesPerPixel])
		}
	case *image.RGBA:
		// Premultiplied; only opaque and fully transparent pixels survive unchanged.
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				si := s.PixOffset(r.Min.X+x, r.Min.Y+y)
				c := color.NRGBAModel.Convert(color.RGBA{s.Pix[si], s.Pix[si+1], s.Pix[si+2], s.Pix[si+3]}).(color.NRGBA)
				buf.Set(x, y, Color{R: c.R, G: c.G, B: c.B, A: c.A})
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(src.At(r.Min.X+x, r.Min.Y+y)).(color.NRGBA)
				buf.Set(x, y, Color{R: c.R, G: c.G, B: c.B, A: c.A})
			}
		}
	}
	return buf
}
