// Package export writes detected frames out of a sprite sheet.
package export

import (
	"image"

	"golang.org/x/image/draw"

	"sprite-detector/internal/detect"
)

// Bounds converts a frame rect to an image rectangle.
func Bounds(r detect.Rect) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Crop copies the frame region of sheet into a new zero-origin image.
// Parts of r outside the sheet stay transparent.
func Crop(sheet image.Image, r detect.Rect) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	src := Bounds(r).Add(sheet.Bounds().Min)
	draw.Copy(dst, image.Pt(0, 0), sheet, src, draw.Src, nil)
	return dst
}

// Scale enlarges img by an integer factor with nearest-neighbour sampling
// so pixel art keeps hard edges.
func Scale(img *image.NRGBA, factor int) *image.NRGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Pad centers img on a transparent w×h canvas.
func Pad(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	off := image.Pt((w-b.Dx())/2, (h-b.Dy())/2)
	draw.Copy(dst, off, img, b, draw.Src, nil)
	return dst
}
