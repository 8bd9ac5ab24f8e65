package export

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"

	"golang.org/x/image/draw"

	"sprite-detector/internal/detect"
)

// gifPalette reserves index 0 for full transparency.
var gifPalette = append(color.Palette{color.Transparent}, palette.WebSafe...)

// WriteGIF writes the frames as an animation. Every frame is centered on a
// canvas the size of the largest frame. delay is in hundredths of a second.
func WriteGIF(w io.Writer, sheet image.Image, frames []detect.Frame, delay int) error {
	maxW, maxH := 1, 1
	for _, fr := range frames {
		maxW = max(maxW, fr.Rect.W)
		maxH = max(maxH, fr.Rect.H)
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, fr := range frames {
		img := Pad(Crop(sheet, fr.Rect), maxW, maxH)
		p := image.NewPaletted(img.Bounds(), gifPalette)
		draw.Draw(p, p.Bounds(), img, image.Point{}, draw.Src)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}
	if len(anim.Image) == 0 {
		anim.Image = append(anim.Image, image.NewPaletted(image.Rect(0, 0, 1, 1), gifPalette))
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, anim)
}
