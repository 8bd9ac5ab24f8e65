// Package background infers a sprite sheet's background color and
// classifies pixels against it.
package background

import "sprite-detector/internal/pixel"

// GroupTolerance is the RGB distance within which border samples are
// counted as the same color.
const GroupTolerance = 5

// samplesPerEdge bounds how many pixels are read along each border.
const samplesPerEdge = 50

type bucket struct {
	color pixel.Color
	count int
}

// Estimate returns the dominant color along the image border.
//
// The top and bottom rows and the left and right columns are sampled at a
// stride of max(1, dimension/50). Samples within groupTolerance of an
// existing bucket (RGB distance, plus the same bound on alpha) join it;
// the first bucket to reach the highest count wins.
func Estimate(buf *pixel.Buffer, groupTolerance int) pixel.Color {
	if buf.Empty() {
		return pixel.Color{}
	}
	w, h := buf.Width, buf.Height

	var buckets []bucket
	add := func(c pixel.Color) {
		for i := range buckets {
			if sameGroup(buckets[i].color, c, groupTolerance) {
				buckets[i].count++
				return
			}
		}
		buckets = append(buckets, bucket{color: c, count: 1})
	}

	xStep := max(1, w/samplesPerEdge)
	for x := 0; x < w; x += xStep {
		add(buf.At(x, 0))
		add(buf.At(x, h-1))
	}
	yStep := max(1, h/samplesPerEdge)
	for y := 0; y < h; y += yStep {
		add(buf.At(0, y))
		add(buf.At(w-1, y))
	}

	best := buckets[0]
	for _, b := range buckets[1:] {
		if b.count > best.count {
			best = b
		}
	}
	return best.color
}

func sameGroup(a, b pixel.Color, tolerance int) bool {
	if a.DistanceRGB(b) > tolerance {
		return false
	}
	da := int(a.A) - int(b.A)
	if da < 0 {
		da = -da
	}
	return da <= tolerance
}
