package background

import "sprite-detector/internal/pixel"

// IsBackground reports whether c belongs to the background bg.
//
// Fully transparent pixels are always background. Against a translucent
// background no visible pixel is background. Otherwise the RGB Manhattan
// distance must not exceed tolerance.
func IsBackground(c, bg pixel.Color, tolerance int) bool {
	if c.A == 0 {
		return true
	}
	if !bg.Opaque() {
		return false
	}
	return c.DistanceRGB(bg) <= tolerance
}
