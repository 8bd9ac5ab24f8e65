package pixel

import "fmt"

// Color is a non-premultiplied RGBA color.
type Color struct {
	R uint8 `json:"r" msgpack:"r"`
	G uint8 `json:"g" msgpack:"g"`
	B uint8 `json:"b" msgpack:"b"`
	A uint8 `json:"a" msgpack:"a"`
}

// Opaque reports whether the alpha channel is 255.
func (c Color) Opaque() bool {
	return c.A == 255
}

// DistanceRGB returns |dr|+|dg|+|db|. Alpha is ignored.
func (c Color) DistanceRGB(o Color) int {
	return absDiff(c.R, o.R) + absDiff(c.G, o.G) + absDiff(c.B, o.B)
}

// String formats the color as #rrggbbaa.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
