package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sprite-detector/internal/pixel"
)

var (
	white = pixel.Color{R: 255, G: 255, B: 255, A: 255}
	black = pixel.Color{A: 255}
)

func sheet(rows ...string) *pixel.Buffer {
	b := pixel.NewBuffer(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			c := white
			if ch == '#' {
				c = black
			}
			b.Set(x, y, c)
		}
	}
	return b
}

func TestReduce_RepaintsSmallRegions(t *testing.T) {
	b := sheet(
		"#.....",
		"...##.",
		"...##.",
		"......",
	)
	rep := Reduce(b, white, 10, 1)

	assert.Equal(t, Report{Regions: 1, Pixels: 1}, rep)
	assert.Equal(t, white, b.At(0, 0))
	assert.Equal(t, black, b.At(3, 1), "region larger than threshold is kept")
}

func TestReduce_ThresholdIsInclusive(t *testing.T) {
	b := sheet(
		"##..",
		"....",
		"..##",
		"..##",
	)
	rep := Reduce(b, white, 0, 2)
	assert.Equal(t, Report{Regions: 1, Pixels: 2}, rep)
	assert.Equal(t, white, b.At(0, 0))
	assert.Equal(t, white, b.At(1, 0))
	assert.Equal(t, black, b.At(2, 2))
}

func TestReduce_AlwaysFourConnected(t *testing.T) {
	// A diagonal pair is two regions of one pixel each under 4-connectivity.
	b := sheet(
		"#...",
		".#..",
		"....",
	)
	rep := Reduce(b, white, 0, 1)
	assert.Equal(t, Report{Regions: 2, Pixels: 2}, rep)
}

func TestReduce_ZeroThresholdKeepsEverything(t *testing.T) {
	b := sheet(
		"#..",
		"...",
	)
	rep := Reduce(b, white, 0, 0)
	assert.Equal(t, Report{}, rep)
	assert.Equal(t, black, b.At(0, 0))
}
