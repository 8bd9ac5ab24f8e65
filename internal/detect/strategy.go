package detect

import (
	"sort"

	"sprite-detector/internal/background"
	"sprite-detector/internal/floodfill"
	"sprite-detector/internal/pixel"
)

// scanFunc finds regions in buf and emits their boxes, shifted down by
// yOffset. It returns how many regions were discarded as too small.
type scanFunc func(buf *pixel.Buffer, bg pixel.Color, cfg Config, yOffset int, emit func(Rect)) (int, error)

// Strategy is one entry of the algorithm dispatch table.
type Strategy struct {
	// Requested is the algorithm name callers asked for.
	Requested Algorithm
	// Resolved is the algorithm that actually runs.
	Resolved Algorithm
	// Native is false when Requested is a placeholder aliased to Resolved.
	Native bool
	scan   scanFunc
}

// contour and ai are declared extension points; both run flood fill.
var strategies = map[Algorithm]Strategy{
	FloodFill: {Requested: FloodFill, Resolved: FloodFill, Native: true, scan: scanFloodFill},
	Contour:   {Requested: Contour, Resolved: FloodFill, Native: false, scan: scanFloodFill},
	AI:        {Requested: AI, Resolved: FloodFill, Native: false, scan: scanFloodFill},
}

// Lookup returns the strategy registered for alg.
func Lookup(alg Algorithm) (Strategy, error) {
	s, ok := strategies[alg]
	if !ok {
		return Strategy{}, invalid("algorithm", alg, "unknown algorithm")
	}
	return s, nil
}

// Algorithms lists every accepted algorithm name in sorted order.
func Algorithms() []Algorithm {
	names := make([]Algorithm, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// scanFloodFill labels connected non-background regions in row-major order.
func scanFloodFill(buf *pixel.Buffer, bg pixel.Color, cfg Config, yOffset int, emit func(Rect)) (int, error) {
	f, err := floodfill.New(buf.Width, buf.Height, cfg.Connectivity)
	if err != nil {
		return 0, err
	}
	isBG := func(p int) bool {
		return background.IsBackground(buf.AtIndex(p), bg, cfg.Tolerance)
	}

	discarded := 0
	for p := 0; p < buf.Len(); p++ {
		if f.Visited(p) || isBG(p) {
			continue
		}
		r := f.Fill(p, isBG, nil)
		if r.Count < cfg.MinSpriteSize {
			discarded++
			continue
		}
		emit(Rect{X: r.MinX, Y: r.MinY + yOffset, W: r.Width(), H: r.Height()})
	}
	return discarded, nil
}
