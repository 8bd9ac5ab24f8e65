// Package noise removes small foreground specks before sprite detection.
package noise

import (
	"sprite-detector/internal/background"
	"sprite-detector/internal/floodfill"
	"sprite-detector/internal/pixel"
)

// Report counts what Reduce repainted.
type Report struct {
	Regions int `json:"regions" msgpack:"regions"`
	Pixels  int `json:"pixels" msgpack:"pixels"`
}

// Reduce repaints every 4-connected non-background region of at most
// threshold pixels with bg. The buffer is modified in place.
//
// Connectivity is always four here, independent of the detector setting.
func Reduce(buf *pixel.Buffer, bg pixel.Color, tolerance, threshold int) Report {
	var rep Report
	if buf.Empty() {
		return rep
	}

	f, _ := floodfill.New(buf.Width, buf.Height, floodfill.Four)
	isBG := func(p int) bool {
		return background.IsBackground(buf.AtIndex(p), bg, tolerance)
	}

	region := make([]int, 0, 64)
	collect := func(p int) { region = append(region, p) }

	for p := 0; p < buf.Len(); p++ {
		if f.Visited(p) || isBG(p) {
			continue
		}
		region = region[:0]
		r := f.Fill(p, isBG, collect)
		if r.Count > threshold {
			continue
		}
		for _, q := range region {
			buf.SetIndex(q, bg)
		}
		rep.Regions++
		rep.Pixels += r.Count
	}
	return rep
}
