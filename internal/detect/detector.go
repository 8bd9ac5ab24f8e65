// Package detect finds sprite bounding boxes in a pixel buffer.
//
// Run is the single implementation used both in-process and by offload
// workers; it estimates the background from the image border, optionally
// removes noise, then labels connected regions.
package detect

import (
	"fmt"
	"time"

	"sprite-detector/internal/background"
	"sprite-detector/internal/noise"
	"sprite-detector/internal/pixel"
)

// Run detects sprites in buf. The buffer is modified when noise reduction
// is enabled. Frames are numbered in scan order starting at 0.
func Run(buf *pixel.Buffer, cfg Config) (res Result, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = Processing("scan aborted", fmt.Errorf("%v", r))
		}
	}()

	if buf == nil {
		return Result{}, invalid("image", nil, "missing pixel buffer")
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	strat, err := Lookup(cfg.Algorithm)
	if err != nil {
		return Result{}, err
	}

	res = Result{
		Frames: []Frame{},
		Stats: Stats{
			Width:     buf.Width,
			Height:    buf.Height,
			Algorithm: strat.Resolved,
			Native:    strat.Native,
		},
	}
	if buf.Empty() {
		return res, nil
	}
	if len(buf.Pix) != buf.Len()*pixel.BytesPerPixel {
		return Result{}, Processing(fmt.Sprintf("pixel buffer has %d bytes, want %d", len(buf.Pix), buf.Len()*pixel.BytesPerPixel), nil)
	}

	bg := background.Estimate(buf, background.GroupTolerance)
	res.Stats.Background = bg

	if cfg.EnableNoiseReduction {
		rep := noise.Reduce(buf, bg, cfg.Tolerance, cfg.NoiseThreshold)
		res.Stats.NoiseRegions = rep.Regions
		res.Stats.NoisePixels = rep.Pixels
	}

	emit := func(r Rect) {
		res.Frames = append(res.Frames, NewFrame(len(res.Frames), r))
	}

	rows := BandRows(cfg, buf.Width, buf.Height)
	for y0 := 0; y0 < buf.Height; y0 += rows {
		y1 := min(buf.Height, y0+rows)
		discarded, err := strat.scan(buf.Rows(y0, y1), bg, cfg, y0, emit)
		if err != nil {
			return Result{}, Processing(fmt.Sprintf("scan rows %d-%d", y0, y1), err)
		}
		res.Stats.Discarded += discarded
		res.Stats.Chunks++
	}

	res.Stats.Regions = len(res.Frames)
	res.Stats.Duration = time.Since(start)
	return res, nil
}

// BandRows returns how many rows each band covers. Without chunking, or
// when the image fits in one chunk, the whole image is a single band.
//
// Bands are scanned independently, so a sprite that crosses a band
// boundary is reported once per band it touches.
func BandRows(cfg Config, w, h int) int {
	if !cfg.EnableChunking || w <= 0 || w*h*pixel.BytesPerPixel <= cfg.ChunkSize {
		return max(h, 1)
	}
	return max(1, cfg.ChunkSize/pixel.BytesPerPixel/w)
}
