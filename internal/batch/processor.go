// Package batch runs sprite detection over many sheets.
package batch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"sprite-detector/internal/detect"
	"sprite-detector/internal/engine"
	"sprite-detector/internal/export"
	"sprite-detector/internal/imageio"
)

// Config holds the shared settings for a batch run.
type Config struct {
	Engine    *engine.Engine
	Overrides detect.Overrides
	Workers   int

	// OutputDir receives one frame directory per sheet when Export is set.
	OutputDir string
	Export    bool
	Format    export.Options

	Progress time.Duration
	Log      *zap.Logger
}

// Result holds the outcome of processing one sheet.
type Result struct {
	Path    string
	Width   int
	Height  int
	Frames  []detect.Frame
	Files   []string
	Success bool
	Error   string
}

// Run processes all sheets on a worker pool. Results keep the order of
// paths; a failed sheet is recorded in its Result and never stops the run.
func Run(ctx context.Context, cfg Config, paths []string) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Progress <= 0 {
		cfg.Progress = 2 * time.Second
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Engine == nil {
		cfg.Engine = engine.New(engine.WithLogger(cfg.Log))
	}
	// Cache keys carry only the image size, so sheets of equal size
	// would share an entry.
	cfg.Overrides = cfg.Overrides.Layer(detect.Overrides{EnableCache: detect.Ptr(false)})

	total := len(paths)
	results := make([]Result, total)
	var processed, pixels atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Progress)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					cfg.Log.Info("batch progress",
						zap.Int64("done", p),
						zap.Int("total", total),
						zap.String("rate", humanize.FormatFloat("#.#", rate)+" sheets/s"),
						zap.String("pixels", humanize.SI(float64(pixels.Load()), "px")),
					)
				}
			}
		}
	}()

	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = processSheet(ctx, cfg, paths[idx])
				pixels.Add(int64(results[idx].Width * results[idx].Height))
				processed.Add(1)
			}
		}()
	}

	sent := 0
send:
	for ; sent < total; sent++ {
		select {
		case jobs <- sent:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)
	wg.Wait()
	close(done)

	for i := sent; i < total; i++ {
		results[i] = Result{Path: paths[i], Error: ctx.Err().Error()}
	}

	cfg.Log.Info("batch finished",
		zap.Int("sheets", total),
		zap.Int("failed", Failed(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results
}

// Failed counts unsuccessful results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}

func processSheet(ctx context.Context, cfg Config, path string) Result {
	res := Result{Path: path}

	img, err := imageio.Load(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	b := img.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()

	frames, err := cfg.Engine.Detect(ctx, img, cfg.Overrides)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Frames = frames

	if cfg.Export {
		dir := filepath.Join(cfg.OutputDir, SheetName(path))
		files, err := export.WriteFrames(dir, img, frames, cfg.Format)
		res.Files = files
		if err != nil {
			res.Error = err.Error()
			return res
		}
	}

	res.Success = true
	return res
}

// SheetName trims the directory and extension from a sheet path.
func SheetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
