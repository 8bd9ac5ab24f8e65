// Package engine orchestrates sprite detection: it validates input, merges
// configuration, consults the result cache and picks where detection runs.
package engine

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"

	"sprite-detector/internal/cache"
	"sprite-detector/internal/detect"
	"sprite-detector/internal/floodfill"
	"sprite-detector/internal/pixel"
	"sprite-detector/internal/worker"
)

// Dispatcher runs a request outside the calling goroutine.
// worker.Pool, worker.Client and worker.Process implement it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *worker.Request) (*worker.Response, error)
}

// Key identifies cached results: image size plus the options that change
// detection output.
type Key struct {
	Width         int
	Height        int
	Tolerance     int
	MinSpriteSize int
	Connectivity  floodfill.Connectivity
	Algorithm     detect.Algorithm
}

// KeyFor builds the cache key for a w×h image under cfg.
func KeyFor(w, h int, cfg detect.Config) Key {
	return Key{
		Width:         w,
		Height:        h,
		Tolerance:     cfg.Tolerance,
		MinSpriteSize: cfg.MinSpriteSize,
		Connectivity:  cfg.Connectivity,
		Algorithm:     cfg.Algorithm,
	}
}

// Cache is the result cache type used by Engine.
type Cache = cache.Ordered[Key, []detect.Frame]

// NewCache creates a result cache; non-positive capacity uses the default.
func NewCache(capacity int) *Cache {
	return cache.New[Key, []detect.Frame](capacity)
}

// Engine is safe for concurrent use. Each call works on its own copy of
// the pixels; only the cache is shared.
type Engine struct {
	defaults   detect.Config
	cache      *Cache
	dispatcher Dispatcher
	log        *zap.Logger
	run        func(*pixel.Buffer, detect.Config) (detect.Result, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaults replaces detect.DefaultConfig as the merge base.
func WithDefaults(cfg detect.Config) Option {
	return func(e *Engine) { e.defaults = cfg }
}

// WithCache shares c between engines. Without it each engine gets its own.
func WithCache(c *Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithDispatcher enables offloading when the config asks for a worker.
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) { e.dispatcher = d }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		defaults: detect.DefaultConfig(),
		log:      zap.NewNop(),
		run:      detect.Run,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewCache(cache.DefaultCapacity)
	}
	return e
}

// Cache returns the engine's result cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Detect finds sprites in img. The image is copied before processing and
// never modified. A nil image is invalid input; an image with no pixels
// yields an empty list.
func (e *Engine) Detect(ctx context.Context, img image.Image, o detect.Overrides) ([]detect.Frame, error) {
	if img == nil {
		return nil, detect.InvalidInput("image", nil, "missing image")
	}
	cfg := detect.Merge(e.defaults, o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	buf, err := loadBuffer(img)
	if err != nil {
		return nil, err
	}
	res, err := e.detect(ctx, buf, cfg)
	if err != nil {
		return nil, err
	}
	return res.Frames, nil
}

// DetectBuffer is Detect on a pixel buffer the caller hands over. The
// buffer may be modified by noise reduction. Cached results carry no
// stats beyond the image size.
func (e *Engine) DetectBuffer(ctx context.Context, buf *pixel.Buffer, o detect.Overrides) (detect.Result, error) {
	if buf == nil {
		return detect.Result{}, detect.InvalidInput("image", nil, "missing pixel buffer")
	}
	cfg := detect.Merge(e.defaults, o)
	if err := cfg.Validate(); err != nil {
		return detect.Result{}, err
	}
	return e.detect(ctx, buf, cfg)
}

// detect runs a validated cfg against buf.
func (e *Engine) detect(ctx context.Context, buf *pixel.Buffer, cfg detect.Config) (detect.Result, error) {
	if buf.Empty() {
		return detect.Result{Frames: []detect.Frame{}, Stats: detect.Stats{Width: buf.Width, Height: buf.Height}}, nil
	}
	if err := ctx.Err(); err != nil {
		return detect.Result{}, err
	}

	key := KeyFor(buf.Width, buf.Height, cfg)
	if cfg.EnableCache && !cfg.ForceRecalculation {
		if frames, ok := e.cache.Get(key); ok {
			e.log.Debug("detection cache hit",
				zap.Int("width", buf.Width),
				zap.Int("height", buf.Height),
				zap.Int("frames", len(frames)))
			return detect.Result{
				Frames: append([]detect.Frame(nil), frames...),
				Stats:  detect.Stats{Width: buf.Width, Height: buf.Height, Regions: len(frames)},
			}, nil
		}
	}

	res, err := e.execute(ctx, buf, cfg)
	if err != nil {
		return detect.Result{}, err
	}

	if cfg.EnableCache {
		e.cache.Put(key, append([]detect.Frame(nil), res.Frames...))
	}
	e.log.Debug("detection complete",
		zap.Int("width", buf.Width),
		zap.Int("height", buf.Height),
		zap.String("algorithm", string(cfg.Algorithm)),
		zap.Int("frames", len(res.Frames)),
		zap.Int("discarded", res.Stats.Discarded),
		zap.Duration("duration", res.Stats.Duration))
	return res, nil
}

// execute offloads to the dispatcher when asked to, falling back to an
// inline run if the worker cannot be reached.
func (e *Engine) execute(ctx context.Context, buf *pixel.Buffer, cfg detect.Config) (detect.Result, error) {
	if cfg.UseWorker && e.dispatcher != nil {
		resp, err := e.dispatcher.Dispatch(ctx, worker.NewRequest(buf, cfg))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return detect.Result{}, ctxErr
		}
		if err == nil {
			res, rerr := resp.Result()
			if kind, _ := detect.KindOf(rerr); rerr == nil || kind != detect.KindWorker {
				return res, rerr
			}
			err = rerr
		}
		e.log.Warn("worker unavailable, running inline", zap.Error(err))
	}
	return e.inline(ctx, buf, cfg)
}

// inline runs detection on its own goroutine so a canceled ctx can
// abandon it. The scan itself runs to completion.
func (e *Engine) inline(ctx context.Context, buf *pixel.Buffer, cfg detect.Config) (detect.Result, error) {
	type outcome struct {
		res detect.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.run(buf, cfg)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return detect.Result{}, ctx.Err()
	case out := <-done:
		return out.res, out.err
	}
}

// loadBuffer copies img into a new buffer, reporting unreadable pixel
// sources as processing failures.
func loadBuffer(img image.Image) (buf *pixel.Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = detect.Processing("read pixels", fmt.Errorf("%v", r))
		}
	}()
	return pixel.FromImage(img), nil
}
