package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"sprite-detector/internal/config"
	"sprite-detector/internal/detect"
	"sprite-detector/internal/engine"
	"sprite-detector/internal/floodfill"
	"sprite-detector/internal/logging"
	"sprite-detector/internal/worker"
)

// sharedFlags are accepted by detect and batch.
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Config file (.yaml, .toml or .json)"},
		&cli.IntFlag{Name: "tolerance", Aliases: []string{"t"}, Usage: "Background color tolerance, 0-255"},
		&cli.IntFlag{Name: "min-size", Usage: "Smallest sprite in pixels"},
		&cli.StringFlag{Name: "connectivity", Usage: "Pixel adjacency: four or eight"},
		&cli.BoolFlag{Name: "noise", Usage: "Remove small specks before detection"},
		&cli.IntFlag{Name: "noise-threshold", Usage: "Largest speck removed by --noise"},
		&cli.StringFlag{Name: "algorithm", Usage: fmt.Sprintf("Detection algorithm, one of %v", detect.Algorithms())},
		&cli.StringFlag{Name: "chunk-size", Usage: "Band size for chunked scans, e.g. 4MiB"},
		&cli.BoolFlag{Name: "chunking", Usage: "Scan large sheets in row bands"},
		&cli.BoolFlag{Name: "no-cache", Usage: "Disable the result cache"},
		&cli.BoolFlag{Name: "force", Usage: "Ignore cached results"},
		&cli.IntFlag{Name: "cache-size", Usage: "Result cache capacity"},
		&cli.StringFlag{Name: "worker", Usage: "Where detection runs: inline, pool, process"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "Worker count"},
		&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error"},
		&cli.StringFlag{Name: "format", Usage: "Frame file format: webp or png"},
		&cli.IntFlag{Name: "scale", Usage: "Integer upscale for exported frames"},
	}
}

// overrides collects the detection flags that were set explicitly.
func overrides(c *cli.Context) detect.Overrides {
	var o detect.Overrides
	if c.IsSet("tolerance") {
		o.Tolerance = detect.Ptr(c.Int("tolerance"))
	}
	if c.IsSet("min-size") {
		o.MinSpriteSize = detect.Ptr(c.Int("min-size"))
	}
	if c.IsSet("connectivity") {
		o.Connectivity = detect.Ptr(floodfill.Connectivity(c.String("connectivity")))
	}
	if c.IsSet("noise") {
		o.EnableNoiseReduction = detect.Ptr(c.Bool("noise"))
	}
	if c.IsSet("noise-threshold") {
		o.NoiseThreshold = detect.Ptr(c.Int("noise-threshold"))
	}
	if c.IsSet("algorithm") {
		o.Algorithm = detect.Ptr(detect.Algorithm(c.String("algorithm")))
	}
	if c.IsSet("chunking") {
		o.EnableChunking = detect.Ptr(c.Bool("chunking"))
	}
	if c.Bool("no-cache") {
		o.EnableCache = detect.Ptr(false)
	}
	if c.Bool("force") {
		o.ForceRecalculation = detect.Ptr(true)
	}
	return o
}

// settings loads --config, if any, and applies the command-line flags.
func settings(c *cli.Context) (config.Config, error) {
	var cfg config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, cli.Exit(err.Error(), exitInvalid)
		}
		cfg = loaded
	}

	err := cfg.Resolve(config.Flags{
		Detection:    overrides(c),
		ChunkSize:    c.String("chunk-size"),
		Worker:       c.String("worker"),
		Workers:      c.Int("workers"),
		CacheSize:    c.Int("cache-size"),
		OutputDir:    c.String("output"),
		ExportFormat: c.String("format"),
		Scale:        c.Int("scale"),
		LogLevel:     c.String("log-level"),
	})
	if err != nil {
		return config.Config{}, cli.Exit(err.Error(), exitInvalid)
	}
	return cfg, nil
}

// session bundles what a command needs to detect sprites.
type session struct {
	cfg    config.Config
	log    *zap.Logger
	engine *engine.Engine
	close  func() error
}

func (r *session) Close() error {
	_ = r.log.Sync()
	if r.close != nil {
		return r.close()
	}
	return nil
}

// setup resolves settings and builds the logger and engine for c.
func setup(c *cli.Context) (*session, error) {
	cfg, err := settings(c)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitInvalid)
	}
	defaults, err := cfg.DetectConfig()
	if err != nil {
		return nil, cli.Exit(err.Error(), exitInvalid)
	}

	opts := []engine.Option{
		engine.WithDefaults(defaults),
		engine.WithCache(engine.NewCache(cfg.CacheSize)),
		engine.WithLogger(log),
	}
	rt := &session{cfg: cfg, log: log}

	switch cfg.Worker {
	case config.WorkerPool:
		pool := worker.NewPool(cfg.Workers)
		opts = append(opts, engine.WithDispatcher(pool))
		rt.close = pool.Close
	case config.WorkerProcess:
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		proc := worker.NewProcess(exe, "worker")
		opts = append(opts, engine.WithDispatcher(proc))
		rt.close = proc.Close
	}

	rt.engine = engine.New(opts...)
	log.Debug("engine ready",
		zap.String("worker", string(cfg.Worker)),
		zap.Int("workers", cfg.Workers),
		zap.Int("cache_size", rt.engine.Cache().Capacity()),
		zap.String("algorithm", string(defaults.Algorithm)),
	)
	return rt, nil
}

// exitFor maps detection errors to exit codes.
func exitFor(err error) error {
	if detect.IsInvalidInput(err) {
		return cli.Exit(err.Error(), exitInvalid)
	}
	return err
}
