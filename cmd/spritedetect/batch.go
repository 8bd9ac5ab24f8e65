package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"sprite-detector/internal/batch"
)

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Detect sprites in every sheet under a directory",
		ArgsUsage: "<dir>",
		Flags: append(sharedFlags(),
			&cli.StringFlag{Name: "output", Usage: "Output directory for manifest.json and frames"},
			&cli.BoolFlag{Name: "export", Usage: "Also write frame files per sheet"},
		),
		Action: batchAction,
	}
}

func batchAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("batch: expected exactly one directory", exitInvalid)
	}
	dir := c.Args().First()

	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	paths, err := batch.Scan(dir)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalid)
	}
	if len(paths) == 0 {
		return cli.Exit(fmt.Sprintf("batch: no sheets in %s", dir), exitInvalid)
	}
	if err := os.MkdirAll(rt.cfg.OutputDir, 0755); err != nil {
		return err
	}
	rt.log.Info("batch starting", zap.Int("sheets", len(paths)), zap.String("output", rt.cfg.OutputDir))

	results := batch.Run(c.Context, batch.Config{
		Engine:    rt.engine,
		Workers:   rt.cfg.Workers,
		OutputDir: rt.cfg.OutputDir,
		Export:    c.Bool("export"),
		Format:    rt.cfg.Export(),
		Log:       rt.log,
	}, paths)

	for _, r := range results {
		if !r.Success {
			rt.log.Warn("sheet failed", zap.String("sheet", batch.SheetName(r.Path)), zap.String("error", r.Error))
		}
	}

	manifest := filepath.Join(rt.cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifest, results); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, manifest)

	if failed := batch.Failed(results); failed > 0 {
		return cli.Exit(fmt.Sprintf("batch: %d of %d sheets failed", failed, len(results)), exitPartial)
	}
	return nil
}
