package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"sprite-detector/internal/detect"
	"sprite-detector/internal/export"
	"sprite-detector/internal/imageio"
)

func detectCommand() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Detect sprites in one sheet and print their frames",
		ArgsUsage: "<image>",
		Flags: append(sharedFlags(),
			&cli.StringFlag{Name: "output-format", Aliases: []string{"o"}, Value: "json", Usage: "Printed output: json or css"},
			&cli.StringFlag{Name: "class", Value: "sprite", Usage: "Base CSS class for --output-format css"},
			&cli.StringFlag{Name: "export", Usage: "Write one file per frame into this directory"},
			&cli.StringFlag{Name: "zip", Usage: "Write frames as a ZIP archive"},
			&cli.StringFlag{Name: "gif", Usage: "Write frames as an animated GIF"},
			&cli.IntFlag{Name: "delay", Value: 10, Usage: "GIF frame delay in 1/100 s"},
		),
		Action: detectAction,
	}
}

func detectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("detect: expected exactly one image", exitInvalid)
	}
	path := c.Args().First()

	out := c.String("output-format")
	if out != "json" && out != "css" {
		return cli.Exit(fmt.Sprintf("detect: unknown output format %q", out), exitInvalid)
	}

	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	img, err := imageio.Load(path)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalid)
	}

	frames, err := rt.engine.Detect(c.Context, img, detect.Overrides{})
	if err != nil {
		return exitFor(err)
	}
	b := img.Bounds()
	rt.log.Info("sheet detected",
		zap.String("sheet", path),
		zap.String("size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy())),
		zap.String("pixels", humanize.Comma(int64(b.Dx()*b.Dy()))),
		zap.Int("frames", len(frames)),
	)

	if dir := c.String("export"); dir != "" {
		files, err := export.WriteFrames(dir, img, frames, rt.cfg.Export())
		if err != nil {
			return err
		}
		rt.log.Info("frames exported", zap.String("dir", dir), zap.Int("files", len(files)))
	}
	if zipPath := c.String("zip"); zipPath != "" {
		if err := writeFile(zipPath, func(f *os.File) error {
			return export.WriteZip(f, img, frames, rt.cfg.Scale)
		}); err != nil {
			return err
		}
	}
	if gifPath := c.String("gif"); gifPath != "" {
		if err := writeFile(gifPath, func(f *os.File) error {
			return export.WriteGIF(f, img, frames, c.Int("delay"))
		}); err != nil {
			return err
		}
	}

	w := c.App.Writer
	if out == "css" {
		_, err := fmt.Fprint(w, export.CSS(frames, c.String("class"), filepath.ToSlash(filepath.Base(path))))
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(frames)
}

// writeFile creates path and hands it to write, removing it on failure.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
