// Package main provides the spritedetect CLI.
//
// Usage:
//
//	spritedetect detect [options] <image>
//	spritedetect batch [options] <dir>
//	spritedetect worker
//
// Exit codes:
//   - 0: success
//   - 1: unexpected error
//   - 2: invalid input (bad option or image)
//   - 3: batch finished with failed sheets
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	exitInvalid = 2
	exitPartial = 3
)

// version is set via ldflags at build time.
var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           "spritedetect",
		Usage:          "Find sprite frames in sprite sheets",
		Version:        version,
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			detectCommand(),
			batchCommand(),
			workerCommand(),
		},
	}
}

// exitErrHandler prints err and exits with the code carried by a
// cli.ExitCoder, or 1 for anything else.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
