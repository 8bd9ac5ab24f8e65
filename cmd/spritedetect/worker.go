package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"sprite-detector/internal/worker"
)

func workerCommand() *cli.Command {
	return &cli.Command{
		Name:   "worker",
		Usage:  "Serve detection requests on stdin/stdout",
		Hidden: true,
		Action: func(c *cli.Context) error {
			return worker.Serve(c.Context, os.Stdin, os.Stdout)
		},
	}
}
