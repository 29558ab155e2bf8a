package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ayusman/yogkalp/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "yogkalp: %v\n", err)
		os.Exit(1)
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "yogkalp: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "yogkalp",
		Usage:  "score yoga poses from body landmarks against saved reference poses",
		Flags:  config.Flags(config.Default()),
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and live scoring server (default)",
				Action: serve,
			},
			{
				Name:   "poses",
				Usage:  "list the saved reference poses",
				Action: listPoses,
			},
			{
				Name:      "import",
				Usage:     "copy the poses of a JSON pose file into the configured store",
				ArgsUsage: "<file>",
				Action:    importPoses,
			},
		},
	}
}
