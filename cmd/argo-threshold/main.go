package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rxtech-lab/argo-threshold/internal/store"
	"github.com/rxtech-lab/argo-threshold/internal/version"
	"github.com/rxtech-lab/argo-threshold/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "argo-threshold",
		Usage:   "Backtest indicator threshold strategies on daily bars",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML application config",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			historyCommand(),
			serveCommand(),
			downloadCommand(),
			schemaCommand(),
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run one backtest and print the result as YAML",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "indicator",
				Aliases: []string{"i"},
				Usage:   "Indicator driving the signals",
				Value:   "RSI",
			},
			&cli.StringFlag{
				Name:    "normalization",
				Aliases: []string{"n"},
				Usage:   "Normalization method (None, Z-score, Min-Max, Mean Scaling, Rank Scaling)",
				Value:   "None",
			},
			&cli.StringFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now().Format(time.DateOnly),
			},
			&cli.FloatFlag{
				Name:  "buy-threshold",
				Usage: "Override the configured buy threshold",
			},
			&cli.FloatFlag{
				Name:  "sell-threshold",
				Usage: "Override the configured sell threshold",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Store the result in the result store",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the result YAML to this file instead of stdout",
			},
		},
		Action: runAction,
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past runs, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Number of runs to list",
				Value:   store.DefaultListLimit,
			},
		},
		Action: historyAction,
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Override the configured listen address",
			},
			&cli.StringSliceFlag{
				Name:  "cors-origin",
				Usage: "Allowed CORS origin. Repeat for several. Defaults to any origin.",
			},
		},
		Action: serveAction,
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download daily bars into a parquet file readable by the file provider",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to download from (%s, %s)", provider.ProviderPolygon, provider.ProviderBinance),
				Value:   string(provider.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Output directory",
				Value:   "data",
			},
		},
		Action: downloadAction,
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:   "schema",
		Usage:  "Print the JSON schema of the engine configuration",
		Action: schemaAction,
	}
}
