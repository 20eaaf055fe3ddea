package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/ru/internal/version"
)

func main() {
	// -v belongs to --invert-match; keep the version flag on -V.
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "Print the version",
	}

	app := &cli.App{
		Name:                   "ru",
		Usage:                  "Recursively search file contents for a pattern",
		ArgsUsage:              "<pattern> [path ...]",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "ignore-case",
				Aliases: []string{"i"},
				Usage:   "Match case-insensitively",
			},
			&cli.BoolFlag{
				Name:    "smart-case",
				Aliases: []string{"S"},
				Usage:   "Match case-insensitively unless the pattern has uppercase",
			},
			&cli.BoolFlag{
				Name:    "literal",
				Aliases: []string{"Q"},
				Usage:   "Treat the pattern as a fixed string",
			},
			&cli.BoolFlag{
				Name:    "word-regexp",
				Aliases: []string{"w"},
				Usage:   "Match whole words only",
			},
			&cli.BoolFlag{
				Name:    "invert-match",
				Aliases: []string{"v"},
				Usage:   "Report lines that do not match",
			},
			&cli.IntFlag{
				Name:    "context",
				Aliases: []string{"C"},
				Usage:   "Print `N` lines of context around each match",
			},
			&cli.IntFlag{
				Name:    "after-context",
				Aliases: []string{"A"},
				Usage:   "Print `N` lines after each match",
			},
			&cli.IntFlag{
				Name:    "before-context",
				Aliases: []string{"B"},
				Usage:   "Print `N` lines before each match",
			},
			&cli.BoolFlag{
				Name:    "files-with-matches",
				Aliases: []string{"l"},
				Usage:   "Print only the names of matching files",
			},
			&cli.BoolFlag{
				Name:    "files-without-matches",
				Aliases: []string{"L"},
				Usage:   "Print only the names of files without matches",
			},
			&cli.BoolFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Print the number of matching lines per file",
			},
			&cli.IntFlag{
				Name:    "max-count",
				Aliases: []string{"m"},
				Usage:   "Stop after `N` matching lines per file",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Highlight matches: auto, always or never",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Regex engine: std, grafana or dfa",
			},
			&cli.Int64Flag{
				Name:  "max-filesize",
				Usage: "Skip files larger than `BYTES`",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of scan workers (0 = number of CPUs)",
			},
			&cli.BoolFlag{
				Name:  "no-ignore",
				Usage: "Do not honor .gitignore and .ignore files",
			},
			&cli.BoolFlag{
				Name:  "hidden",
				Usage: "Search hidden files and directories",
			},
			&cli.BoolFlag{
				Name:    "follow",
				Aliases: []string{"f"},
				Usage:   "Follow symlinked directories",
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Descend at most `N` directory levels",
			},
			&cli.BoolFlag{
				Name:  "search-binary",
				Usage: "Search binary files instead of skipping them",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Search only files matching the glob (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching the glob (repeatable)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Settings file path (default: .ru.toml lookup)",
			},
		},
		Action: runSearch,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ExitCoder errors (cli.Exit) are handled inside RunContext; anything
	// else reaching here is a usage or setup failure.
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ru: %s\n", err)
		os.Exit(2)
	}
}
