package main

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/ru/internal/config"
	"github.com/standardbeagle/ru/internal/dispatch"
	"github.com/standardbeagle/ru/internal/engine"
	"github.com/standardbeagle/ru/internal/output"
	"github.com/standardbeagle/ru/internal/pattern"
	"github.com/standardbeagle/ru/internal/types"
	"github.com/standardbeagle/ru/internal/walker"
)

// runSearch wires the pipeline: walker -> dispatcher pool -> aggregated
// results -> renderer. Exit codes: 0 when at least one file matched,
// 1 when none did, 2 on fatal errors.
func runSearch(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowAppHelp(c)
		return cli.Exit("missing pattern argument", 2)
	}
	raw := c.Args().First()
	roots := c.Args().Tail()
	if len(roots) == 0 {
		roots = []string{"."}
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	applyFlags(c, cfg)

	kind, err := pattern.ParseBackend(cfg.Search.Backend)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	matcher, err := pattern.Compile(raw, pattern.Flags{
		IgnoreCase: c.Bool("ignore-case"),
		SmartCase:  cfg.Search.SmartCase,
		Literal:    c.Bool("literal"),
		WordRegexp: c.Bool("word-regexp"),
	}, kind)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	before, after := contextWindow(c, cfg)
	mode := outputMode(c)

	dcfg := dispatch.Config{
		Workers:      cfg.Search.Workers,
		MaxFileSize:  cfg.Search.MaxFileSize,
		SearchBinary: c.Bool("search-binary"),
		Scan: engine.Options{
			Invert:         c.Bool("invert-match"),
			Before:         before,
			After:          after,
			MaxCount:       c.Int("max-count"),
			FirstMatchOnly: mode == output.ModeFilesWithMatches || mode == output.ModeFilesWithoutMatch,
		},
	}

	w := walker.New(walker.Config{
		Hidden:       cfg.Walk.Hidden,
		Follow:       cfg.Walk.Follow,
		NoIgnore:     cfg.Walk.NoIgnore,
		SearchBinary: c.Bool("search-binary"),
		MaxDepth:     cfg.Walk.MaxDepth,
		Include:      cfg.Walk.Include,
		Exclude:      cfg.Walk.Exclude,
	})

	entries := make(chan types.FileEntry, dispatch.QueueSize(dcfg))
	results := make(chan types.FileResult, dispatch.QueueSize(dcfg))

	walkDone := make(chan error, 1)
	go func() {
		walkDone <- w.Walk(c.Context, roots, entries)
	}()

	d := dispatch.New(matcher, dcfg)
	dispatchDone := make(chan error, 1)
	go func() {
		dispatchDone <- d.Run(c.Context, entries, results)
	}()

	renderer := output.New(os.Stdout, output.Options{
		Mode:  mode,
		Color: colorEnabled(cfg.Output.Color),
	})

	matched := false
	for res := range results {
		if res.Matched() {
			matched = true
		}
		renderer.File(res)
	}

	if err := <-walkDone; err != nil {
		var werr *walker.WalkError
		if errors.As(err, &werr) {
			return cli.Exit(werr.Error(), 2)
		}
		return cli.Exit(err.Error(), 2)
	}
	if err := <-dispatchDone; err != nil {
		return cli.Exit(err.Error(), 2)
	}

	if !matched {
		return cli.Exit("", 1)
	}
	return nil
}

// applyFlags overlays command-line flags on the loaded settings. Flags
// the user did not pass keep the file's (or built-in) values.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("backend") {
		cfg.Search.Backend = c.String("backend")
	}
	if c.IsSet("workers") {
		cfg.Search.Workers = c.Int("workers")
	}
	if c.IsSet("max-filesize") {
		cfg.Search.MaxFileSize = c.Int64("max-filesize")
	}
	if c.IsSet("smart-case") {
		cfg.Search.SmartCase = c.Bool("smart-case")
	}
	if c.IsSet("hidden") {
		cfg.Walk.Hidden = c.Bool("hidden")
	}
	if c.IsSet("follow") {
		cfg.Walk.Follow = c.Bool("follow")
	}
	if c.IsSet("no-ignore") {
		cfg.Walk.NoIgnore = c.Bool("no-ignore")
	}
	if c.IsSet("depth") {
		cfg.Walk.MaxDepth = c.Int("depth")
	}
	if globs := c.StringSlice("include"); len(globs) > 0 {
		cfg.Walk.Include = append(cfg.Walk.Include, globs...)
	}
	if globs := c.StringSlice("exclude"); len(globs) > 0 {
		cfg.Walk.Exclude = append(cfg.Walk.Exclude, globs...)
	}
	if c.IsSet("color") {
		cfg.Output.Color = c.String("color")
	}
}

// contextWindow resolves -C/-A/-B, with the specific flags overriding
// the symmetric one.
func contextWindow(c *cli.Context, cfg *config.Config) (before, after int) {
	before, after = cfg.Output.Context, cfg.Output.Context
	if c.IsSet("context") {
		before, after = c.Int("context"), c.Int("context")
	}
	if c.IsSet("before-context") {
		before = c.Int("before-context")
	}
	if c.IsSet("after-context") {
		after = c.Int("after-context")
	}
	return before, after
}

func outputMode(c *cli.Context) output.Mode {
	switch {
	case c.Bool("files-with-matches"):
		return output.ModeFilesWithMatches
	case c.Bool("files-without-matches"):
		return output.ModeFilesWithoutMatch
	case c.Bool("count"):
		return output.ModeCount
	}
	return output.ModeInline
}

func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
