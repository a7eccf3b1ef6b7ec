package main

import (
	"context"
	"flag"
	"os"

	clog "github.com/charmbracelet/log"

	"codeaid/internal/app"
	"codeaid/internal/devtools"
	"codeaid/internal/ui"
)

func main() {
	cfg := app.DefaultConfig()
	flag.StringVar(&cfg.CatalogDir, "catalog", cfg.CatalogDir, "path to the snippet catalog directory")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for the local database and exports")
	flag.StringVar(&cfg.LogPath, "log", cfg.LogPath, "write JSON event logs to this file")
	flag.BoolVar(&cfg.ASCIIOnly, "ascii", cfg.ASCIIOnly, "draw panels with ASCII borders")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable UI debug logging")
	flag.StringVar(&cfg.UI.MotionLevel, "motion", cfg.UI.MotionLevel, "overlay animation: off, reduced or full")
	flag.StringVar(&cfg.UI.MouseScope, "mouse", cfg.UI.MouseScope, "mouse handling: off, scoped or full")
	flag.StringVar(&cfg.Run.Interpreter, "python", cfg.Run.Interpreter, "python interpreter used by the run action")
	flag.IntVar(&cfg.Run.TimeoutSeconds, "run-timeout", cfg.Run.TimeoutSeconds, "run action timeout in seconds")
	demo := flag.String("demo", "", "open a canned UI scenario instead of the real catalog")
	flag.Parse()

	logger := clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "codeaid"})

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	if *demo != "" {
		err := devtools.RunDemo(*demo, ui.Options{
			ASCIIOnly:   cfg.ASCIIOnly,
			Debug:       cfg.Debug,
			DarkMode:    true,
			MotionLevel: cfg.UI.MotionLevel,
			MouseScope:  cfg.UI.MouseScope,
		})
		if err != nil {
			logger.Fatal("demo failed", "scenario", *demo, "error", err)
		}
		return
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.Fatal("startup failed", "error", err)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		logger.Fatal("terminal session failed", "error", err)
	}
}
