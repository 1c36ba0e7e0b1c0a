package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/agendasync/internal/flagx"
)

// parseFlags overrides cfg from the flags it knows about; anything else in
// args is filtered out first with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args,
		[]string{"-d", "-u", "-l"},
		"-headless", "-daemon")

	fs := flag.NewFlagSet("agendasync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.PortalBaseURL, "u", cfg.PortalBaseURL, "portal base URL")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run the browser headless")
	fs.BoolVar(&cfg.Daemon, "daemon", cfg.Daemon, "run scheduled syncs only")

	return fs.Parse(filtered)
}
