package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/agendasync/internal/app"
	"github.com/dmitrijs2005/agendasync/internal/buildinfo"
	"github.com/dmitrijs2005/agendasync/internal/cli"
	"github.com/dmitrijs2005/agendasync/internal/common"
	"github.com/dmitrijs2005/agendasync/internal/config"
	"github.com/dmitrijs2005/agendasync/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	passphrase, err := readPassphrase(cfg)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	a, err := app.New(ctx, cfg, passphrase, logger, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

// readPassphrase takes the vault passphrase from the configured environment
// variable, or prompts for it unless running as a daemon.
func readPassphrase(cfg *config.Config) ([]byte, error) {
	if v := os.Getenv(cfg.PassphraseEnv); v != "" {
		return []byte(v), nil
	}
	if cfg.Daemon {
		return nil, fmt.Errorf("daemon mode needs the vault passphrase in $%s", cfg.PassphraseEnv)
	}
	return cli.GetPassword("Vault passphrase", os.Stdout)
}
