// Package app wires the configured components together and runs them,
// either as the interactive CLI or as a headless scheduling daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/agendasync/internal/browser"
	"github.com/dmitrijs2005/agendasync/internal/cli"
	"github.com/dmitrijs2005/agendasync/internal/config"
	"github.com/dmitrijs2005/agendasync/internal/filesource"
	"github.com/dmitrijs2005/agendasync/internal/filex"
	"github.com/dmitrijs2005/agendasync/internal/importer"
	"github.com/dmitrijs2005/agendasync/internal/logging"
	"github.com/dmitrijs2005/agendasync/internal/notify"
	"github.com/dmitrijs2005/agendasync/internal/reconcile"
	"github.com/dmitrijs2005/agendasync/internal/repositories"
	"github.com/dmitrijs2005/agendasync/internal/scheduler"
	"github.com/dmitrijs2005/agendasync/internal/scraper"
	"github.com/dmitrijs2005/agendasync/internal/session"
	"github.com/dmitrijs2005/agendasync/internal/syncer"
	"github.com/dmitrijs2005/agendasync/internal/vault"
)

// newBrowser is a seam so tests never start Chrome.
var newBrowser = func(ctx context.Context, opts browser.Options, log logging.Logger) browser.Browser {
	return browser.NewChrome(ctx, opts, log)
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	repos     *repositories.Repositories
	vault     *vault.Vault
	browser   browser.Browser
	sessions  *session.Manager
	scheduler *scheduler.Scheduler
	cli       *cli.App
}

// New opens the store, unlocks the vault with passphrase and builds every
// component. in and out are the terminal used by the CLI.
func New(ctx context.Context, c *config.Config, passphrase []byte, logger logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	dataDir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	repos, err := repositories.Open(ctx, c.DatabasePath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	// First use writes salt and verifier together.
	var v *vault.Vault
	err = repos.InTx(ctx, func(tx *repositories.Repositories) error {
		var uerr error
		v, uerr = vault.Unlock(ctx, tx.Metadata, passphrase)
		return uerr
	})
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	v = v.WithRepository(repos.Metadata)

	b := newBrowser(ctx, c.BrowserOptions(), logger.With("component", "browser"))
	sessions := session.NewManager(b, v, repos.Metadata, c.SessionOptions(), logger.With("component", "session"))
	scr := scraper.New(b, sessions, c.ScraperOptions(), logger.With("component", "scraper"))
	engine := reconcile.New(repos.Planner, logger.With("component", "reconcile"))
	pipeline := syncer.New(scr, engine, logger.With("component", "syncer"))
	sched := scheduler.New(repos.Schedule, pipeline, notifierFor(c, logger), logger.With("component", "scheduler"))
	imp := importer.New(filesource.New(c.FileSourceOptions()), engine, logger.With("component", "importer"))

	app := &App{
		config:    c,
		logger:    logger,
		repos:     repos,
		vault:     v,
		browser:   b,
		sessions:  sessions,
		scheduler: sched,
	}
	app.cli = cli.NewApp(cli.Deps{
		Sessions:  sessions,
		Scheduler: sched,
		Importer:  imp,
		Planner:   repos.Planner,
		Log:       logger,
		In:        in,
		Out:       out,
	})
	return app, nil
}

func notifierFor(c *config.Config, logger logging.Logger) notify.Notifier {
	ln := notify.NewLogNotifier(logger.With("component", "notify"))
	if c.SendgridAPIKey == "" {
		return ln
	}
	return notify.Multi{ln, notify.NewSendgridNotifier(c.SendgridAPIKey, c.NotifyFrom, c.NotifyTo)}
}

// Run arms the schedule, then serves the CLI or, in daemon mode, waits for
// ctx to be cancelled. Resources are released before it returns.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting agendasync...", "daemon", app.config.Daemon)

	if err := app.scheduler.Start(ctx); err != nil {
		app.logger.Error(ctx, "scheduler start failed", "error", err)
	}

	if app.config.Daemon {
		<-ctx.Done()
	} else {
		app.cli.Run(ctx)
	}

	app.scheduler.Stop()
	return app.Close()
}

// Close locks the vault and releases the browser and the database.
func (app *App) Close() error {
	app.vault.Lock()
	return errors.Join(app.browser.Close(), app.repos.Close())
}
