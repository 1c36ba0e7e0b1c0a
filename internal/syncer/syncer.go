// Package syncer runs one automated pass: scrape the portal, normalize what
// came back and reconcile it into the store.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agendasync/internal/logging"
	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/normalize"
	"github.com/dmitrijs2005/agendasync/internal/reconcile"
	"github.com/dmitrijs2005/agendasync/internal/scraper"
)

// Source is the batch source tag for portal runs.
const Source = "portal"

type Fetcher interface {
	FetchAll(ctx context.Context) (scraper.Snapshot, []string, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, b reconcile.Batch) (models.SyncResult, error)
}

// Pipeline is the scheduler's unit of work.
type Pipeline struct {
	fetcher    Fetcher
	reconciler Reconciler
	log        logging.Logger
	now        func() time.Time
}

func New(f Fetcher, r Reconciler, log logging.Logger) *Pipeline {
	return &Pipeline{fetcher: f, reconciler: r, log: log, now: time.Now}
}

// Run always returns a SyncResult describing the run; err is non-nil only
// when the run failed as a whole.
func (p *Pipeline) Run(ctx context.Context) (models.SyncResult, error) {
	snap, pageWarnings, err := p.fetcher.FetchAll(ctx)
	if err != nil {
		err = fmt.Errorf("fetch: %w", err)
		p.log.Error(ctx, "sync aborted", "error", err)
		res := models.Failed(err)
		res.Warnings = pageWarnings
		return res, err
	}

	out := normalize.Records(snap.Records(), p.now())
	for _, w := range out.Warnings {
		p.log.Warn(ctx, "record adjusted", "warning", w)
	}
	out.Warnings = append(pageWarnings, out.Warnings...)

	res, err := p.reconciler.Reconcile(ctx, reconcile.BatchFrom(Source, out))
	if err != nil {
		return res, fmt.Errorf("reconcile: %w", err)
	}
	return res, nil
}
