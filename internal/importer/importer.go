// Package importer is the manual import surface: parse pasted text or a
// file into a preview, then reconcile it once the user confirms.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agendasync/internal/common"
	"github.com/dmitrijs2005/agendasync/internal/filesource"
	"github.com/dmitrijs2005/agendasync/internal/logging"
	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/parser"
	"github.com/dmitrijs2005/agendasync/internal/reconcile"
)

// ErrNothingToImport is returned when a preview holds no usable record.
var ErrNothingToImport = fmt.Errorf("%w: nothing to import", common.ErrParse)

type FileReader interface {
	Read(ctx context.Context, uri string) ([]byte, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, b reconcile.Batch) (models.SyncResult, error)
}

type Importer struct {
	files      FileReader
	reconciler Reconciler
	log        logging.Logger
	now        func() time.Time
}

func New(files FileReader, r Reconciler, log logging.Logger) *Importer {
	return &Importer{files: files, reconciler: r, log: log, now: time.Now}
}

// Preview parses text without touching the store.
func (im *Importer) Preview(text string, hint parser.Format) parser.Outcome {
	return parser.Parse(text, hint, im.now())
}

// PreviewFile reads uri and parses it, taking the format from the extension.
func (im *Importer) PreviewFile(ctx context.Context, uri string) (parser.Outcome, error) {
	data, err := im.files.Read(ctx, uri)
	if err != nil {
		return parser.Outcome{}, err
	}
	hint := parser.FormatForFile(filesource.Name(uri))
	im.log.Debug(ctx, "import file read", "uri", uri, "bytes", len(data), "format", hint)
	return im.Preview(string(data), hint), nil
}

// Confirm reconciles a previewed outcome into the store.
func (im *Importer) Confirm(ctx context.Context, out parser.Outcome) (models.SyncResult, error) {
	if out.Empty() {
		res := models.Failed(ErrNothingToImport)
		res.Warnings = out.Warnings
		return res, ErrNothingToImport
	}

	source := "import:" + string(out.Format)
	res, err := im.reconciler.Reconcile(ctx, reconcile.BatchFrom(source, out.Outcome))
	if err != nil {
		return res, fmt.Errorf("import: %w", err)
	}
	return res, nil
}
