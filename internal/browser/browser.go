// Package browser is the page-automation capability the session manager and
// scraper drive. Extraction happens in Go over the page HTML, so the
// surface is limited to navigation, input and reading the DOM.
package browser

import (
	"context"
	"time"
)

// Browser drives one page. Implementations are not safe for concurrent
// navigation; callers fetch pages one at a time.
type Browser interface {
	Goto(ctx context.Context, url string) error
	Type(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	// WaitFor blocks until selector is visible or timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	HTML(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}
