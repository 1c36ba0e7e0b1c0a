// Package browsertest provides an in-memory browser.Browser for tests of
// the session manager and scraper.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/agendasync/internal/browser"
)

// Page is one canned response.
type Page struct {
	HTML string
	// Selectors lists the CSS selectors WaitFor treats as visible.
	Selectors []string
	// RequiresLogin redirects to Fake.LoginURL while LoggedIn is false.
	RequiresLogin bool
}

// Fake serves Pages by URL. OnClick lets a test react to a click, for
// example by setting LoggedIn and calling Redirect.
type Fake struct {
	Pages    map[string]*Page
	LoginURL string
	OnClick  func(f *Fake, selector string)
	GotoErr  map[string]error

	mu       sync.Mutex
	loggedIn bool
	url      string
	typed    map[string]string
	clicks   []string
	visits   []string
	closed   bool
}

var _ browser.Browser = (*Fake)(nil)

func New(pages map[string]*Page) *Fake {
	return &Fake{Pages: pages, typed: map[string]string{}, GotoErr: map[string]error{}}
}

func (f *Fake) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visits = append(f.visits, url)
	if err := f.GotoErr[url]; err != nil {
		return err
	}
	if p, ok := f.Pages[url]; ok && p.RequiresLogin && !f.loggedIn && f.LoginURL != "" {
		url = f.LoginURL
	}
	f.url = url
	return nil
}

func (f *Fake) Type(_ context.Context, selector, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.visibleLocked(selector) {
		return fmt.Errorf("type %s: element not found", selector)
	}
	f.typed[selector] = text
	return nil
}

func (f *Fake) Click(_ context.Context, selector string) error {
	f.mu.Lock()
	f.clicks = append(f.clicks, selector)
	hook := f.OnClick
	f.mu.Unlock()

	if hook != nil {
		hook(f, selector)
	}
	return nil
}

// WaitFor never sleeps: it answers from the current page's Selectors.
func (f *Fake) WaitFor(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visibleLocked(selector) {
		return nil
	}
	return fmt.Errorf("wait for %s: %w", selector, context.DeadlineExceeded)
}

func (f *Fake) HTML(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Pages[f.url]; ok {
		return p.HTML, nil
	}
	return "<html><body></body></html>", nil
}

func (f *Fake) CurrentURL(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// SetLoggedIn flips the portal-side login state.
func (f *Fake) SetLoggedIn(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = v
}

// Redirect moves the current page without recording a visit.
func (f *Fake) Redirect(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
}

// Typed returns what was typed into selector.
func (f *Fake) Typed(selector string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.typed[selector]
}

func (f *Fake) Clicks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.clicks...)
}

// Visits lists every URL passed to Goto, in order.
func (f *Fake) Visits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.visits...)
}

func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fake) visibleLocked(selector string) bool {
	p, ok := f.Pages[f.url]
	if !ok {
		return false
	}
	for _, want := range strings.Split(selector, ",") {
		want = strings.TrimSpace(want)
		for _, s := range p.Selectors {
			if s == want {
				return true
			}
		}
	}
	return false
}
