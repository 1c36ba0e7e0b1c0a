// Package scraper navigates the authenticated portal and turns agenda,
// grade and lesson pages into raw records through ordered extraction
// strategies.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/agendasync/internal/browser"
	"github.com/dmitrijs2005/agendasync/internal/common"
	"github.com/dmitrijs2005/agendasync/internal/logging"
	"github.com/dmitrijs2005/agendasync/internal/models"
)

// Page names a portal section.
type Page string

const (
	PageAgenda  Page = "agenda"
	PageGrades  Page = "grades"
	PageLessons Page = "lessons"
)

// Pages is the fetch order used by FetchAll.
var Pages = []Page{PageAgenda, PageGrades, PageLessons}

// Sessions is the part of the session manager the scraper needs.
type Sessions interface {
	EnsureSession(ctx context.Context) error
	Relogin(ctx context.Context) error
	IsLoginURL(url string) bool
}

type Options struct {
	BaseURL     string
	AgendaPath  string
	GradesPath  string
	LessonsPath string
	// ReadySelector is waited for after navigation; a page that never
	// shows it is still extracted.
	ReadySelector string
	PageTimeout   time.Duration
}

func (o Options) path(p Page) string {
	switch p {
	case PageAgenda:
		return o.AgendaPath
	case PageGrades:
		return o.GradesPath
	case PageLessons:
		return o.LessonsPath
	default:
		return ""
	}
}

func (o Options) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(o.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Snapshot holds the raw records of one crawl.
type Snapshot struct {
	Agenda  []models.RawRecord
	Grades  []models.RawRecord
	Lessons []models.RawRecord
}

// Records concatenates all pages.
func (s Snapshot) Records() []models.RawRecord {
	out := make([]models.RawRecord, 0, len(s.Agenda)+len(s.Grades)+len(s.Lessons))
	out = append(out, s.Agenda...)
	out = append(out, s.Grades...)
	return append(out, s.Lessons...)
}

type Scraper struct {
	browser  browser.Browser
	sessions Sessions
	opts     Options
	log      logging.Logger
	now      func() time.Time
}

func New(b browser.Browser, sessions Sessions, opts Options, log logging.Logger) *Scraper {
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 20 * time.Second
	}
	return &Scraper{browser: b, sessions: sessions, opts: opts, log: log, now: time.Now}
}

func strategiesFor(p Page) []Strategy {
	switch p {
	case PageAgenda:
		return AgendaStrategies()
	case PageGrades:
		return GradeStrategies()
	case PageLessons:
		return LessonStrategies()
	default:
		return nil
	}
}

// Fetch extracts the records of one page. Session errors are returned
// as is; navigation problems wrap common.ErrNavigation.
func (s *Scraper) Fetch(ctx context.Context, page Page) ([]models.RawRecord, error) {
	path := s.opts.path(page)
	if path == "" {
		return nil, fmt.Errorf("%w: no path configured for %s", common.ErrNavigation, page)
	}
	if err := s.sessions.EnsureSession(ctx); err != nil {
		return nil, err
	}

	html, err := s.load(ctx, s.opts.url(path))
	if err != nil {
		return nil, err
	}

	records, strategy := Cascade(html, strategiesFor(page), s.now())
	for i := range records {
		if records[i].Extra == nil {
			records[i].Extra = map[string]string{}
		}
		records[i].Extra[models.ExtraSource] = "portal:" + string(page)
	}

	if strategy == "" {
		s.log.Info(ctx, "page has no records", "page", page)
	} else {
		s.log.Debug(ctx, "page extracted", "page", page, "strategy", strategy, "records", len(records))
	}
	return records, nil
}

func (s *Scraper) load(ctx context.Context, url string) (string, error) {
	pageCtx, cancel := context.WithTimeout(ctx, s.opts.PageTimeout)
	defer cancel()

	current, err := s.navigate(pageCtx, url)
	if err != nil {
		return "", err
	}
	if s.sessions.IsLoginURL(current) {
		s.log.Info(ctx, "portal asked to log in again", "url", url)
		// Relogin has its own deadline; the retry gets a fresh page budget.
		cancel()
		if err := s.sessions.Relogin(ctx); err != nil {
			return "", err
		}
		pageCtx, cancel = context.WithTimeout(ctx, s.opts.PageTimeout)
		defer cancel()

		if current, err = s.navigate(pageCtx, url); err != nil {
			return "", err
		}
		if s.sessions.IsLoginURL(current) {
			return "", fmt.Errorf("%w: %s still redirects to login", common.ErrAuthenticationFailed, url)
		}
	}

	if s.opts.ReadySelector != "" {
		if err := s.browser.WaitFor(pageCtx, s.opts.ReadySelector, s.opts.PageTimeout); err != nil {
			s.log.Debug(ctx, "page-ready selector not found", "url", url, "error", err)
		}
	}

	html, err := s.browser.HTML(pageCtx)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrNavigation, url, err)
	}
	return html, nil
}

// navigate opens url and reports where the browser ended up.
func (s *Scraper) navigate(ctx context.Context, url string) (string, error) {
	if err := s.browser.Goto(ctx, url); err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrNavigation, url, err)
	}
	current, err := s.browser.CurrentURL(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrNavigation, url, err)
	}
	return current, nil
}

// FetchAll crawls every configured page in order over the one browser.
// A missing session is fatal; any other per-page failure leaves that page
// empty and adds a warning.
func (s *Scraper) FetchAll(ctx context.Context) (Snapshot, []string, error) {
	var (
		snap     Snapshot
		warnings []string
	)

	if err := s.sessions.EnsureSession(ctx); err != nil {
		return snap, nil, err
	}

	for _, page := range Pages {
		if s.opts.path(page) == "" {
			continue
		}
		records, err := s.Fetch(ctx, page)
		if err != nil {
			if isSessionError(err) {
				return snap, warnings, err
			}
			s.log.Warn(ctx, "page skipped", "page", page, "error", err)
			warnings = append(warnings, fmt.Sprintf("%s: %v", page, err))
			continue
		}

		switch page {
		case PageAgenda:
			snap.Agenda = records
		case PageGrades:
			snap.Grades = records
		case PageLessons:
			snap.Lessons = records
		}
	}
	return snap, warnings, nil
}

func isSessionError(err error) bool {
	return errors.Is(err, common.ErrNotAuthenticated) || errors.Is(err, common.ErrAuthenticationFailed)
}
