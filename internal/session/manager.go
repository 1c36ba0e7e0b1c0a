// Package session owns the portal login: it drives the browser through the
// login form, keeps the resulting session in memory and persists it as a
// signed token so a restart does not force a fresh login.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/agendasync/internal/browser"
	"github.com/dmitrijs2005/agendasync/internal/common"
	"github.com/dmitrijs2005/agendasync/internal/logging"
	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/repositories/metadata"
)

const signingKeyLabel = "session"

// CredentialStore is the sealed credential vault.
type CredentialStore interface {
	Store(ctx context.Context, creds models.Credentials) error
	// Load returns common.ErrNotFound when nothing is stored.
	Load(ctx context.Context) (*models.Credentials, error)
	Clear(ctx context.Context) error
	SubKey(label string) ([]byte, error)
}

// Options describe the portal's login form and routes.
type Options struct {
	BaseURL    string
	LoginPath  string
	LogoutPath string

	UsernameSelector   string
	PasswordSelector   string
	SchoolCodeSelector string
	SubmitSelector     string

	// Login succeeds when PostLoginMarker becomes visible or the current
	// URL contains one of PostLoginRoutes.
	PostLoginMarker string
	PostLoginRoutes []string

	LoginTimeout  time.Duration
	LogoutTimeout time.Duration
	PollInterval  time.Duration
	TTL           time.Duration
}

// URL joins a portal path onto BaseURL.
func (o Options) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(o.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Manager is safe for concurrent use; logins are serialized.
type Manager struct {
	browser browser.Browser
	vault   CredentialStore
	meta    metadata.Repository
	opts    Options
	log     logging.Logger

	now   func() time.Time
	newID func() string

	loginMu sync.Mutex

	mu      sync.Mutex
	state   State
	current *models.Session
}

func NewManager(b browser.Browser, vault CredentialStore, meta metadata.Repository, opts Options, log logging.Logger) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = 30 * time.Second
	}
	if opts.LogoutTimeout <= 0 {
		opts.LogoutTimeout = 10 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	return &Manager{
		browser: b,
		vault:   vault,
		meta:    meta,
		opts:    opts,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
		state:   Unauthenticated,
	}
}

// Options returns the portal options the manager was built with.
func (m *Manager) Options() Options {
	return m.opts
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the current session, or nil.
func (m *Manager) Session() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Login submits creds through the portal's login form. It reports success
// as a bool; the reason for a failure is logged.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) bool {
	m.loginMu.Lock()
	defer m.loginMu.Unlock()

	m.setState(Authenticating)

	ctx, cancel := context.WithTimeout(ctx, m.opts.LoginTimeout)
	defer cancel()

	if err := m.submitLogin(ctx, creds); err != nil {
		m.log.Warn(ctx, "portal login failed", "user", creds.Username, "error", err)
		m.setState(Unauthenticated)
		return false
	}

	s := models.Session{
		SessionID: m.newID(),
		UserID:    creds.Username,
		ExpiresAt: m.now().Add(m.opts.TTL),
	}

	m.mu.Lock()
	m.current = &s
	m.state = Authenticated
	m.mu.Unlock()

	// A failure to persist only costs a re-login after restart.
	if err := m.persist(ctx, s); err != nil {
		m.log.Warn(ctx, "failed to persist session", "error", err)
	}
	if err := m.vault.Store(ctx, creds); err != nil {
		m.log.Warn(ctx, "failed to store credentials", "error", err)
	}

	m.log.Info(ctx, "portal login succeeded", "user", creds.Username, "expires", s.ExpiresAt)
	return true
}

func (m *Manager) submitLogin(ctx context.Context, creds models.Credentials) error {
	b := m.browser
	o := m.opts

	if err := b.Goto(ctx, o.URL(o.LoginPath)); err != nil {
		return fmt.Errorf("%w: open login page: %v", common.ErrNavigation, err)
	}
	if err := b.WaitFor(ctx, o.UsernameSelector, o.LoginTimeout); err != nil {
		return fmt.Errorf("login form not found: %w", err)
	}
	if err := b.Type(ctx, o.UsernameSelector, creds.Username); err != nil {
		return fmt.Errorf("type username: %w", err)
	}
	if err := b.Type(ctx, o.PasswordSelector, creds.Password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}
	if o.SchoolCodeSelector != "" && creds.SchoolCode != "" {
		if err := b.Type(ctx, o.SchoolCodeSelector, creds.SchoolCode); err != nil {
			return fmt.Errorf("type school code: %w", err)
		}
	}
	if err := b.Click(ctx, o.SubmitSelector); err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}

	return m.waitLoggedIn(ctx)
}

// waitLoggedIn polls for the post-login marker or route until ctx expires.
func (m *Manager) waitLoggedIn(ctx context.Context) error {
	for {
		if url, err := m.browser.CurrentURL(ctx); err == nil && m.isPostLoginURL(url) {
			return nil
		}
		if m.opts.PostLoginMarker != "" {
			if err := m.browser.WaitFor(ctx, m.opts.PostLoginMarker, m.opts.PollInterval); err == nil {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: no post-login marker", common.ErrAuthenticationFailed)
		case <-time.After(m.opts.PollInterval):
		}
	}
}

func (m *Manager) isPostLoginURL(url string) bool {
	for _, route := range m.opts.PostLoginRoutes {
		if route != "" && strings.Contains(url, route) {
			return true
		}
	}
	return false
}

// IsLoginURL reports whether url is the portal's login route.
func (m *Manager) IsLoginURL(url string) bool {
	return m.opts.LoginPath != "" && strings.Contains(url, m.opts.LoginPath)
}

// IsAuthenticated reports whether a valid session exists, rehydrating it
// from the persisted token when memory is empty.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	now := m.now()

	m.mu.Lock()
	if m.current.Valid(now) {
		m.mu.Unlock()
		return true
	}
	if m.current != nil {
		m.current = nil
		m.state = Expired
	}
	m.mu.Unlock()

	s, err := m.restore(ctx)
	if err != nil {
		m.log.Debug(ctx, "no persisted session", "error", err)
		return false
	}

	m.mu.Lock()
	m.current = &s
	m.state = Authenticated
	m.mu.Unlock()
	return true
}

// EnsureSession logs in silently with the stored credentials when needed.
func (m *Manager) EnsureSession(ctx context.Context) error {
	if m.IsAuthenticated(ctx) {
		return nil
	}
	return m.loginFromVault(ctx)
}

// Relogin discards the current session and logs in again; it is used when
// the portal bounces a page request to the login form.
func (m *Manager) Relogin(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.state = Expired
	m.mu.Unlock()

	return m.loginFromVault(ctx)
}

func (m *Manager) loginFromVault(ctx context.Context) error {
	creds, err := m.vault.Load(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrNotAuthenticated
	}
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotAuthenticated, err)
	}
	if !m.Login(ctx, *creds) {
		return common.ErrAuthenticationFailed
	}
	return nil
}

// Logout tries the portal's logout route, then always clears the local
// session, the persisted token and the stored credentials.
func (m *Manager) Logout(ctx context.Context) error {
	if m.opts.LogoutPath != "" {
		lctx, cancel := context.WithTimeout(ctx, m.opts.LogoutTimeout)
		if err := m.browser.Goto(lctx, m.opts.URL(m.opts.LogoutPath)); err != nil {
			m.log.Warn(ctx, "remote logout failed", "error", err)
		}
		cancel()
	}

	m.mu.Lock()
	m.current = nil
	m.state = LoggedOut
	m.mu.Unlock()

	var errs []error
	if err := m.meta.Delete(ctx, metadata.KeySessionToken); err != nil {
		errs = append(errs, err)
	}
	if err := m.vault.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (m *Manager) persist(ctx context.Context, s models.Session) error {
	key, err := m.vault.SubKey(signingKeyLabel)
	if err != nil {
		return err
	}
	token, err := EncodeToken(s, key)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	return m.meta.Set(ctx, metadata.KeySessionToken, []byte(token))
}

func (m *Manager) restore(ctx context.Context) (models.Session, error) {
	raw, err := m.meta.Get(ctx, metadata.KeySessionToken)
	if err != nil {
		return models.Session{}, err
	}
	if len(raw) == 0 {
		return models.Session{}, common.ErrNotFound
	}
	key, err := m.vault.SubKey(signingKeyLabel)
	if err != nil {
		return models.Session{}, err
	}
	return DecodeToken(string(raw), key, m.now)
}
