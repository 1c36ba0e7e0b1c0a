package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/agendasync/internal/browser"
	"github.com/dmitrijs2005/agendasync/internal/filesource"
	"github.com/dmitrijs2005/agendasync/internal/scraper"
	"github.com/dmitrijs2005/agendasync/internal/session"
	"github.com/dmitrijs2005/agendasync/internal/validatex"
)

// Config holds runtime settings. Durations are time.Duration.
type Config struct {
	DataDir      string `json:"data_dir" validate:"notblank"`
	DatabaseFile string `json:"database_file" validate:"notblank"`

	PortalBaseURL      string   `json:"portal_base_url" validate:"omitempty,url"`
	LoginPath          string   `json:"login_path" validate:"notblank"`
	LogoutPath         string   `json:"logout_path"`
	AgendaPath         string   `json:"agenda_path"`
	GradesPath         string   `json:"grades_path"`
	LessonsPath        string   `json:"lessons_path"`
	UsernameSelector   string   `json:"username_selector" validate:"notblank"`
	PasswordSelector   string   `json:"password_selector" validate:"notblank"`
	SchoolCodeSelector string   `json:"school_code_selector"`
	SubmitSelector     string   `json:"submit_selector" validate:"notblank"`
	PostLoginMarker    string   `json:"post_login_marker"`
	PostLoginRoutes    []string `json:"post_login_routes"`
	ReadySelector      string   `json:"ready_selector"`

	LoginTimeout time.Duration `json:"login_timeout" validate:"gt=0"`
	PageTimeout  time.Duration `json:"page_timeout" validate:"gt=0"`
	SessionTTL   time.Duration `json:"session_ttl" validate:"gt=0"`

	Headless      bool   `json:"headless"`
	UserAgent     string `json:"user_agent"`
	ChromePath    string `json:"chrome_path"`
	Daemon        bool   `json:"daemon"`
	LogLevel      string `json:"log_level" validate:"oneof=debug info warn error"`
	LogFormat     string `json:"log_format" validate:"oneof=text json"`
	PassphraseEnv string `json:"passphrase_env"`

	SendgridAPIKey string `json:"sendgrid_api_key"`
	NotifyFrom     string `json:"notify_from" validate:"required_with=SendgridAPIKey,omitempty,email"`
	NotifyTo       string `json:"notify_to" validate:"required_with=SendgridAPIKey,omitempty,email"`

	S3Region    string `json:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint" validate:"omitempty,url"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "~/.agendasync"
	c.DatabaseFile = "agendasync.db"

	c.LoginPath = "/login"
	c.LogoutPath = "/logout"
	c.AgendaPath = "/agenda"
	c.GradesPath = "/voti"
	c.LessonsPath = "/lezioni"
	c.UsernameSelector = `input[name="username"]`
	c.PasswordSelector = `input[name="password"]`
	c.SubmitSelector = `button[type="submit"]`
	c.PostLoginMarker = ".user-menu, .logout, #logout"
	c.PostLoginRoutes = []string{"/home", "/dashboard"}

	c.LoginTimeout = 30 * time.Second
	c.PageTimeout = 20 * time.Second
	c.SessionTTL = 24 * time.Hour

	c.Headless = true
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.PassphraseEnv = "AGENDASYNC_PASSPHRASE"
}

// Load builds a Config by applying defaults, then the JSON file named in
// args, then flags in args, and validates the result.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validatex.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DatabasePath joins the database file onto dataDir, the expanded data
// directory. An absolute DatabaseFile is used as is.
func (c *Config) DatabasePath(dataDir string) string {
	if filepath.IsAbs(c.DatabaseFile) {
		return c.DatabaseFile
	}
	return filepath.Join(dataDir, c.DatabaseFile)
}

func (c *Config) SessionOptions() session.Options {
	return session.Options{
		BaseURL:            c.PortalBaseURL,
		LoginPath:          c.LoginPath,
		LogoutPath:         c.LogoutPath,
		UsernameSelector:   c.UsernameSelector,
		PasswordSelector:   c.PasswordSelector,
		SchoolCodeSelector: c.SchoolCodeSelector,
		SubmitSelector:     c.SubmitSelector,
		PostLoginMarker:    c.PostLoginMarker,
		PostLoginRoutes:    c.PostLoginRoutes,
		LoginTimeout:       c.LoginTimeout,
		TTL:                c.SessionTTL,
	}
}

func (c *Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		BaseURL:       c.PortalBaseURL,
		AgendaPath:    c.AgendaPath,
		GradesPath:    c.GradesPath,
		LessonsPath:   c.LessonsPath,
		ReadySelector: c.ReadySelector,
		PageTimeout:   c.PageTimeout,
	}
}

func (c *Config) BrowserOptions() browser.Options {
	return browser.Options{
		Headless:  c.Headless,
		UserAgent: c.UserAgent,
		ExecPath:  c.ChromePath,
	}
}

func (c *Config) FileSourceOptions() filesource.Options {
	return filesource.Options{
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	}
}
