package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/agendasync/internal/flagx"
	"github.com/dmitrijs2005/agendasync/internal/timex"
)

// jsonConfig is a DTO used only for JSON unmarshalling. Durations go through
// timex.Duration; the embedded Config carries every other key.
type jsonConfig struct {
	*Config
	LoginTimeout timex.Duration `json:"login_timeout"`
	PageTimeout  timex.Duration `json:"page_timeout"`
	SessionTTL   timex.Duration `json:"session_ttl"`
}

// parseJSON overlays cfg with the file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPathFrom(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := jsonConfig{
		Config:       cfg,
		LoginTimeout: timex.Duration{Duration: cfg.LoginTimeout},
		PageTimeout:  timex.Duration{Duration: cfg.PageTimeout},
		SessionTTL:   timex.Duration{Duration: cfg.SessionTTL},
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.LoginTimeout = jc.LoginTimeout.Duration
	cfg.PageTimeout = jc.PageTimeout.Duration
	cfg.SessionTTL = jc.SessionTTL.Duration
	return nil
}
