package module

import (
	"time"

	"genscan/internal/platform/config"
)

// Options holds configuration settings for the scans module
type Options struct {
	DefaultLimit int
	MaxLimit     int
	ContentRunes int
	// Mirror toggles the clickhouse copy when a clickhouse seam is present
	Mirror bool
	// StatementTimeout bounds every statement inside a scans transaction, zero disables it
	StatementTimeout time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("GENSCAN_SCANS_")
	return Options{
		DefaultLimit: sc.MayInt("HISTORY_DEFAULT", 50),
		MaxLimit:     sc.MayInt("HISTORY_MAX", 200),
		ContentRunes: sc.MayInt("CONTENT_RUNES", 1000),
		Mirror:       sc.MayBool("MIRROR", true),

		StatementTimeout: sc.MayDuration("STATEMENT_TIMEOUT", 2*time.Second),
	}
}
