package lm

import (
	"time"

	"genscan/internal/platform/config"
)

// FromConfig reads GENSCAN_LM_* settings; an empty URL means no scorer
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("GENSCAN_LM_")
	return Options{
		BaseURL:    c.MayString("URL", ""),
		UserAgent:  c.MayString("USER_AGENT", defaultUA),
		Timeout:    time.Duration(c.MayInt("TIMEOUT_MS", int(defaultTimeout/time.Millisecond))) * time.Millisecond,
		MaxRetries: c.MayInt("MAX_RETRIES", defaultMaxRetry),
		RetryBase:  time.Duration(c.MayInt("RETRY_BASE_MS", int(defaultRetryBase/time.Millisecond))) * time.Millisecond,
		MaxRunes:   c.MayInt("MAX_RUNES", defaultMaxRunes),
		Trips:      uint32(c.MayInt("BREAKER_TRIPS", defaultTrips)),
		Cooldown:   time.Duration(c.MayInt("BREAKER_COOLDOWN_S", int(defaultCooldown/time.Second))) * time.Second,
	}
}

// Model returns the configured model label reported on the model tier
func Model(cfg config.Conf) string {
	return cfg.Prefix("GENSCAN_LM_").MayString("MODEL", "remote")
}
