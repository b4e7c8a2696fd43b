package module

import (
	"time"

	"genscan/internal/platform/config"
	"genscan/internal/platform/net/middleware"
	dethttp "genscan/internal/services/api/detection/http"
	detsvc "genscan/internal/services/api/detection/service"
)

// Options holds configuration settings for the detection module
type Options struct {
	MaxUploadBytes int64
	Limits         dethttp.Limits
}

// FromConfig reads GENSCAN_DETECT_* settings
// RATE_* values are requests per minute per client, zero disables that limit
func FromConfig(cfg config.Conf) Options {
	dc := cfg.Prefix("GENSCAN_DETECT_")
	def := dethttp.DefaultLimits()
	off := dc.MayBool("RATE_LIMIT_DISABLED", false)

	rate := func(key string, d middleware.RateLimitOptions) middleware.RateLimitOptions {
		return middleware.RateLimitOptions{
			Requests: dc.MayInt(key, d.Requests),
			Window:   time.Minute,
			Disabled: off,
		}
	}
	return Options{
		MaxUploadBytes: dc.MayInt64("MAX_UPLOAD_BYTES", detsvc.DefaultMaxUploadBytes),
		Limits: dethttp.Limits{
			Text:    rate("RATE_TEXT", def.Text),
			Image:   rate("RATE_IMAGE", def.Image),
			Social:  rate("RATE_SOCIAL", def.Social),
			History: rate("RATE_HISTORY", def.History),
		},
	}
}
