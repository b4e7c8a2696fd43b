package middleware

import (
	"net/http"
	"time"

	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/logger"
	phttp "genscan/internal/platform/net/http"

	"github.com/go-chi/httprate"
)

// RateLimitOptions is a request budget per client over a sliding window
type RateLimitOptions struct {
	Requests int
	Window   time.Duration
	Disabled bool
}

// PerMinute is shorthand for n requests per minute
func PerMinute(n int) RateLimitOptions {
	return RateLimitOptions{Requests: n, Window: time.Minute}
}

// RateLimit limits requests per real client ip and replies 429 in the
// envelope format. Zero Requests disables the limit
func RateLimit(o RateLimitOptions) func(http.Handler) http.Handler {
	if o.Disabled || o.Requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	window := o.Window
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(
		o.Requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limited),
	)
}

func limited(w http.ResponseWriter, r *http.Request) {
	logger.C(r.Context()).Warn().Str("path", r.URL.Path).Msg("rate limited")
	phttp.RespondError(w, r, perr.Newf(perr.ErrorCodeTooManyRequests, "rate limit exceeded, retry later"))
}
