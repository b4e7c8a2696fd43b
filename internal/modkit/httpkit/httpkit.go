// Package httpkit is what API modules mount routes with. It keeps handlers in
// the (request) -> (value, error) shape and leaves the envelope to phttp
package httpkit

import (
	"compress/flate"
	"net/http"
	"strconv"
	"strings"
	"time"

	perr "genscan/internal/platform/errors"
	phttp "genscan/internal/platform/net/http"
	"genscan/internal/platform/net/http/bind"
	"genscan/internal/platform/net/middleware"
)

type (
	Router   = phttp.Router
	Response = phttp.Response
)

// respond lets a handler pick its own status by returning a Response
func respond(out any, err error) Response {
	if err != nil {
		return phttp.Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return phttp.OK(out)
}

// JSON binds and validates a body of at most maxBytes into T before calling fn
func JSON[T any](maxBytes int64, fn func(*http.Request, T) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := bind.ParseJSON[T](w, r, maxBytes)
		if err != nil {
			phttp.RespondError(w, r, err)
			return
		}
		phttp.Handle(func(r *http.Request) Response { return respond(fn(r, in)) })(w, r)
	}
}

// Call adapts a handler that reads no JSON body
func Call(fn func(*http.Request) (any, error)) http.HandlerFunc {
	return phttp.Handle(func(r *http.Request) Response { return respond(fn(r)) })
}

func Get(r Router, path string, h func(*http.Request) (any, error))  { r.Get(path, Call(h)) }
func Post(r Router, path string, h func(*http.Request) (any, error)) { r.Post(path, Call(h)) }

// PostJSON mounts a JSON body handler with the default body cap
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, JSON(bind.DefaultMaxBytes, h))
}

// Limited groups routes under a per client rate limit
func Limited(r Router, o middleware.RateLimitOptions, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(middleware.RateLimit(o))
		fn(gr)
	})
}

// StackOptions tunes CommonStack
type StackOptions struct {
	CORSOrigins    []string
	SlowRequest    time.Duration
	RequestTimeout time.Duration
}

// CommonStack is the middleware every versioned API scope runs, outermost first
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.ClientContext,
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.AccessLog(o.SlowRequest),
		middleware.Metrics,
		middleware.CORS(o.CORSOrigins, 10*time.Minute),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(o.RequestTimeout),
	}
}

// MountAPI mounts fn under /api/{version} behind mw
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, fn func(Router)) {
	r.Route("/api/"+strings.Trim(version, "/"), func(api Router) {
		api.Use(mw...)
		fn(api)
	})
}

// QueryString returns the trimmed query parameter, failing when required and absent
func QueryString(r *http.Request, key string, required bool) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" && required {
		return "", perr.WithField(perr.Validationf("%s is required", key), key)
	}
	return v, nil
}

// QueryInt parses an optional integer query parameter, def when absent
func QueryInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, perr.WithField(perr.Validationf("%s must be an integer", key), key)
	}
	return n, nil
}
