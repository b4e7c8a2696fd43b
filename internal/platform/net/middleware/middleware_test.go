package middleware_test

import (
	"bytes"
	"compress/flate"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"genscan/internal/platform/logger"
	"genscan/internal/platform/metrics"
	"genscan/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

type envelope struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Error      string `json:"error"`
	RequestID  string `json:"request_id"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, rr.Body.String())
	}
	return env
}

func TestRateLimit_RepliesEnvelope429(t *testing.T) {
	h := middleware.RateLimit(middleware.RateLimitOptions{Requests: 2, Window: time.Minute})(http.HandlerFunc(okHandler))

	for i := range 2 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/text", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/text", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if env := decode(t, rr); env.StatusCode != 429 || env.Code != "too_many_requests" || env.Error == "" {
		t.Fatalf("body = %+v", env)
	}

	// another client has its own budget
	req := httptest.NewRequest(http.MethodPost, "/text", nil)
	req.Header.Set("X-Real-IP", "198.51.100.4")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("other client status = %d", rr.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	for _, o := range []middleware.RateLimitOptions{{}, {Requests: 1, Disabled: true}} {
		h := middleware.RateLimit(o)(http.HandlerFunc(okHandler))
		for range 5 {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("disabled limiter rejected: %d", rr.Code)
			}
		}
	}
	if o := middleware.PerMinute(10); o.Requests != 10 || o.Window != time.Minute {
		t.Fatalf("PerMinute = %+v", o)
	}
}

func TestClientContext_TagsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	root := zerolog.New(&buf)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.C(r.Context()).Info().Msg("scored")
	})
	h := middleware.RequestID()(middleware.ClientContext(next))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(root.WithContext(req.Context()))
	req.RemoteAddr = "203.0.113.5:41000"
	req.Header.Set("X-Request-ID", "abc-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") != "abc-1" {
		t.Fatalf("request id not mirrored")
	}
	out := buf.String()
	if !strings.Contains(out, `"request_id":"abc-1"`) || !strings.Contains(out, `"client_ip":"203.0.113.5"`) {
		t.Fatalf("log = %s", out)
	}
}

func TestMetrics_LabelsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Metrics)
	r.Get("/scans/{id}", okHandler)

	c := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/scans/{id}", "200")
	before := testutil.ToFloat64(c)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/scans/42", nil))

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Fatalf("counter delta = %v", got)
	}
}

func TestAccessLog_Levels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		sleep  time.Duration
		slow   time.Duration
		level  string
	}{
		{"fast", http.StatusOK, 0, time.Hour, `"level":"info"`},
		{"slow", http.StatusOK, 2 * time.Millisecond, time.Millisecond, `"level":"warn"`},
		{"server error", http.StatusServiceUnavailable, 0, 0, `"level":"error"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := chi.NewRouter()
			r.Use(middleware.AccessLog(tc.slow))
			r.Post("/detection/text", func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(tc.sleep)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("{}"))
			})

			req := httptest.NewRequest(http.MethodPost, "/detection/text", nil)
			req = req.WithContext(zerolog.New(&buf).WithContext(context.Background()))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			out := buf.String()
			for _, want := range []string{tc.level, `"route":"/detection/text"`, `"bytes":2`} {
				if !strings.Contains(out, want) {
					t.Fatalf("log %s missing %s", out, want)
				}
			}
		})
	}
}

func TestRecoverJSON(t *testing.T) {
	h := middleware.RequestID()(middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil analysis map")
	})))

	req := httptest.NewRequest(http.MethodPost, "/detection/image", nil)
	req.Header.Set("X-Request-ID", "rid-9")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	env := decode(t, rr)
	if env.Code != "panic" || env.Error != "internal error" || env.RequestID != "rid-9" {
		t.Fatalf("body = %+v", env)
	}

	abort := middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if v := recover(); v != http.ErrAbortHandler {
			t.Fatalf("recovered %v", v)
		}
	}()
	abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestCORS(t *testing.T) {
	h := middleware.CORS([]string{"https://app.example"}, 10*time.Minute)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/detection/text", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("max age = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/detection/text", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin allowed")
	}
}

func TestCompressAndTimeout(t *testing.T) {
	big := strings.Repeat(`{"method":"heuristic"}`, 200)
	h := middleware.Compress(flate.BestSpeed)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(big))
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/detection/history", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("not compressed: %v", rr.Header())
	}

	var deadline bool
	middleware.Timeout(0)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if deadline {
		t.Fatalf("zero timeout should not set a deadline")
	}
	middleware.Timeout(time.Minute)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !deadline {
		t.Fatalf("timeout did not set a deadline")
	}
}
