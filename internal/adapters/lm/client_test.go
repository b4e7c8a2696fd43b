package lm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	perr "genscan/internal/platform/errors"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

func newTestClient(t *testing.T, h http.HandlerFunc, o Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	o.BaseURL = srv.URL
	c, err := NewClient(o)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "  "}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" || r.Method != http.MethodGet {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}, Options{})

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestPing_Down(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, Options{MaxRetries: 2})

	err := c.Ping(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("hits = %d, want 3", hits.Load())
	}
}

func TestScore(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text != "hello world" {
			t.Errorf("bad request body %q: %v", req.Text, err)
		}
		_, _ = io.WriteString(w, `{"probability":0.83}`)
	}, Options{})

	p, err := c.Score(context.Background(), "hello world")
	if err != nil || p != 0.83 {
		t.Fatalf("Score = %v, %v", p, err)
	}
}

func TestScore_Truncates(t *testing.T) {
	var got int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		got = utf8.RuneCountInString(req.Text)
		_, _ = io.WriteString(w, `{"probability":0.1}`)
	}, Options{MaxRunes: 16})

	if _, err := c.Score(context.Background(), strings.Repeat("ü", 100)); err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got != 16 {
		t.Fatalf("sidecar saw %d runes, want 16", got)
	}
}

func TestScore_BadResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
		code perr.ErrorCode
	}{
		{"out of range", `{"probability":1.5}`, perr.ErrorCodeUnavailable},
		{"negative", `{"probability":-0.1}`, perr.ErrorCodeUnavailable},
		{"missing", `{}`, perr.ErrorCodeJSON},
		{"garbage", `not json`, perr.ErrorCodeJSON},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tc.body)
			}, Options{})
			if _, err := c.Score(context.Background(), "x"); !perr.IsCode(err, tc.code) {
				t.Fatalf("err = %v, want code %d", err, tc.code)
			}
		})
	}
}

func TestScore_RetriesTransient(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"probability":0.4}`)
	}, Options{})

	p, err := c.Score(context.Background(), "x")
	if err != nil || p != 0.4 {
		t.Fatalf("Score = %v, %v", p, err)
	}
	if hits.Load() != 2 {
		t.Fatalf("hits = %d, want 2", hits.Load())
	}
}

func TestScore_ClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "bad text", http.StatusBadRequest)
	}, Options{})

	_, err := c.Score(context.Background(), "x")
	if StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d, want 1", hits.Load())
	}
}

func TestScore_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	var opened atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, Options{
		MaxRetries: -1,
		Trips:      2,
		Cooldown:   time.Hour,
		OnStateChange: func(_ string, _, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				opened.Store(true)
			}
		},
	})

	for range 2 {
		if _, err := c.Score(context.Background(), "x"); err == nil {
			t.Fatalf("expected failure")
		}
	}
	if c.State() != gobreaker.StateOpen || !opened.Load() {
		t.Fatalf("state = %s", c.State())
	}

	_, err := c.Score(context.Background(), "x")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("open breaker still reached the sidecar: hits = %d", hits.Load())
	}
}

func TestScore_CanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"probability":0.4}`)
	}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Score(ctx, "x"); err == nil {
		t.Fatalf("expected error on canceled context")
	}
}

func TestBackoffCapped(t *testing.T) {
	c := &Client{opts: Options{RetryBase: time.Second}}
	if c.backoff(0) != time.Second || c.backoff(1) != 2*time.Second {
		t.Fatalf("backoff not exponential")
	}
	if c.backoff(20) != maxBackoff {
		t.Fatalf("backoff(20) = %v", c.backoff(20))
	}
}
