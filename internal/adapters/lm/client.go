// Package lm is an HTTP client for a language model scoring sidecar. It backs
// the text detector's model tier
package lm

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/logger"

	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "genscan-lm"
	defaultMaxRetry  = 3
	defaultRetryBase = 200 * time.Millisecond
	defaultMaxRunes  = 2048
	defaultTrips     = 5
	defaultCooldown  = 30 * time.Second
	maxBackoff       = 5 * time.Second
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration

	// MaxRunes truncates scored text, the sidecar model has a bounded context
	MaxRunes int

	// Breaker opens after Trips consecutive failures and stays open for Cooldown
	Trips    uint32
	Cooldown time.Duration

	// OnStateChange observes breaker transitions, e.g. for metrics
	OnStateChange func(name string, from, to gobreaker.State)
}

// Client scores text against the sidecar with retries and a circuit breaker
type Client struct {
	http  *http.Client
	opts  Options
	cb    *gobreaker.CircuitBreaker[float64]
	log   logger.Logger
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) (*Client, error) {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		return nil, perr.InvalidArgf("lm base url is required")
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.MaxRunes <= 0 {
		o.MaxRunes = defaultMaxRunes
	}
	if o.Trips == 0 {
		o.Trips = defaultTrips
	}
	if o.Cooldown <= 0 {
		o.Cooldown = defaultCooldown
	}

	c := &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("lm"),
		sleep: sleepCtx,
	}
	c.cb = gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        "lm-scorer",
		MaxRequests: 1,
		Timeout:     o.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= o.Trips
		},
		// a bad input is the caller's problem, not the sidecar's
		IsSuccessful: func(err error) bool {
			return err == nil || perr.IsCode(err, perr.ErrorCodeValidation)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("lm breaker state change")
			if o.OnStateChange != nil {
				o.OnStateChange(name, from, to)
			}
		},
	})
	return c, nil
}

// State reports the breaker state
func (c *Client) State() gobreaker.State { return c.cb.State() }

// do issues a request with retries on transport errors, 429 and 5xx
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "lm request canceled")
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rd)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "lm new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		lat := time.Since(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "lm %s %s failed", method, path)
			}
			if err := c.retry(ctx, attempts, "lm transport error retrying"); err != nil {
				return nil, err
			}
			attempts++
			continue
		}

		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("lm http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				if resp.StatusCode == http.StatusTooManyRequests {
					return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "lm rate limited")
				}
				return nil, perr.Newf(perr.ErrorCodeUnavailable, "lm server error %d", resp.StatusCode)
			}
			if err := c.retry(ctx, attempts, "lm transient status retrying"); err != nil {
				return nil, err
			}
			attempts++
			continue
		default:
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			_ = resp.Body.Close()
			return nil, &StatusError{
				Status: resp.StatusCode,
				Body:   string(msg),
				Err:    perr.Newf(perr.ErrorCodeUnavailable, "lm unexpected status %d", resp.StatusCode),
			}
		}
	}
}

func (c *Client) retry(ctx context.Context, attempt int, msg string) error {
	back := c.backoff(attempt)
	c.log.Warn().Dur("retry_in", back).Int("attempt", attempt).Msg(msg)
	if err := c.sleep(ctx, back); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "lm retry canceled")
	}
	return nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
