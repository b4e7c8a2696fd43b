package lm

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"

	"genscan/internal/core/normalize"
	perr "genscan/internal/platform/errors"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Probability *float64 `json:"probability"`
}

// Ping performs GET /health and fails unless the sidecar answers 2xx
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	return drainAndClose(resp.Body)
}

// Score performs POST /score and returns the model's probability that text is
// machine generated. Open breaker errors are reported as unavailable
func (c *Client) Score(ctx context.Context, text string) (float64, error) {
	text = normalize.Truncate(text, c.opts.MaxRunes)
	p, err := c.cb.Execute(func() (float64, error) { return c.score(ctx, text) })
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, perr.Wrap(err, perr.ErrorCodeUnavailable, "lm scorer circuit open")
	}
	return p, err
}

func (c *Client) score(ctx context.Context, text string) (float64, error) {
	body, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeJSON, "lm encode request")
	}

	resp, err := c.do(ctx, http.MethodPost, "/score", body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var out scoreResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeJSON, "lm decode response")
	}
	if out.Probability == nil {
		return 0, perr.JSONErrf("lm response missing probability")
	}
	p := *out.Probability
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, perr.Newf(perr.ErrorCodeUnavailable, "lm probability %v out of range", p)
	}
	return p, nil
}
