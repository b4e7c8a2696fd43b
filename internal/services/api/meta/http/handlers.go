// Package http serves /meta: liveness, readiness, build info and detector capabilities
package http

import (
	"context"
	"net/http"
	"time"

	"genscan/internal/core/version"
	"genscan/internal/modkit/httpkit"
	"genscan/internal/platform/store"
)

// Check is one dependency consulted by /ready. Target is nil when the
// dependency is not configured and is pinged when it implements store.Pinger
type Check struct {
	Name     string
	Target   any
	Required bool
}

type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
	// ReadyTimeout bounds all pings of one /ready call, 2s when zero
	ReadyTimeout time.Duration

	// Capabilities reports the active detector tiers, nil when detection is not mounted
	Capabilities func() any
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	httpkit.Get(r, "/health", d.health)
	httpkit.Get(r, "/ready", d.ready)
	httpkit.Get(r, "/version", func(*http.Request) (any, error) { return version.Info(), nil })
	httpkit.Get(r, "/service", d.service)
	httpkit.Get(r, "/capabilities", d.capabilities)
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// HealthResponse is the liveness payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"genscan-api"`
	Started string `json:"started" example:"2026-10-01T13:00:00Z"`
	Now     string `json:"now"     example:"2026-10-01T13:05:00Z"`
}

// CheckResult is the outcome of one dependency check: ok, fail, skipped or unknown
type CheckResult struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse is ok, degraded or fail
type ReadyResponse struct {
	Status string        `json:"status" example:"ok"`
	Checks []CheckResult `json:"checks"`
	Now    string        `json:"now"    example:"2026-10-01T13:05:00Z"`
}

type ServiceResponse struct {
	Name    string `json:"name"    example:"genscan-api"`
	Started string `json:"started" example:"2026-10-01T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (d Deps) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: d.ServiceName, Started: stamp(d.StartedAt), Now: stamp(time.Now())}, nil
}

func run(ctx context.Context, c Check) CheckResult {
	res := CheckResult{Name: c.Name, Status: "unknown"}
	switch t := c.Target.(type) {
	case nil:
		res.Status = "skipped"
	case store.Pinger:
		if err := t.Ping(ctx); err != nil {
			res.Status, res.Error = "fail", err.Error()
		} else {
			res.Status = "ok"
		}
	}
	return res
}

// @Summary Readiness with dependency checks
// @Description A failing required dependency fails readiness; anything else short of ok degrades it
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (d Deps) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), d.ReadyTimeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Checks: make([]CheckResult, 0, len(d.Checks))}
	for _, c := range d.Checks {
		res := run(ctx, c)
		out.Checks = append(out.Checks, res)
		switch {
		case c.Required && res.Status == "fail":
			out.Status = "fail"
		case out.Status == "fail", res.Status == "ok":
		case c.Required || res.Status != "skipped":
			out.Status = "degraded"
		}
	}
	out.Now = stamp(time.Now())
	return out, nil
}

// @Summary Service name and uptime in seconds
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (d Deps) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    d.ServiceName,
		Started: stamp(d.StartedAt),
		Uptime:  int64(time.Since(d.StartedAt) / time.Second),
	}, nil
}

// @Summary Active detector tiers and engine version
// @Tags Meta
// @Produce json
// @Router /meta/capabilities [get]
func (d Deps) capabilities(*http.Request) (any, error) {
	if d.Capabilities == nil {
		return map[string]any{"engine": version.Engine}, nil
	}
	return d.Capabilities(), nil
}
