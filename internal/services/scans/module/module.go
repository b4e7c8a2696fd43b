// Package module implements the scans service module
package module

import (
	"context"
	"time"

	"genscan/internal/modkit"
	"genscan/internal/modkit/repokit"
	"genscan/internal/platform/logger"
	"genscan/internal/services/scans/domain"
	"genscan/internal/services/scans/repo"
	"genscan/internal/services/scans/service"
)

// Ports exposed by the scans module
type Ports struct {
	Recorder domain.RecorderPort
	History  domain.HistoryPort
}

// Module owns scan persistence; it mounts no routes
type Module struct {
	modkit.Base
	ports Ports
}

// New constructs a new scans module
// a nil PG seam still yields ports, which answer with unavailable errors
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	var mirror domain.MirrorPort
	if deps.CH != nil && opts.Mirror {
		m := repo.NewCH(deps.CH)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := m.EnsureSchema(ctx); err != nil {
			logger.Named("scans").Warn().Err(err).Msg("scan_events schema check failed")
		}
		cancel()
		mirror = m
	}

	db := repokit.WithBeginHooks(deps.PG, repokit.StatementTimeout(opts.StatementTimeout))
	svc := service.New(db, repo.NewPG(), mirror, service.Config{
		DefaultLimit: opts.DefaultLimit,
		MaxLimit:     opts.MaxLimit,
		ContentRunes: opts.ContentRunes,
	})

	return &Module{
		Base:  modkit.NewBase(modkit.Build(modkit.WithName("scans")), nil),
		ports: Ports{Recorder: svc, History: svc},
	}
}

func (m *Module) Ports() any { return m.ports }
