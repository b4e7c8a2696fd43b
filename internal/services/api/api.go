// Package api composes the genscan HTTP API from its modules
package api

import (
	"time"

	"genscan/internal/modkit"
	"genscan/internal/modkit/httpkit"
	"genscan/internal/modkit/swaggerkit"
	"genscan/internal/platform/config"
	"genscan/internal/platform/logger"
	"genscan/internal/platform/metrics"
	phttp "genscan/internal/platform/net/http"
	"genscan/internal/platform/store"
	"genscan/internal/services/api/detection/domain"
	detectionmod "genscan/internal/services/api/detection/module"
	metamod "genscan/internal/services/api/meta/module"
	scansmod "genscan/internal/services/scans/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool

	// Text and Image are built by main so tier selection happens once per process
	Text  domain.TextDetector
	Image domain.ImageDetector
}

// StackFromConfig reads GENSCAN_API_CORS_ORIGINS, SLOW_REQUEST and REQUEST_TIMEOUT
func StackFromConfig(cfg config.Conf) httpkit.StackOptions {
	ac := cfg.Prefix("GENSCAN_API_")
	return httpkit.StackOptions{
		CORSOrigins:    ac.MayCSV("CORS_ORIGINS", nil),
		SlowRequest:    ac.MayDuration("SLOW_REQUEST", 2*time.Second),
		RequestTimeout: ac.MayDuration("REQUEST_TIMEOUT", 60*time.Second),
	}
}

// Mount wires scans, detection and meta under /api/v1 and the docs, pprof and
// metrics endpoints at the root
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	// scans first, its ports feed detection, whose capabilities feed meta
	scans := scansmod.New(deps)
	sp := modkit.MustPortsOf[scansmod.Ports](scans)

	detection := detectionmod.New(deps, modkit.WithPorts(detectionmod.Ports{
		Text:     opt.Text,
		Image:    opt.Image,
		Recorder: sp.Recorder,
		History:  sp.History,
	}))
	caps := modkit.MustPortsOf[detectionmod.Exposed](detection).Capabilities

	mods := []modkit.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Capabilities: caps})),
		scans,
		detection,
	}

	if opt.EnableMetrics {
		r.Handle("/metrics", metrics.Handler())
	}
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPI(r, "v1", httpkit.CommonStack(StackFromConfig(opt.Config)), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
