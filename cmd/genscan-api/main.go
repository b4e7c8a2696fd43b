// @title         genscan API
// @version       0.1.0
// @description   AI generated content detection for text and images

package main

import (
	"context"
	ossignal "os/signal"
	"syscall"
	"time"

	"genscan/internal/adapters/lm"
	"genscan/internal/core/imagedetect"
	"genscan/internal/core/signal"
	"genscan/internal/core/textdetect"
	"genscan/internal/modkit/repokit"
	"genscan/internal/platform/config"
	"genscan/internal/platform/logger"
	"genscan/internal/platform/metrics"
	phttp "genscan/internal/platform/net/http"
	"genscan/internal/platform/store"

	"genscan/internal/services/api"

	gobreaker "github.com/sony/gobreaker/v2"
)

func main() {
	// optional yaml layer under the environment (GENSCAN_CONFIG_FILE)
	if err := config.LoadFromEnv(); err != nil {
		logger.Get().Panic().Err(err).Msg("config file")
	}

	root := config.New()
	apiCfg := root.Prefix("GENSCAN_API_")
	pgCfg := root.Prefix("GENSCAN_PG_")
	chCfg := root.Prefix("GENSCAN_CH_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// open the platform store (postgres + optional CH mirror)
	chURL := chCfg.MayString("DBURL", "")
	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "genscan-api",
			Log:     *l,
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
			CH: store.CHConfig{
				Enabled:    chURL != "",
				URL:        chURL,
				ClientName: "genscan",
				ClientTag:  "api",
			},
		},
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	srv := phttp.NewServer(phttp.ServerConfig{
		Addr:          apiCfg.MayString("PORT", ":4000"),
		ShutdownGrace: apiCfg.MayDuration("SHUTDOWN_GRACE", 15*time.Second),
	})

	// detectors are built once so capability checks run at boot
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableMetrics:  apiCfg.MayBool("METRICS", true),
			Text:           newTextDetector(ctx, root, l),
			Image:          newImageDetector(root),
		},
	)

	// serves until SIGINT or SIGTERM, then drains
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server failed")
	}
	l.Info().Msg("http server stopped")
}

// newTextDetector enables the model tier when GENSCAN_LM_URL is set and the sidecar answers a warm-up call
func newTextDetector(ctx context.Context, root config.Conf, l *logger.Logger) *textdetect.Detector {
	opts := textdetect.Options{
		OnDowngrade: func(from, to signal.Method, _ error) {
			metrics.RecordDowngrade("text", string(from), string(to))
		},
	}

	lo := lm.FromConfig(root)
	if lo.BaseURL != "" {
		lo.OnStateChange = func(name string, _, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
		}
		client, err := lm.NewClient(lo)
		if err != nil {
			l.Panic().Err(err).Msg("lm client")
		}
		opts.Scorer = client
		opts.Model = lm.Model(root)
	}

	bootCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return textdetect.NewWithOptions(bootCtx, opts)
}

func newImageDetector(root config.Conf) *imagedetect.Detector {
	dc := root.Prefix("GENSCAN_DETECT_")
	cfg := imagedetect.DefaultConfig()
	cfg.MaxAnalysisSide = dc.MayInt("MAX_ANALYSIS_SIDE", 0)
	cfg.MaxPixels = dc.MayInt64("MAX_PIXELS", cfg.MaxPixels)

	opts := imagedetect.Options{
		Config: &cfg,
		OnDowngrade: func(from, to signal.Method, _ error) {
			metrics.RecordDowngrade("image", string(from), string(to))
		},
	}
	if dc.MayBool("DISABLE_DECODER", false) {
		opts.Decoder = imagedetect.Unavailable()
	}
	return imagedetect.NewWithOptions(opts)
}
