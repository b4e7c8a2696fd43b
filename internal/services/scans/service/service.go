// Package service provides the scans service implementation
package service

import (
	"context"
	"maps"
	"time"

	"genscan/internal/core/normalize"
	"genscan/internal/core/version"
	"genscan/internal/modkit/repokit"
	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/logger"
	"genscan/internal/platform/metrics"
	"genscan/internal/services/scans/domain"
	"genscan/internal/services/scans/repo"

	"github.com/google/uuid"
)

// Config for the scans service
type Config struct {
	// DefaultLimit applies when History is called with a zero limit
	DefaultLimit int
	// MaxLimit caps History
	MaxLimit int
	// ContentRunes bounds the stored text content
	ContentRunes int
}

// Service implements domain.RecorderPort and domain.HistoryPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	// Mirror is optional, failures there are logged and never surfaced
	Mirror domain.MirrorPort
	Cfg    Config

	now   func() time.Time
	newID func() uuid.UUID
	log   logger.Logger
}

// New constructs a new scans service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], mirror domain.MirrorPort, cfg Config) *Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 200
	}
	if cfg.ContentRunes <= 0 {
		cfg.ContentRunes = 1000
	}
	return &Service{
		DB:     db,
		Binder: b,
		Mirror: mirror,
		Cfg:    cfg,
		now:    time.Now,
		newID:  uuid.New,
		log:    *logger.Named("scans"),
	}
}

// Record implements domain.RecorderPort
func (s *Service) Record(ctx context.Context, in domain.NewScan) (domain.Scan, error) {
	if !in.ContentType.Valid() {
		return domain.Scan{}, perr.InvalidArgf("unknown content type %q", in.ContentType)
	}
	if s.DB == nil {
		return domain.Scan{}, perr.Unavailablef("scan storage is not configured")
	}

	sc := domain.Scan{
		ID:            s.newID().String(),
		ContentType:   in.ContentType,
		AIProbability: in.Result.AIProbability,
		Confidence:    in.Result.Confidence,
		Analysis:      maps.Clone(in.Result.Analysis),
		Engine:        version.Engine,
		// postgres keeps microseconds
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	switch in.ContentType {
	case domain.ContentText:
		sc.Content = normalize.Truncate(normalize.Sanitize(in.Content), s.Cfg.ContentRunes)
	case domain.ContentImage:
		sc.FilePath = normalize.Truncate(normalize.Sanitize(in.FilePath), 255)
	case domain.ContentSocial:
		sc.URL = normalize.Sanitize(in.URL)
	}
	if sc.Analysis == nil {
		sc.Analysis = map[string]any{}
	}

	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return repokit.MustBind(s.Binder, q).Insert(ctx, sc)
	})
	if err != nil {
		metrics.RecordPersistError("pg")
		return domain.Scan{}, perr.FromPostgres(err, "insert scan")
	}

	if s.Mirror != nil {
		if err := s.Mirror.Mirror(ctx, sc); err != nil {
			metrics.RecordPersistError("ch")
			s.log.Warn().Err(err).Str("scan_id", sc.ID).Msg("scan mirror failed")
		}
	}
	return sc, nil
}

// History implements domain.HistoryPort
func (s *Service) History(ctx context.Context, limit int) ([]domain.Scan, error) {
	if s.DB == nil {
		return nil, perr.Unavailablef("scan storage is not configured")
	}
	limit = s.clamp(limit)

	var out []domain.Scan
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = repokit.MustBind(s.Binder, q).List(ctx, limit)
		return err
	})
	if err != nil {
		return nil, perr.FromPostgres(err, "list scans")
	}
	return out, nil
}

// clamp maps zero to the default and bounds everything else to 1..MaxLimit
func (s *Service) clamp(limit int) int {
	switch {
	case limit == 0:
		return min(s.Cfg.DefaultLimit, s.Cfg.MaxLimit)
	case limit < 0:
		return 1
	case limit > s.Cfg.MaxLimit:
		return s.Cfg.MaxLimit
	}
	return limit
}
