// Package service contains the detection workflows behind the http routes
package service

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"time"

	"genscan/internal/core/imagedetect"
	"genscan/internal/core/signal"
	"genscan/internal/core/version"
	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/logger"
	"genscan/internal/platform/metrics"
	"genscan/internal/services/api/detection/domain"
	scans "genscan/internal/services/scans/domain"
)

// MethodSocialPlaceholder marks the fixed social result; no analyzer runs for urls yet
const MethodSocialPlaceholder signal.Method = "social_placeholder"

// DefaultMaxUploadBytes bounds image uploads
const DefaultMaxUploadBytes = 10 << 20

// AllowedImageTypes are the declared upload types accepted by Image
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Config for the detection service
type Config struct {
	MaxUploadBytes int64
}

// Service defines the service contract for detection
type Service interface{ domain.ServicePort }

// Svc implements Service
type Svc struct {
	text  domain.TextDetector
	image domain.ImageDetector

	// Recorder and Lister are optional; without them scans are not stored
	Recorder scans.RecorderPort
	Lister   scans.HistoryPort

	cfg Config
	now func() time.Time
}

// New creates a detection service over the two detectors
func New(text domain.TextDetector, image domain.ImageDetector, rec scans.RecorderPort, hist scans.HistoryPort, cfg Config) *Svc {
	if text == nil {
		panic("detection.Service requires a non nil TextDetector")
	}
	if image == nil {
		panic("detection.Service requires a non nil ImageDetector")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Svc{
		text:     text,
		image:    image,
		Recorder: rec,
		Lister:   hist,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Text scores content and records the scan
func (s *Svc) Text(ctx context.Context, content string) (domain.DetectionResponse, error) {
	if strings.TrimSpace(content) == "" {
		return domain.DetectionResponse{}, perr.WithField(perr.Validationf("content must not be blank"), "content")
	}

	start := s.now()
	res := s.text.Detect(ctx, content)
	metrics.RecordDetection("text", string(res.Analysis.Method()), s.now().Sub(start))

	return s.record(ctx, scans.NewScan{ContentType: scans.ContentText, Content: content, Result: res}), nil
}

// Image validates an upload, scores it and records the scan
func (s *Svc) Image(ctx context.Context, in domain.ImageUpload) (domain.DetectionResponse, error) {
	if int64(len(in.Data)) > s.cfg.MaxUploadBytes {
		return domain.DetectionResponse{}, perr.TooLargef("file too large, limit is %d bytes", s.cfg.MaxUploadBytes)
	}
	ct := resolveType(in.ContentType, in.Data)
	if !allowedImage(ct) {
		return domain.DetectionResponse{}, perr.WithField(perr.Validationf("unsupported image format %q", ct), "file")
	}

	start := s.now()
	res := s.image.Detect(ctx, in.Data)
	metrics.RecordDetection("image", string(res.Analysis.Method()), s.now().Sub(start))

	return s.record(ctx, scans.NewScan{ContentType: scans.ContentImage, FilePath: in.Filename, Result: res}), nil
}

// Social records the fixed placeholder result for a post url
func (s *Svc) Social(ctx context.Context, rawURL string) (domain.DetectionResponse, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.DetectionResponse{}, perr.WithField(perr.Validationf("url must be an absolute http or https url"), "url")
	}

	res := signal.Result{
		AIProbability: 0.4,
		Confidence:    0.6,
		Analysis:      signal.Analysis{"method": string(MethodSocialPlaceholder), "url": u.String()},
	}
	metrics.RecordDetection("social", string(MethodSocialPlaceholder), 0)

	return s.record(ctx, scans.NewScan{ContentType: scans.ContentSocial, URL: u.String(), Result: res}), nil
}

// History lists stored scans newest first
func (s *Svc) History(ctx context.Context, limit int) (domain.HistoryResponse, error) {
	if s.Lister == nil {
		return domain.HistoryResponse{}, perr.Unavailablef("scan history is not configured")
	}
	list, err := s.Lister.History(ctx, limit)
	if err != nil {
		return domain.HistoryResponse{}, err
	}
	if list == nil {
		list = []scans.Scan{}
	}
	return domain.HistoryResponse{Scans: list, Count: len(list)}, nil
}

// Capabilities reports the tiers each detector attempts first
func (s *Svc) Capabilities() domain.Capabilities {
	c := domain.Capabilities{
		Engine: version.Engine,
		Text:   tierInfo(s.text.Tier()),
		Image:  tierInfo(s.image.Tier()),
	}
	if m, ok := s.text.(interface{ Model() string }); ok {
		c.Text.Model = m.Model()
	}
	return c
}

// record stores the scan and shapes the response; storage failures only drop the scan id
func (s *Svc) record(ctx context.Context, in scans.NewScan) domain.DetectionResponse {
	out := domain.DetectionResponse{
		ContentType:   in.ContentType,
		AIProbability: in.Result.AIProbability,
		Confidence:    in.Result.Confidence,
		Analysis:      in.Result.Analysis,
	}
	if s.Recorder == nil {
		return out
	}
	sc, err := s.Recorder.Record(ctx, in)
	if err != nil {
		logger.C(ctx).Error().Err(err).Str("content_type", string(in.ContentType)).Msg("scan not stored")
		return out
	}
	out.ScanID = sc.ID
	return out
}

func tierInfo(m signal.Method) domain.TierInfo {
	ti := domain.TierInfo{Tier: m}
	switch m {
	case signal.MethodML:
		ti.Fallbacks = []signal.Method{signal.MethodHeuristic, signal.MethodFallback}
	case signal.MethodAdvanced:
		ti.Fallbacks = []signal.Method{signal.MethodBasic, signal.MethodFallback}
	default:
		ti.Fallbacks = []signal.Method{signal.MethodFallback}
	}
	return ti
}

// resolveType trusts a declared type and sniffs the payload only when none was sent
func resolveType(declared string, data []byte) string {
	ct := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if sniffed, err := imagedetect.Sniff(data); err == nil {
		return sniffed
	}
	return ct
}

func allowedImage(ct string) bool { return slices.Contains(AllowedImageTypes, ct) }
