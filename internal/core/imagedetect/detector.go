// Package imagedetect estimates whether an image was machine generated from
// spectrum, color, size and texture signals, degrading to a size-only estimate
// when pixels cannot be decoded
package imagedetect

import (
	"context"
	"fmt"

	"genscan/internal/core/signal"
	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/logger"

	"github.com/disintegration/imaging"
)

// Options controls detector construction
type Options struct {
	// Config overrides DefaultConfig when non nil
	Config *Config
	// Decoder overrides the default decoder; use Unavailable() to force the basic tier
	Decoder Decoder
	// OnDowngrade observes per call fallbacks from one tier to another
	OnDowngrade func(from, to signal.Method, cause error)
}

// Detector is immutable after construction and safe for concurrent use
type Detector struct {
	cfg         Config
	decoder     Decoder
	onDowngrade func(from, to signal.Method, cause error)
}

// New creates a Detector with the default decoder and config
func New() *Detector { return NewWithOptions(Options{}) }

// NewWithOptions creates a Detector, checking decoder availability once
func NewWithOptions(opts Options) *Detector {
	d := &Detector{cfg: DefaultConfig(), onDowngrade: opts.OnDowngrade}
	if opts.Config != nil {
		d.cfg = *opts.Config
	}

	dec := opts.Decoder
	if dec == nil {
		dec = NewDecoder(d.cfg.MaxPixels)
	}
	if dec.Available() {
		d.decoder = dec
	} else {
		logger.Named("imagedetect").Warn().Msg("image decoder unavailable, basic tier only")
	}
	return d
}

// Config returns a copy of the active config
func (d *Detector) Config() Config { return d.cfg }

// Tier reports the tier Detect attempts first
func (d *Detector) Tier() signal.Method {
	if d.decoder != nil {
		return signal.MethodAdvanced
	}
	return signal.MethodBasic
}

// Detect scores an encoded image. It never fails: decode failures fall back to
// the basic tier, and a payload without an image signature or any panic yields
// the terminal fallback
func (d *Detector) Detect(ctx context.Context, data []byte) signal.Result {
	return signal.Guard(func() signal.Result {
		if d.decoder != nil {
			res, err := d.advancedTier(data)
			if err == nil {
				return res
			}
			d.downgrade(ctx, signal.MethodAdvanced, signal.MethodBasic, err)
		}

		res, err := d.basicTier(data)
		if err == nil {
			return res
		}
		d.downgrade(ctx, signal.MethodBasic, signal.MethodFallback, err)
		return signal.Fallback()
	})
}

func (d *Detector) advancedTier(data []byte) (signal.Result, error) {
	img, err := d.decoder.Decode(data)
	if err != nil {
		return signal.Result{}, err
	}
	if img == nil || img.Pixels == nil {
		return signal.Result{}, perr.Internalf("decoder returned no pixels")
	}

	px := img.Pixels
	if side := d.cfg.MaxAnalysisSide; side > 0 && max(img.Width, img.Height) > side {
		px = imaging.Fit(px, side, side, imaging.Lanczos)
	}
	gray := grayPlane(px)

	freq := d.cfg.frequency(gray).Or(signal.Neutral)
	art := d.cfg.artifact(px, gray).Or(signal.Neutral)
	meta := d.cfg.metadata(data).Or(signal.Neutral)
	tex := d.cfg.texture(gray).Or(signal.Neutral)

	return signal.Result{
		AIProbability: d.cfg.Weights.Fuse(freq, art, meta, tex),
		Confidence:    d.cfg.confidence(img.Width, img.Height),
		Analysis: signal.Analysis{
			"method":       string(signal.MethodAdvanced),
			ScoreFrequency: freq.Value,
			ScoreArtifact:  art.Value,
			ScoreMetadata:  meta.Value,
			ScoreTexture:   tex.Value,
			"image_size":   fmt.Sprintf("%dx%d", img.Width, img.Height),
			"channels":     img.Channels,
		},
	}, nil
}

// basicTier needs nothing but a recognizable image signature
func (d *Detector) basicTier(data []byte) (signal.Result, error) {
	if _, err := Sniff(data); err != nil {
		return signal.Result{}, err
	}
	meta := d.cfg.metadata(data).Or(signal.Neutral)
	b := d.cfg.Basic

	return signal.Result{
		AIProbability: signal.Clamp(meta.Value, b.Min, b.Max),
		Confidence:    b.Confidence,
		Analysis: signal.Analysis{
			"method":         string(signal.MethodBasic),
			"file_size":      len(data),
			"metadata_score": meta.Value,
		},
	}, nil
}

func (d *Detector) downgrade(ctx context.Context, from, to signal.Method, cause error) {
	logger.C(ctx).Debug().Err(cause).
		Str("component", "imagedetect").
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("tier downgrade")
	if d.onDowngrade != nil {
		d.onDowngrade(from, to, cause)
	}
}
