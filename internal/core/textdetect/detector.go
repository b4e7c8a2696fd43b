// Package textdetect estimates whether text was machine generated from four
// statistical signals, optionally blended with a language-model score
package textdetect

import (
	"context"
	"math"

	"genscan/internal/core/signal"
	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/logger"
)

// Scorer is the optional language-model capability
// Ping is called once by New; Score is called per Detect and may fail
type Scorer interface {
	Ping(ctx context.Context) error
	Score(ctx context.Context, text string) (float64, error)
}

// Options controls detector construction
type Options struct {
	// Config overrides DefaultConfig when non nil
	Config *Config
	// Scorer enables the model-assisted tier when its Ping succeeds
	Scorer Scorer
	// Model is reported as analysis.model on the model-assisted tier
	Model string
	// OnDowngrade observes per call fallbacks from one tier to another
	OnDowngrade func(from, to signal.Method, cause error)
}

// Detector is immutable after construction and safe for concurrent use
type Detector struct {
	cfg         Config
	scorer      Scorer
	model       string
	onDowngrade func(from, to signal.Method, cause error)
}

// New creates a heuristic-only Detector with the default config
func New() *Detector {
	return NewWithOptions(context.Background(), Options{})
}

// NewWithOptions creates a Detector, pinging the scorer once
func NewWithOptions(ctx context.Context, opts Options) *Detector {
	d := &Detector{cfg: DefaultConfig(), model: opts.Model, onDowngrade: opts.OnDowngrade}
	if opts.Config != nil {
		d.cfg = *opts.Config
	}
	if d.model == "" {
		d.model = "remote"
	}

	if opts.Scorer != nil {
		if err := opts.Scorer.Ping(ctx); err != nil {
			logger.Named("textdetect").Warn().Err(err).Msg("language model scorer unavailable, heuristic tier only")
		} else {
			d.scorer = opts.Scorer
		}
	}
	return d
}

// Config returns a copy of the active config
func (d *Detector) Config() Config { return d.cfg }

// Tier reports the tier Detect attempts first
func (d *Detector) Tier() signal.Method {
	if d.scorer != nil {
		return signal.MethodML
	}
	return signal.MethodHeuristic
}

// Model names the scorer behind the model-assisted tier, empty when heuristic only
func (d *Detector) Model() string {
	if d.scorer == nil {
		return ""
	}
	return d.model
}

// Detect scores text. It never fails: scorer errors fall back to the heuristic
// tier for this call and any panic yields the terminal fallback
func (d *Detector) Detect(ctx context.Context, text string) signal.Result {
	return signal.Guard(func() signal.Result {
		doc := parse(text)

		if d.scorer != nil {
			res, err := d.modelTier(ctx, text, doc)
			if err == nil {
				return res
			}
			d.downgrade(ctx, signal.MethodML, signal.MethodHeuristic, err)
		}
		return d.heuristicTier(doc)
	})
}

// scores runs the four analyzers, resolving failures to neutral
func (d *Detector) scores(doc document) (rep, voc, st, ppl signal.Score) {
	return d.cfg.repetition(doc).Or(signal.Neutral),
		d.cfg.vocab(doc).Or(signal.Neutral),
		d.cfg.structure(doc).Or(signal.Neutral),
		d.cfg.perplexity(doc).Or(signal.Neutral)
}

func (d *Detector) heuristicTier(doc document) signal.Result {
	feats := doc.features()
	rep, voc, st, ppl := d.scores(doc)

	return signal.Result{
		AIProbability: d.cfg.Weights.Fuse(rep, voc, st, ppl),
		Confidence:    d.confidence(feats),
		Analysis: signal.Analysis{
			"method":        string(signal.MethodHeuristic),
			"features":      feats,
			ScoreRepetition: rep.Value,
			ScoreVocab:      voc.Value,
			ScoreStructure:  st.Value,
			ScorePerplexity: ppl.Value,
		},
	}
}

func (d *Detector) modelTier(ctx context.Context, text string, doc document) (signal.Result, error) {
	base, err := d.scorer.Score(ctx, text)
	if err != nil {
		return signal.Result{}, err
	}
	if math.IsNaN(base) || base < 0 || base > 1 {
		return signal.Result{}, perr.Internalf("scorer returned out of range probability %v", base)
	}

	feats := doc.features()
	rep, voc, st, ppl := d.scores(doc)

	b := d.cfg.Blend
	heur := b.Repetition*rep.Value + b.Vocab*voc.Value + b.Uniformity*(1-feats.VocabularyDiversity)

	return signal.Result{
		AIProbability: signal.Clamp01(b.Model*base + b.Heuristic*heur),
		Confidence:    d.confidence(feats),
		Analysis: signal.Analysis{
			"method":           string(signal.MethodML),
			"model":            d.model,
			"base_probability": base,
			"features":         feats,
			ScoreRepetition:    rep.Value,
			ScoreVocab:         voc.Value,
			ScoreStructure:     st.Value,
			ScorePerplexity:    ppl.Value,
		},
	}, nil
}

// confidence tracks sample size only
func (d *Detector) confidence(f Features) float64 {
	return d.cfg.Confidence.At(float64(f.WordCount))
}

func (d *Detector) downgrade(ctx context.Context, from, to signal.Method, cause error) {
	logger.C(ctx).Debug().Err(cause).
		Str("component", "textdetect").
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("tier downgrade")
	if d.onDowngrade != nil {
		d.onDowngrade(from, to, cause)
	}
}
