package textdetect

import "genscan/internal/core/signal"

// Sub-score names as they appear in analysis payloads
const (
	ScoreRepetition = "repetition_score"
	ScoreVocab      = "vocab_score"
	ScoreStructure  = "structure_score"
	ScorePerplexity = "perplexity_score"
)

// Blend controls the model-assisted tier
// final = Model*base + Heuristic*(Repetition*rep + Vocab*vocab + Uniformity*(1-diversity))
type Blend struct {
	Model      float64 `json:"model"`
	Heuristic  float64 `json:"heuristic"`
	Repetition float64 `json:"repetition"`
	Vocab      float64 `json:"vocab"`
	Uniformity float64 `json:"uniformity"`
}

// Config is every threshold and weight the text detector uses
type Config struct {
	Weights    signal.Weights `json:"weights"`
	Blend      Blend          `json:"blend"`
	Confidence signal.Steps   `json:"confidence"`

	MinWordsRepetition int `json:"min_words_repetition"`
	MinWordsVocab      int `json:"min_words_vocab"`
	MinSentences       int `json:"min_sentences"`
	MinWordsPerplexity int `json:"min_words_perplexity"`

	// RepetitionScale multiplies repeats-per-word before clamping
	RepetitionScale float64 `json:"repetition_scale"`
	// PerplexityScale maps pseudo perplexity onto [0,1] as 1 - ppl/scale
	PerplexityScale float64 `json:"perplexity_scale"`
	// FloorLogProb stands in for log(p) when a bigram probability is not positive
	FloorLogProb float64 `json:"floor_log_prob"`
}

// DefaultConfig returns the reference tuning
func DefaultConfig() Config {
	return Config{
		Weights: signal.Weights{
			{Name: ScoreRepetition, Weight: 0.3},
			{Name: ScoreVocab, Weight: 0.2},
			{Name: ScoreStructure, Weight: 0.25},
			{Name: ScorePerplexity, Weight: 0.25},
		},
		Blend: Blend{
			Model:      0.7,
			Heuristic:  0.3,
			Repetition: 0.4,
			Vocab:      0.3,
			Uniformity: 0.3,
		},
		Confidence: signal.Steps{
			Points: []signal.Step{{Below: 10, Value: 0.3}, {Below: 50, Value: 0.6}, {Below: 200, Value: 0.8}},
			Else:   0.9,
		},
		MinWordsRepetition: 10,
		MinWordsVocab:      5,
		MinSentences:       2,
		MinWordsPerplexity: 10,
		RepetitionScale:    10,
		PerplexityScale:    100,
		FloorLogProb:       -10,
	}
}
