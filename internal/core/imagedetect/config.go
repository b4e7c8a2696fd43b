package imagedetect

import "genscan/internal/core/signal"

// Sub-score names as they appear in analysis payloads
const (
	ScoreFrequency = "frequency_analysis"
	ScoreArtifact  = "artifact_detection"
	ScoreMetadata  = "metadata_analysis"
	ScoreTexture   = "texture_analysis"
)

// Frequency tunes the spectrum analyzer
// windows are centered boxes with half extents h/HighDiv,w/HighDiv and h/LowDiv,w/LowDiv
type Frequency struct {
	HighDiv int     `json:"high_div"`
	LowDiv  int     `json:"low_div"`
	Scale   float64 `json:"scale"`
	Epsilon float64 `json:"epsilon"`
}

// Artifact tunes the color uniformity and edge consistency analyzer
type Artifact struct {
	ColorWeight float64 `json:"color_weight"`
	EdgeWeight  float64 `json:"edge_weight"`
	CannyLow    float64 `json:"canny_low"`
	CannyHigh   float64 `json:"canny_high"`
}

// Basic tunes the size-only tier
type Basic struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Confidence float64 `json:"confidence"`
}

// Config is every threshold and weight the image detector uses
type Config struct {
	Weights signal.Weights `json:"weights"`
	// Confidence steps over the shorter decoded side, zero-size images use InvalidConfidence
	Confidence        signal.Steps `json:"confidence"`
	InvalidConfidence float64      `json:"invalid_confidence"`
	// Metadata steps over the encoded byte length
	Metadata signal.Steps `json:"metadata"`

	Frequency     Frequency `json:"frequency"`
	Artifact      Artifact  `json:"artifact"`
	TextureKernel int       `json:"texture_kernel"`
	Basic         Basic     `json:"basic"`

	// MaxAnalysisSide downsizes larger images before the spatial analyzers, 0 disables
	MaxAnalysisSide int `json:"max_analysis_side"`
	// MaxPixels caps the declared width*height the default decoder accepts,
	// larger images are scored by the basic tier
	MaxPixels int64 `json:"max_pixels"`
}

// DefaultConfig returns the reference tuning
func DefaultConfig() Config {
	return Config{
		Weights: signal.Weights{
			{Name: ScoreFrequency, Weight: 0.35},
			{Name: ScoreArtifact, Weight: 0.25},
			{Name: ScoreMetadata, Weight: 0.20},
			{Name: ScoreTexture, Weight: 0.20},
		},
		Confidence: signal.Steps{
			Points: []signal.Step{{Below: 64, Value: 0.4}, {Below: 256, Value: 0.6}, {Below: 1024, Value: 0.8}},
			Else:   0.9,
		},
		InvalidConfidence: 0.3,
		Metadata: signal.Steps{
			Points: []signal.Step{
				{Below: 10_000, Value: 0.3},
				{Below: 50_000, Value: 0.5},
				{Below: 200_000, Value: 0.6},
				{Below: 1_000_000, Value: 0.7},
			},
			Else: 0.8,
		},
		Frequency:     Frequency{HighDiv: 4, LowDiv: 8, Scale: 10, Epsilon: 1e-8},
		Artifact:      Artifact{ColorWeight: 0.6, EdgeWeight: 0.4, CannyLow: 50, CannyHigh: 150},
		TextureKernel: 5,
		Basic:         Basic{Min: 0.2, Max: 0.8, Confidence: 0.5},
		MaxPixels:     1 << 24,
	}
}
