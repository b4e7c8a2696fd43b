// Package signal holds the result contract shared by the text and image detectors:
// named sub-scores, explicit analyzer outcomes, weight tables, step tables and the
// fused detection result
package signal

import (
	"fmt"
	"math"
)

// Method identifies which tier produced a Result
type Method string

const (
	// MethodHeuristic is the statistical text tier
	MethodHeuristic Method = "heuristic"
	// MethodML is the model-assisted text tier
	MethodML Method = "ml_model"
	// MethodAdvanced is the decoded-pixel image tier
	MethodAdvanced Method = "advanced_cv"
	// MethodBasic is the size-only image tier
	MethodBasic Method = "basic"
	// MethodFallback is the terminal neutral result
	MethodFallback Method = "fallback"
)

// Neutral is the score an analyzer reports when it cannot form an opinion
const Neutral = 0.5

// Score is a named sub-analyzer value in [0,1]
type Score struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Outcome is the result of one analyzer run, either a value or a failure reason
type Outcome struct {
	Name  string
	Value float64
	Err   error
}

// Ok returns a successful outcome with v clamped to [0,1]
func Ok(name string, v float64) Outcome {
	if math.IsNaN(v) {
		return Fail(name, fmt.Errorf("%s: NaN score", name))
	}
	return Outcome{Name: name, Value: Clamp01(v)}
}

// Fail returns a failed outcome
func Fail(name string, err error) Outcome {
	if err == nil {
		err = fmt.Errorf("%s: failed", name)
	}
	return Outcome{Name: name, Err: err}
}

// Failed reports whether the analyzer failed
func (o Outcome) Failed() bool { return o.Err != nil }

// Or resolves the outcome to a Score, substituting def on failure
func (o Outcome) Or(def float64) Score {
	if o.Err != nil {
		return Score{Name: o.Name, Value: def}
	}
	return Score{Name: o.Name, Value: o.Value}
}

// Clamp bounds v to [lo,hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to [0,1]
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// Result is the detection output returned by every tier of both detectors
type Result struct {
	AIProbability float64  `json:"ai_probability"`
	Confidence    float64  `json:"confidence"`
	Analysis      Analysis `json:"analysis"`
}

// Analysis is the open, tier dependent breakdown. The method key is always present
type Analysis map[string]any

// Method returns the tier identifier recorded in the analysis
func (a Analysis) Method() Method {
	if a == nil {
		return ""
	}
	switch v := a["method"].(type) {
	case Method:
		return v
	case string:
		return Method(v)
	}
	return ""
}

// Fallback is the terminal degraded result
func Fallback() Result {
	return Result{
		AIProbability: Neutral,
		Confidence:    0.3,
		Analysis:      Analysis{"method": string(MethodFallback)},
	}
}

// Guard runs fn and converts a panic into the terminal fallback
func Guard(fn func() Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Fallback()
		}
	}()
	return fn()
}
