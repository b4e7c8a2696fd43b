package signal

import (
	"errors"
	"math"
	"testing"
)

func TestOutcome_Or(t *testing.T) {
	tests := []struct {
		name string
		in   Outcome
		want float64
	}{
		{"ok passes through", Ok("a", 0.25), 0.25},
		{"ok clamps high", Ok("a", 3), 1},
		{"ok clamps low", Ok("a", -1), 0},
		{"nan becomes failure", Ok("a", math.NaN()), Neutral},
		{"failure uses default", Fail("a", errors.New("boom")), Neutral},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Or(Neutral)
			if got.Value != tc.want || got.Name != "a" {
				t.Fatalf("Or = %+v, want a=%v", got, tc.want)
			}
		})
	}
	if !Fail("x", nil).Failed() {
		t.Fatalf("Fail with nil error must still be a failure")
	}
}

func TestWeights_Fuse(t *testing.T) {
	ws := Weights{{"a", 0.5}, {"b", 0.25}, {"c", 0.25}}
	if ws.Sum() != 1 {
		t.Fatalf("Sum = %v", ws.Sum())
	}
	got := ws.Fuse(Score{"a", 1}, Score{"b", 0}, Score{"c", 1}, Score{"ignored", 1})
	if got != 0.75 {
		t.Fatalf("Fuse = %v, want 0.75", got)
	}
	// missing entries fall back to neutral
	if got := ws.Fuse(Score{"a", 1}); got != 0.5+0.25*Neutral*2 {
		t.Fatalf("Fuse with missing = %v", got)
	}
	if ws.Of("b") != 0.25 || ws.Of("zzz") != 0 {
		t.Fatalf("Of lookup mismatch")
	}
}

func TestSteps_At(t *testing.T) {
	s := Steps{Points: []Step{{10, 0.3}, {50, 0.6}, {200, 0.8}}, Else: 0.9}
	cases := map[float64]float64{0: 0.3, 9: 0.3, 10: 0.6, 49: 0.6, 50: 0.8, 199: 0.8, 200: 0.9, 1e9: 0.9}
	for in, want := range cases {
		if got := s.At(in); got != want {
			t.Fatalf("At(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestGuardAndFallback(t *testing.T) {
	res := Guard(func() Result { panic("nope") })
	if res.AIProbability != 0.5 || res.Confidence != 0.3 || res.Analysis.Method() != MethodFallback {
		t.Fatalf("Guard did not produce fallback: %+v", res)
	}

	ok := Guard(func() Result {
		return Result{AIProbability: 0.1, Confidence: 0.2, Analysis: Analysis{"method": MethodBasic}}
	})
	if ok.Analysis.Method() != MethodBasic {
		t.Fatalf("Method() = %q", ok.Analysis.Method())
	}
	var nilA Analysis
	if nilA.Method() != "" {
		t.Fatalf("nil analysis method should be empty")
	}
}
