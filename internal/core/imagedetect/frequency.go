package imagedetect

import (
	"math"
	"math/cmplx"

	"genscan/internal/core/signal"
	perr "genscan/internal/platform/errors"

	"github.com/anthonynsimon/bild/parallel"
	"gonum.org/v1/gonum/dsp/fourier"
)

// spectrum2D returns the unnormalized 2D DFT of g, row major
func spectrum2D(g *plane) []complex128 {
	w, h := g.w, g.h
	out := make([]complex128, w*h)

	parallel.Line(h, func(start, end int) {
		fft := fourier.NewCmplxFFT(w)
		seq := make([]complex128, w)
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				seq[x] = complex(g.pix[y*w+x], 0)
			}
			fft.Coefficients(out[y*w:(y+1)*w], seq)
		}
	})

	parallel.Line(w, func(start, end int) {
		fft := fourier.NewCmplxFFT(h)
		col := make([]complex128, h)
		coef := make([]complex128, h)
		for x := start; x < end; x++ {
			for y := 0; y < h; y++ {
				col[y] = out[y*w+x]
			}
			fft.Coefficients(coef, col)
			for y := 0; y < h; y++ {
				out[y*w+x] = coef[y]
			}
		}
	})
	return out
}

// unshift maps an index in the centered spectrum back to the raw DFT index
func unshift(i, n int) int { return (i - n/2 + n) % n }

// windowMean averages log(|F|+1) over the centered box with half extents hy,hx
// in shifted coordinates
func windowMean(spectrum []complex128, w, h, hy, hx int) (float64, bool) {
	cy, cx := h/2, w/2
	var sum float64
	n := 0
	for sy := cy - hy; sy < cy+hy; sy++ {
		y := unshift(sy, h)
		for sx := cx - hx; sx < cx+hx; sx++ {
			x := unshift(sx, w)
			sum += math.Log(cmplx.Abs(spectrum[y*w+x]) + 1)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// frequency compares mean log magnitude in the wide window with the narrow one.
// The wide window contains the narrow one; that overlap is kept on purpose so
// scores stay comparable with earlier results
func (c Config) frequency(g *plane) signal.Outcome {
	f := c.Frequency
	spectrum := spectrum2D(g)

	high, ok := windowMean(spectrum, g.w, g.h, g.h/f.HighDiv, g.w/f.HighDiv)
	if !ok {
		return signal.Fail(ScoreFrequency, perr.Validationf("image %dx%d too small for high window", g.w, g.h))
	}
	// below LowDiv px a side the narrow window is empty; the failed outcome
	// resolves to neutral 0.5 rather than clamping a NaN ratio to 1.0
	low, ok := windowMean(spectrum, g.w, g.h, g.h/f.LowDiv, g.w/f.LowDiv)
	if !ok {
		return signal.Fail(ScoreFrequency, perr.Validationf("image %dx%d too small for low window", g.w, g.h))
	}

	return signal.Ok(ScoreFrequency, math.Min(1, high/(low+f.Epsilon)/f.Scale))
}
