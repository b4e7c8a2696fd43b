package imagedetect

import (
	"image"
	"math"
	"sync"

	"genscan/internal/core/signal"
	perr "genscan/internal/platform/errors"

	"github.com/anthonynsimon/bild/parallel"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// channelStats accumulates per channel sums for six 8 bit channels: H S V L a b
type channelStats struct {
	n     float64
	sum   [6]float64
	sumSq [6]float64
}

func (s *channelStats) add(vals [6]float64) {
	s.n++
	for i, v := range vals {
		s.sum[i] += v
		s.sumSq[i] += v * v
	}
}

func (s *channelStats) merge(o *channelStats) {
	s.n += o.n
	for i := range s.sum {
		s.sum[i] += o.sum[i]
		s.sumSq[i] += o.sumSq[i]
	}
}

// std returns the population standard deviation of channel i
func (s *channelStats) std(i int) float64 {
	if s.n == 0 {
		return 0
	}
	mean := s.sum[i] / s.n
	v := s.sumSq[i]/s.n - mean*mean
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// to8 rounds and saturates to the 8 bit range
func to8(v float64) float64 {
	return math.Max(0, math.Min(255, math.Round(v)))
}

// hsvLab8 converts one pixel to 8 bit HSV (hue halved to 0..180) and 8 bit Lab
// (L scaled to 0..255, a and b offset by 128)
func hsvLab8(r, g, b uint8) [6]float64 {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}

	h, s, v := c.Hsv()
	hue := to8(h / 2)
	if hue >= 180 {
		hue -= 180
	}

	l, a, bb := c.Lab()
	return [6]float64{
		hue, to8(s * 255), to8(v * 255),
		to8(l * 255), to8(a*100 + 128), to8(bb*100 + 128),
	}
}

func colorStats(img *image.NRGBA) *channelStats {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var (
		mu    sync.Mutex
		total channelStats
	)
	parallel.Line(h, func(start, end int) {
		var local channelStats
		for y := start; y < end; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w*4]
			for x := 0; x < w; x++ {
				local.add(hsvLab8(row[x*4], row[x*4+1], row[x*4+2]))
			}
		}
		mu.Lock()
		total.merge(&local)
		mu.Unlock()
	})
	return &total
}

// artifact combines color uniformity across HSV and Lab with edge sparsity
func (c Config) artifact(img *image.NRGBA, g *plane) signal.Outcome {
	if g.w == 0 || g.h == 0 {
		return signal.Fail(ScoreArtifact, perr.Validationf("empty image"))
	}

	st := colorStats(img)
	hsvStd := (st.std(0) + st.std(1) + st.std(2)) / 3
	labStd := (st.std(3) + st.std(4) + st.std(5)) / 3
	uniformity := 1 - (hsvStd+labStd)/255

	edges := cannyCount(g, c.Artifact.CannyLow, c.Artifact.CannyHigh)
	density := float64(edges) / float64(g.w*g.h)

	a := c.Artifact
	return signal.Ok(ScoreArtifact, a.ColorWeight*uniformity+a.EdgeWeight*(1-density))
}
