package imagedetect

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// plane is a single channel float image in row major order
type plane struct {
	w, h int
	pix  []float64
}

func newPlane(w, h int) *plane {
	return &plane{w: w, h: h, pix: make([]float64, w*h)}
}

func (p *plane) at(x, y int) float64 { return p.pix[y*p.w+x] }

func (p *plane) mean() float64 {
	if len(p.pix) == 0 {
		return 0
	}
	var s float64
	for _, v := range p.pix {
		s += v
	}
	return s / float64(len(p.pix))
}

// grayPlane converts to 8 bit luma with BT.601 weights in 14 bit fixed point,
// rounding the way 8 bit color conversions do
func grayPlane(img *image.NRGBA) *plane {
	b := img.Bounds()
	g := newPlane(b.Dx(), b.Dy())

	const (
		wr    = 4899 // 0.299 << 14
		wg    = 9617 // 0.587 << 14
		wb    = 1868 // 0.114 << 14
		shift = 14
	)

	parallel.Line(g.h, func(start, end int) {
		for y := start; y < end; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+g.w*4]
			for x := 0; x < g.w; x++ {
				r, gg, bb := int(row[x*4]), int(row[x*4+1]), int(row[x*4+2])
				g.pix[y*g.w+x] = float64((r*wr + gg*wg + bb*wb + (1 << (shift - 1))) >> shift)
			}
		}
	})
	return g
}

// reflect101 maps an out of range index back into [0,n) mirroring around the
// edge pixels without repeating them
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// boxMean is a k x k normalized box filter with reflect-101 borders
func boxMean(src *plane, k int) *plane {
	r := k / 2
	norm := 1 / float64(k*k)

	// horizontal pass
	tmp := newPlane(src.w, src.h)
	parallel.Line(src.h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < src.w; x++ {
				var s float64
				for dx := -r; dx <= r; dx++ {
					s += src.at(reflect101(x+dx, src.w), y)
				}
				tmp.pix[y*src.w+x] = s
			}
		}
	})

	// vertical pass
	out := newPlane(src.w, src.h)
	parallel.Line(src.h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < src.w; x++ {
				var s float64
				for dy := -r; dy <= r; dy++ {
					s += tmp.at(x, reflect101(y+dy, src.h))
				}
				out.pix[y*src.w+x] = s * norm
			}
		}
	})
	return out
}
