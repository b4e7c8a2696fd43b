package imagedetect

// cannyCount runs Canny edge detection over an 8 bit gray plane and returns the
// number of edge pixels.
//
// The pipeline follows the classic 8 bit detector with a 3x3 aperture and no
// pre-blur:
//  1. Sobel gradients with replicated borders, L1 magnitude |gx|+|gy|
//  2. non-maximum suppression along the quantized gradient direction
//  3. hysteresis: magnitude > high seeds an edge, magnitude > low extends it
//     through 8-connected neighbours
func cannyCount(g *plane, low, high float64) int {
	w, h := g.w, g.h
	if w == 0 || h == 0 {
		return 0
	}

	mag := make([]float64, w*h)
	gxs := make([]float64, w*h)
	gys := make([]float64, w*h)

	for y := 0; y < h; y++ {
		y0, y2 := clamp(y-1, 0, h-1), clamp(y+1, 0, h-1)
		for x := 0; x < w; x++ {
			x0, x2 := clamp(x-1, 0, w-1), clamp(x+1, 0, w-1)

			gx := (g.at(x2, y0) + 2*g.at(x2, y) + g.at(x2, y2)) -
				(g.at(x0, y0) + 2*g.at(x0, y) + g.at(x0, y2))
			gy := (g.at(x0, y2) + 2*g.at(x, y2) + g.at(x2, y2)) -
				(g.at(x0, y0) + 2*g.at(x, y0) + g.at(x2, y0))

			i := y*w + x
			gxs[i], gys[i] = gx, gy
			mag[i] = abs(gx) + abs(gy)
		}
	}

	magAt := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	// tan(22.5) and tan(67.5) split the four direction sectors
	const (
		tan22 = 0.4142135623730951
		tan67 = 2.414213562373095
	)

	const (
		none uint8 = iota
		weak
		strong
	)
	state := make([]uint8, w*h)
	stack := make([]int, 0, 64)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			ax, ay := abs(gxs[i]), abs(gys[i])
			var n1, n2 float64
			switch {
			case ay <= ax*tan22: // horizontal gradient, compare left and right
				n1, n2 = magAt(x-1, y), magAt(x+1, y)
			case ay >= ax*tan67: // vertical gradient, compare up and down
				n1, n2 = magAt(x, y-1), magAt(x, y+1)
			case (gxs[i] > 0) == (gys[i] > 0): // main diagonal
				n1, n2 = magAt(x-1, y-1), magAt(x+1, y+1)
			default: // anti diagonal
				n1, n2 = magAt(x+1, y-1), magAt(x-1, y+1)
			}
			if m <= n1 || m < n2 {
				continue
			}

			if m > high {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	// grow strong edges through weak neighbours
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == weak {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	count := 0
	for _, s := range state {
		if s == strong {
			count++
		}
	}
	return count
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// clamp constrains an integer to [lo, hi]
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
