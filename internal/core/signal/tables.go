package signal

// Weight is one named term of a fusion
type Weight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Weights is an ordered fusion table
type Weights []Weight

// Sum adds the weights in table order
func (ws Weights) Sum() float64 {
	var s float64
	for _, w := range ws {
		s += w.Weight
	}
	return s
}

// Of returns the weight for name, or 0
func (ws Weights) Of(name string) float64 {
	for _, w := range ws {
		if w.Name == name {
			return w.Weight
		}
	}
	return 0
}

// Fuse combines the scores with the table weights and clamps to [0,1]
// scores missing from the table contribute nothing; table entries without a score use Neutral
func (ws Weights) Fuse(scores ...Score) float64 {
	byName := make(map[string]float64, len(scores))
	for _, s := range scores {
		byName[s.Name] = s.Value
	}
	var acc float64
	for _, w := range ws {
		v, ok := byName[w.Name]
		if !ok {
			v = Neutral
		}
		acc += v * w.Weight
	}
	return Clamp01(acc)
}

// Step maps every input strictly below Below to Value
type Step struct {
	Below float64 `json:"below"`
	Value float64 `json:"value"`
}

// Steps is an ascending step function with a catch-all Else
type Steps struct {
	Points []Step  `json:"points"`
	Else   float64 `json:"else"`
}

// At evaluates the step function
func (s Steps) At(x float64) float64 {
	for _, p := range s.Points {
		if x < p.Below {
			return p.Value
		}
	}
	return s.Else
}
