package searcher

import "math"

// CSquared is the squared UCT exploration constant.
const CSquared = 2.0

// uct scores the children of a node visited N times.
type uct struct {
	numerator float64
}

func newUCT(cSquared float64, N float64) *uct {
	if N <= 0 {
		panic("cannot score children of an unvisited node")
	}
	return &uct{numerator: cSquared * math.Log(N)}
}

// evaluate returns q/n + sqrt(c^2*ln(N)/n). Unvisited children come first.
func (u uct) evaluate(q float64, n float64) float64 {
	if n == 0 {
		return math.Inf(1)
	}
	return q/n + math.Sqrt(u.numerator/n)
}
