package timing

// fitLinear computes the least-squares slope and intercept for y = m*x + b.
// Fewer than two points falls back to (1.0, -0.001), the same degenerate
// case the original fit routine reports when a block has too few
// fit-eligible packets to constrain a line.
func fitLinear(xs, ys []float64) (m, b float64) {
	n := len(xs)
	if n < 2 {
		return 1.0, -0.001
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 1.0, -0.001
	}

	m = (nf*sumXY - sumX*sumY) / denom
	b = (sumY - m*sumX) / nf

	return m, b
}
