package report

import "math"

// epsilon is the machine epsilon for float64, the smallest increment that
// still nudges a binary representation like 10.004999999999999 across the
// half-cent boundary its decimal source sits on.
const epsilon = 2.220446049250313e-16

// Round2 rounds to two decimal places, half up. The epsilon adjustment
// compensates for binary floating point truncating decimal halves downward:
// without it Round2(10.005) would come out 10.00.
func Round2(v float64) float64 {
	return math.Round((v+epsilon)*100) / 100
}
