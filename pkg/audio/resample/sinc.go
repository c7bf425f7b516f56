// ABOUTME: Windowed-sinc filter table construction
// ABOUTME: Builds quantized Blackman-windowed kernels, one row per fractional position
package resample

import "math"

// tableResolution is the number of quantized fractional positions. Rows are
// indexed 0..tableResolution inclusive so a fractional offset rounding up to
// 1.0 still lands on a valid row.
const tableResolution = 1024

// buildSincTable precomputes the interpolation kernels. Each row holds
// filterLength coefficients for one quantized fractional position. cutoff is
// min(1, ratio): below 1 it scales both the kernel argument and the
// coefficients so downsampling low-passes at the output Nyquist.
//
// Rows are normalized to unit DC gain, which keeps amplitude flat across
// fractional positions.
func buildSincTable(filterLength int, cutoff float64) [][]float64 {
	half := filterLength / 2
	table := make([][]float64, tableResolution+1)

	for q := 0; q <= tableResolution; q++ {
		frac := float64(q) / tableResolution
		row := make([]float64, filterLength)

		var sum float64
		for j := 0; j < filterLength; j++ {
			// Distance from the interpolation point to this tap. Taps sit
			// at integer offsets -(half-1)..half around the base index.
			d := frac + float64(half-1-j)
			coef := cutoff * sinc(cutoff*d) * blackman(d/float64(half))
			row[j] = coef
			sum += coef
		}

		if sum != 0 {
			inv := 1 / sum
			for j := range row {
				row[j] *= inv
			}
		}
		table[q] = row
	}
	return table
}

// sinc is the normalized sinc function sin(πx)/(πx).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// blackman evaluates the Blackman window at u in [-1, 1], zero outside.
func blackman(u float64) float64 {
	if u < -1 || u > 1 {
		return 0
	}
	return 0.42 + 0.5*math.Cos(math.Pi*u) + 0.08*math.Cos(2*math.Pi*u)
}
