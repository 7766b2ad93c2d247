// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import "math"

// EdgeRatio computes the metric-induced length ratio of an edge (xA, xB)
// given the node metrics MA, MB. The one-sided lengths are
// LA = sqrt(dxᵀ MA dx), LB = sqrt(dxᵀ MB dx); the result is their
// logarithmic mean, the unique symmetric mean compatible with treating
// length as exponentially interpolated along the edge (see DESIGN.md).
func EdgeRatio(xA, xB []float64, MA, MB Tensor) float64 {
	dx := make([]float64, 3)
	for i := range dx {
		dx[i] = xB[i] - xA[i]
	}
	LA := math.Sqrt(math.Max(MA.QuadForm(dx), 0))
	LB := math.Sqrt(math.Max(MB.QuadForm(dx), 0))
	return logMean(LA, LB)
}

// logMean returns the logarithmic mean of two positive numbers, falling
// back to the arithmetic mean when they are nearly equal (avoiding the
// 0/0 at LA==LB).
func logMean(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0.5 * (a + b)
	}
	if math.Abs(a-b) < 1e-9*math.Max(a, b) {
		return 0.5 * (a + b)
	}
	ratio := a / b
	if ratio <= 0 {
		return 0.5 * (a + b)
	}
	return (a - b) / math.Log(ratio)
}

// IsSplitCandidate reports whether an edge ratio strictly exceeds the split
// threshold
func IsSplitCandidate(ratio, splitThreshold float64) bool {
	return ratio > splitThreshold
}

// IsCollapseCandidate reports whether an edge ratio strictly falls below
// the collapse threshold
func IsCollapseCandidate(ratio, collapseThreshold float64) bool {
	return ratio < collapseThreshold
}
