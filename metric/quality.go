// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import "math"

// triQualityConst normalises TriangleQuality to 1 for an equilateral
// triangle: C = 4*sqrt(3)
const triQualityConst = 4 * 1.7320508075688772

// tetQualityConst normalises TetQuality to 1 for a regular tetrahedron:
// q = C * (3V)^(2/3) / sum(l_i^2), C = 12
const tetQualityConst = 12.0

// TriangleQuality returns the dimensionless quality in [0, 1] of a
// triangle (p0,p1,p2) with per-vertex metrics (M0,M1,M2): metric area over
// the sum of squared metric edge lengths, normalised so the regular simplex
// in the local metric is 1 and a degenerate triangle is 0. The area is
// unsigned, so an inverted triangle is not told apart from its mirror
// image and gets a positive quality.
func TriangleQuality(p0, p1, p2 []float64, M0, M1, M2 Tensor) float64 {
	l01 := EdgeRatioLen(p0, p1, M0, M1)
	l12 := EdgeRatioLen(p1, p2, M1, M2)
	l20 := EdgeRatioLen(p2, p0, M2, M0)
	sumSq := l01*l01 + l12*l12 + l20*l20
	if sumSq <= 0 {
		return 0
	}
	area := signedArea(p0, p1, p2)
	avg := avgTensor3(M0, M1, M2)
	sqrtDet := math.Sqrt(math.Abs(avg.Det()))
	metricArea := sqrtDet * area
	return triQualityConst * metricArea / sumSq
}

// TetQuality returns the dimensionless quality in (-inf, 1] of a
// tetrahedron (p0,p1,p2,p3) with per-vertex metrics, normalised so a
// regular tetrahedron in the local metric is 1.
func TetQuality(p0, p1, p2, p3 []float64, M0, M1, M2, M3 Tensor) float64 {
	edges := [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	pts := [4][]float64{p0, p1, p2, p3}
	mets := [4]Tensor{M0, M1, M2, M3}
	var sumSq float64
	for _, e := range edges {
		l := EdgeRatioLen(pts[e[0]], pts[e[1]], mets[e[0]], mets[e[1]])
		sumSq += l * l
	}
	if sumSq <= 0 {
		return 0
	}
	vol := signedVolume(p0, p1, p2, p3)
	avg := avgTensor4(M0, M1, M2, M3)
	sqrtDet := math.Sqrt(math.Abs(avg.Det()))
	metricVol := sqrtDet * vol
	// preserve sign through the 2/3 power so an inverted tet (metricVol<0)
	// yields a negative quality ("≤0 is inverted")
	mag := math.Cbrt((3 * math.Abs(metricVol)) * (3 * math.Abs(metricVol)))
	if metricVol < 0 {
		mag = -mag
	}
	return tetQualityConst * mag / sumSq
}

// TetComplexity returns sqrt(det(avg metric))*|volume| for tetrahedron
// (p0,p1,p2,p3): the per-cell contribution to the adaptation driver's
// survey-pass total metric complexity, a standard node-count estimator for
// anisotropic remeshing (summed and divided by nodes-per-cell across every
// tet to approximate the node count the current metric field implies).
func TetComplexity(p0, p1, p2, p3 []float64, M0, M1, M2, M3 Tensor) float64 {
	avg := avgTensor4(M0, M1, M2, M3)
	sqrtDet := math.Sqrt(math.Abs(avg.Det()))
	return sqrtDet * math.Abs(signedVolume(p0, p1, p2, p3))
}

// EdgeRatioLen returns the logarithmic-mean metric length of edge (xA,xB),
// the same value EdgeRatio returns (the unit target makes the ratio and the
// raw metric length coincide); used as the "l_i" term of the quality
// formulas above.
func EdgeRatioLen(xA, xB []float64, MA, MB Tensor) float64 {
	return EdgeRatio(xA, xB, MA, MB)
}

func avgTensor3(a, b, c Tensor) Tensor {
	return Tensor{
		M11: (a.M11 + b.M11 + c.M11) / 3, M12: (a.M12 + b.M12 + c.M12) / 3, M13: (a.M13 + b.M13 + c.M13) / 3,
		M22: (a.M22 + b.M22 + c.M22) / 3, M23: (a.M23 + b.M23 + c.M23) / 3,
		M33: (a.M33 + b.M33 + c.M33) / 3,
	}
}

func avgTensor4(a, b, c, d Tensor) Tensor {
	return Tensor{
		M11: (a.M11 + b.M11 + c.M11 + d.M11) / 4, M12: (a.M12 + b.M12 + c.M12 + d.M12) / 4, M13: (a.M13 + b.M13 + c.M13 + d.M13) / 4,
		M22: (a.M22 + b.M22 + c.M22 + d.M22) / 4, M23: (a.M23 + b.M23 + c.M23 + d.M23) / 4,
		M33: (a.M33 + b.M33 + c.M33 + d.M33) / 4,
	}
}

// signedArea returns the unsigned area (half the cross-product norm) of a
// triangle embedded in R3
func signedArea(p0, p1, p2 []float64) float64 {
	var u, v [3]float64
	for i := 0; i < 3; i++ {
		u[i] = p1[i] - p0[i]
		v[i] = p2[i] - p0[i]
	}
	c := cross(u[:], v[:])
	return 0.5 * norm3(c)
}

// signedVolume returns the signed volume of tetrahedron (p0,p1,p2,p3); its
// sign flips when the tet is inverted
func signedVolume(p0, p1, p2, p3 []float64) float64 {
	var a, b, c [3]float64
	for i := 0; i < 3; i++ {
		a[i] = p1[i] - p0[i]
		b[i] = p2[i] - p0[i]
		c[i] = p3[i] - p0[i]
	}
	cx := cross(b[:], c[:])
	dot := a[0]*cx[0] + a[1]*cx[1] + a[2]*cx[2]
	return dot / 6
}
