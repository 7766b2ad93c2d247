// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import "math"

// TriangleNormal returns the unit normal of a triangle (p0,p1,p2) in R3,
// oriented by the right-hand rule on (p1-p0)x(p2-p0).
func TriangleNormal(p0, p1, p2 []float64) [3]float64 {
	var u, v [3]float64
	for i := 0; i < 3; i++ {
		u[i] = p1[i] - p0[i]
		v[i] = p2[i] - p0[i]
	}
	n := cross(u[:], v[:])
	ln := norm3(n)
	if ln < 1e-300 {
		return [3]float64{}
	}
	return [3]float64{n[0] / ln, n[1] / ln, n[2] / ln}
}

// NormalDeviation returns the signed cosine between a mesh triangle's
// normal and the CAD surface normal at the triangle's centroid, times the
// face's orientation sign. Values near 1 are aligned; <= 0
// is inverted.
func NormalDeviation(meshNormal, cadNormal [3]float64, orientationSign float64) float64 {
	dot := meshNormal[0]*cadNormal[0] + meshNormal[1]*cadNormal[1] + meshNormal[2]*cadNormal[2]
	return orientationSign * dot
}

// Centroid returns the average of n points (used to pick the (u,v) at
// which the CAD normal is sampled for NormalDeviation)
func Centroid(pts ...[]float64) []float64 {
	c := make([]float64, 3)
	for _, p := range pts {
		for i := 0; i < 3; i++ {
			c[i] += p[i]
		}
	}
	n := float64(len(pts))
	for i := range c {
		c[i] /= n
	}
	return c
}

// clamp01 clamps v to [0,1]
func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
