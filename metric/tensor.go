// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metric implements the geometric primitives of mesh adaptation:
// edge ratio in a Riemannian metric, simplex quality, normal deviation,
// and the small dense SPD matrix operations the node metric tensor needs.
package metric

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// Tensor holds the six unique entries of a symmetric positive-definite 3x3
// metric tensor in upper-triangular order.
type Tensor struct {
	M11, M12, M13, M22, M23, M33 float64
}

// Identity returns the unit metric (isotropic, unit edge length target)
func Identity() Tensor {
	return Tensor{M11: 1, M22: 1, M33: 1}
}

// Full expands the six unique entries into the full symmetric 3x3 matrix
func (t Tensor) Full() (m [3][3]float64) {
	m[0][0], m[0][1], m[0][2] = t.M11, t.M12, t.M13
	m[1][0], m[1][1], m[1][2] = t.M12, t.M22, t.M23
	m[2][0], m[2][1], m[2][2] = t.M13, t.M23, t.M33
	return
}

// Det returns det(M) via the standard 3x3 cofactor expansion
func (t Tensor) Det() float64 {
	return t.M11*(t.M22*t.M33-t.M23*t.M23) -
		t.M12*(t.M12*t.M33-t.M23*t.M13) +
		t.M13*(t.M12*t.M23-t.M22*t.M13)
}

// QuadForm returns dxᵀ M dx for a displacement vector dx (length 3)
func (t Tensor) QuadForm(dx []float64) float64 {
	m := t.Full()
	var v [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v[i] += m[i][j] * dx[j]
		}
	}
	var s float64
	for i := 0; i < 3; i++ {
		s += dx[i] * v[i]
	}
	return s
}

// Lerp linearly interpolates two metric tensors; used by split
// to seed the new node's metric before any reconstruction pass refines it.
func Lerp(a, b Tensor, s float64) Tensor {
	return Tensor{
		M11: a.M11 + s*(b.M11-a.M11),
		M12: a.M12 + s*(b.M12-a.M12),
		M13: a.M13 + s*(b.M13-a.M13),
		M22: a.M22 + s*(b.M22-a.M22),
		M23: a.M23 + s*(b.M23-a.M23),
		M33: a.M33 + s*(b.M33-a.M33),
	}
}

// Inverse returns M^-1 using gosl/la's dense matrix inverse.
func (t Tensor) Inverse() (inv Tensor, err error) {
	m := t.Full()
	a := la.MatAlloc(3, 3)
	b := la.MatAlloc(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a[i][j] = m[i][j]
		}
	}
	_, err = la.MatInv(b, a, 1e-14)
	if err != nil {
		return
	}
	inv = Tensor{M11: b[0][0], M12: b[0][1], M13: b[0][2], M22: b[1][1], M23: b[1][2], M33: b[2][2]}
	return
}

// Eigen returns the three eigenvalues (ascending) of the metric tensor
// and their eigenvectors, via the closed-form trigonometric solution for
// symmetric 3x3 matrices (Smith, 1961).
func (t Tensor) Eigen() (vals [3]float64, vecs [3][3]float64, err error) {
	m := t.Full()
	p1 := t.M12*t.M12 + t.M13*t.M13 + t.M23*t.M23
	q := (t.M11 + t.M22 + t.M33) / 3
	p2 := (t.M11-q)*(t.M11-q) + (t.M22-q)*(t.M22-q) + (t.M33-q)*(t.M33-q) + 2*p1
	p := math.Sqrt(p2 / 6)
	if p < 1e-300 {
		// already diagonal (isotropic)
		vals = [3]float64{t.M11, t.M22, t.M33}
		vecs = [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		return
	}
	var b [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d := 0.0
			if i == j {
				d = q
			}
			b[i][j] = (m[i][j] - d) / p
		}
	}
	detB := b[0][0]*(b[1][1]*b[2][2]-b[1][2]*b[2][1]) -
		b[0][1]*(b[1][0]*b[2][2]-b[1][2]*b[2][0]) +
		b[0][2]*(b[1][0]*b[2][1]-b[1][1]*b[2][0])
	r := detB / 2
	if r > 1 {
		r = 1
	}
	if r < -1 {
		r = -1
	}
	phi := math.Acos(r) / 3
	eig1 := q + 2*p*math.Cos(phi)
	eig3 := q + 2*p*math.Cos(phi+2*math.Pi/3)
	eig2 := 3*q - eig1 - eig3
	vals = [3]float64{eig3, eig2, eig1} // ascending

	// eigenvectors via (M - λI) null space, cross-product method
	for k, lam := range vals {
		a := la.MatAlloc(3, 3)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				d := 0.0
				if i == j {
					d = lam
				}
				a[i][j] = m[i][j] - d
			}
		}
		r0 := cross(a[0], a[1])
		r1 := cross(a[0], a[2])
		r2 := cross(a[1], a[2])
		best := r0
		bestNorm := norm3(r0)
		if n := norm3(r1); n > bestNorm {
			best, bestNorm = r1, n
		}
		if n := norm3(r2); n > bestNorm {
			best, bestNorm = r2, n
		}
		if bestNorm < 1e-300 {
			best = [3]float64{0, 0, 0}
			best[k] = 1
			bestNorm = 1
		}
		for i := 0; i < 3; i++ {
			vecs[k][i] = best[i] / bestNorm
		}
	}
	return
}

func cross(a, b []float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm3(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// IsSPD reports whether all three eigenvalues are strictly positive (within
// tol), the precondition every node metric must satisfy.
func (t Tensor) IsSPD(tol float64) bool {
	vals, _, err := t.Eigen()
	if err != nil {
		return false
	}
	for _, v := range vals {
		if v <= tol {
			return false
		}
	}
	return true
}
