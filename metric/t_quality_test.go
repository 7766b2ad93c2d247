// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestTriangleQualityEquilateral(tst *testing.T) {
	chk.PrintTitle("TriangleQualityEquilateral")
	p0 := []float64{0, 0, 0}
	p1 := []float64{1, 0, 0}
	p2 := []float64{0.5, math.Sqrt(3) / 2, 0}
	u := Identity()
	q := TriangleQuality(p0, p1, p2, u, u, u)
	chk.Scalar(tst, "q", 1e-9, q, 1.0)
}

func TestTriangleQualityDegenerate(tst *testing.T) {
	chk.PrintTitle("TriangleQualityDegenerate")
	p0 := []float64{0, 0, 0}
	p1 := []float64{1, 0, 0}
	p2 := []float64{2, 0, 0} // collinear: zero area
	u := Identity()
	q := TriangleQuality(p0, p1, p2, u, u, u)
	if q > 1e-6 {
		tst.Errorf("degenerate triangle should have ~0 quality, got %v", q)
	}
}

func TestTetQualityRegular(tst *testing.T) {
	chk.PrintTitle("TetQualityRegular")
	// regular tetrahedron with edge length 1
	p0 := []float64{0, 0, 0}
	p1 := []float64{1, 0, 0}
	p2 := []float64{0.5, math.Sqrt(3) / 2, 0}
	h := math.Sqrt(2.0 / 3.0)
	cx := 0.5
	cy := math.Sqrt(3) / 6
	p3 := []float64{cx, cy, h}
	u := Identity()
	q := TetQuality(p0, p1, p2, p3, u, u, u, u)
	chk.Scalar(tst, "q", 1e-6, q, 1.0)
}

func TestTetQualityInverted(tst *testing.T) {
	chk.PrintTitle("TetQualityInverted")
	p0 := []float64{0, 0, 0}
	p1 := []float64{1, 0, 0}
	p2 := []float64{0.5, math.Sqrt(3) / 2, 0}
	h := math.Sqrt(2.0 / 3.0)
	p3 := []float64{0.5, math.Sqrt(3) / 6, -h} // flipped to the other side
	u := Identity()
	q := TetQuality(p0, p1, p2, p3, u, u, u, u)
	if q >= 0 {
		tst.Errorf("inverted tet should have negative quality, got %v", q)
	}
}

func TestNormalDeviationAligned(tst *testing.T) {
	chk.PrintTitle("NormalDeviationAligned")
	p0 := []float64{0, 0, 0}
	p1 := []float64{1, 0, 0}
	p2 := []float64{0, 1, 0}
	n := TriangleNormal(p0, p1, p2)
	cadN := [3]float64{0, 0, 1}
	d := NormalDeviation(n, cadN, 1.0)
	chk.Scalar(tst, "d", 1e-12, d, 1.0)
}
