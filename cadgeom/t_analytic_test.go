// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cadgeom

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// planeFace returns an AnalyticFace implementing the flat plane z=0 over
// u,v in [0,1]x[0,1]: x(u,v)=u, y(u,v)=v, z(u,v)=0.
func planeFace() AnalyticFace {
	return AnalyticFace{
		Fx:   identityFunc{axis: 0},
		Fy:   identityFunc{axis: 1},
		Fz:   fun.New("cte", fun.Prms{&fun.Prm{N: "c", V: 0}}),
		UMax: 1, VMax: 1,
	}
}

// identityFunc is a tiny fun.Func stand-in returning its u or v argument
// unchanged, for faces whose x(u,v)=u or y(u,v)=v exactly — simpler than
// composing two "lin" expressions through fun.New for a plain coordinate
// projection.
type identityFunc struct{ axis int }

func (f identityFunc) F(t float64, x []float64) float64 {
	if f.axis == 0 {
		return t
	}
	return x[0]
}

func TestAnalyticOracleEvaluatesPlaneFace(tst *testing.T) {
	chk.PrintTitle("AnalyticOracleEvaluatesPlaneFace")
	o := NewAnalyticOracle()
	o.Faces[1] = planeFace()

	ev, err := o.Evaluate(FaceEntity, 1, [2]float64{0.3, 0.7})
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	want := [3]float64{0.3, 0.7, 0}
	for i := 0; i < 3; i++ {
		if diff := ev.XYZ[i] - want[i]; diff > 1e-12 || diff < -1e-12 {
			tst.Errorf("axis %d: got %.6f want %.6f", i, ev.XYZ[i], want[i])
		}
	}
}

func TestAnalyticOracleInverseEvaluateFindsPlanePoint(tst *testing.T) {
	chk.PrintTitle("AnalyticOracleInverseEvaluateFindsPlanePoint")
	o := NewAnalyticOracle()
	o.Faces[1] = planeFace()

	res, err := o.InverseEvaluate(FaceEntity, 1, [3]float64{0.42, 0.17, 0}, nil)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if !res.InRange {
		tst.Errorf("expected the target point to fall inside the face's parameter range")
	}
	if diff := res.Param[0] - 0.42; diff > 1e-4 || diff < -1e-4 {
		tst.Errorf("u: got %.6f want 0.42", res.Param[0])
	}
	if diff := res.Param[1] - 0.17; diff > 1e-4 || diff < -1e-4 {
		tst.Errorf("v: got %.6f want 0.17", res.Param[1])
	}
}

func TestAnalyticOracleUnknownFaceErrors(tst *testing.T) {
	chk.PrintTitle("AnalyticOracleUnknownFaceErrors")
	o := NewAnalyticOracle()
	if _, err := o.Evaluate(FaceEntity, 99, [2]float64{0, 0}); err == nil {
		tst.Errorf("expected an error for an unregistered face id")
	}
}
