// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cadgeom

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestStoreAddRemove(tst *testing.T) {
	chk.PrintTitle("StoreAddRemove")
	s := NewStore()
	s.Add(0, Record{Type: EdgeEntity, ID: 3, Param: [2]float64{0.5, 0}})
	s.Add(0, Record{Type: FaceEntity, ID: 7, Param: [2]float64{0.1, 0.2}})
	if !s.HasType(0, EdgeEntity) || !s.HasType(0, FaceEntity) {
		tst.Errorf("expected both EDGE and FACE records on node 0")
	}
	if t, ok := s.EdgeParam(0, 3); !ok || t != 0.5 {
		tst.Errorf("expected edge param 0.5, got %v ok=%v", t, ok)
	}
	s.Remove(0)
	if len(s.Records(0)) != 0 {
		tst.Errorf("expected no records after Remove")
	}
}

func TestInterpolateEdge(tst *testing.T) {
	chk.PrintTitle("InterpolateEdge")
	a := Record{Type: EdgeEntity, ID: 5, Param: [2]float64{0, 0}}
	b := Record{Type: EdgeEntity, ID: 5, Param: [2]float64{1, 0}, Jump: 2.0}
	mid := InterpolateEdge(a, b, 0.25)
	chk.Scalar(tst, "t", 1e-15, mid.Param[0], 0.25)
	chk.Scalar(tst, "jump", 1e-15, mid.Jump, 2.0)
}

func TestFreeOracleRoundTrip(tst *testing.T) {
	chk.PrintTitle("FreeOracleRoundTrip")
	o := FreeOracle{}
	res, err := o.Evaluate(FaceEntity, 1, [2]float64{0.3, 0.4})
	if err != nil {
		tst.Fatal(err)
	}
	if res.XYZ != [3]float64{} {
		tst.Errorf("expected zero XYZ from free oracle, got %v", res.XYZ)
	}
	topo, err := o.FaceTopology(1)
	if err != nil || topo.UMax != 1 {
		tst.Errorf("expected the unit [0,1]x[0,1] face topology, got %+v err=%v", topo, err)
	}
}
