// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/refmesh/metric"
)

func TestSpatialIndexFindsExistingNode(tst *testing.T) {
	chk.PrintTitle("SpatialIndexFindsExistingNode")
	s := NewNodeStore()
	m := metric.Identity()
	a := s.Add(0, [3]float64{0, 0, 0}, m, 0)
	s.Add(1, [3]float64{1, 0, 0}, m, 0)
	s.Add(2, [3]float64{0.5, 0.5, 0}, m, 0)

	idx := BuildSpatialIndex(s, [3]float64{-1, -1, -1}, [3]float64{2, 2, 2}, 10)

	L, ok := idx.FindNear([3]float64{0, 0, 0})
	if !ok {
		tst.Fatalf("expected to find a node at the origin")
	}
	if L != a {
		tst.Errorf("expected local index %d, got %d", a, L)
	}
}

func TestSpatialIndexSkipsFreedNodes(tst *testing.T) {
	chk.PrintTitle("SpatialIndexSkipsFreedNodes")
	s := NewNodeStore()
	m := metric.Identity()
	a := s.Add(0, [3]float64{0, 0, 0}, m, 0)
	s.Remove(a)
	s.Add(1, [3]float64{5, 5, 5}, m, 0)

	idx := BuildSpatialIndex(s, [3]float64{-1, -1, -1}, [3]float64{6, 6, 6}, 10)

	if _, ok := idx.FindNear([3]float64{0, 0, 0}); ok {
		tst.Errorf("expected no match near a freed node's old position")
	}
}
