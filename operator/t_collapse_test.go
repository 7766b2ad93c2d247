// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/config"
	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
)

// collapseScenario builds node D of a regular unit tet (A,B,C,D), plus a
// second regular unit tet (F,G,H,I) translated so F sits `offset` away from
// D along x. Collapsing F onto D exercises the "updating tet" path: F's tet
// shares no other nodes with D's tet.
func collapseScenario(offset float64) (ctx *Context, keep, remove int) {
	nodes := mesh.NewNodeStore()
	cells := mesh.NewCellStore(nodes)
	cad := cadgeom.NewStore()
	u := metric.Identity()
	sqrt3 := math.Sqrt(3)
	h := math.Sqrt(2.0 / 3.0)

	A := nodes.Add(0, [3]float64{0, 0, 0}, u, 0)
	B := nodes.Add(1, [3]float64{1, 0, 0}, u, 0)
	C := nodes.Add(2, [3]float64{0.5, sqrt3 / 2, 0}, u, 0)
	D := nodes.Add(3, [3]float64{0.5, sqrt3 / 6, h}, u, 0)
	cells.Add(mesh.Tet, []int{A, B, C, D}, -1)

	base := [3]float64{0.5 + offset, sqrt3 / 6, h}
	F := nodes.Add(4, base, u, 0)
	G := nodes.Add(5, [3]float64{base[0] + 1, base[1], base[2]}, u, 0)
	H := nodes.Add(6, [3]float64{base[0] + 0.5, base[1] + sqrt3/2, base[2]}, u, 0)
	I := nodes.Add(7, [3]float64{base[0] + 0.5, base[1] + sqrt3/6, base[2] + h}, u, 0)
	cells.Add(mesh.Tet, []int{F, G, H, I}, -1)

	ctx = NewContext(nodes, cells, cad, cadgeom.FreeOracle{}, config.Default(), 100)
	return ctx, D, F
}

func TestCollapseDeclinesAboveRatioThreshold(tst *testing.T) {
	chk.PrintTitle("CollapseDeclinesAboveRatioThreshold")
	ctx, keep, remove := collapseScenario(2.0) // ratio 2, above collapse threshold
	st := Collapse(ctx, keep, remove, 0)
	if !st.IsDeclined() {
		tst.Errorf("expected a decline, got %v: %s", st.Kind, st.Reason)
	}
}

func TestCollapseCommitsAndRewiresUpdatingCell(tst *testing.T) {
	chk.PrintTitle("CollapseCommitsAndRewiresUpdatingCell")
	ctx, keep, remove := collapseScenario(0.01) // ratio ~0.01, well under threshold
	nBefore := ctx.Nodes.NumValid()
	tetsBefore := ctx.Cells.NumValid(mesh.Tet)

	st := Collapse(ctx, keep, remove, 0)
	if !st.IsOk() {
		tst.Fatalf("expected collapse to commit, got %v: %s", st.Kind, st.Reason)
	}
	if ctx.Nodes.NumValid() != nBefore-1 {
		tst.Errorf("expected one fewer node, went from %d to %d", nBefore, ctx.Nodes.NumValid())
	}
	if ctx.Cells.NumValid(mesh.Tet) != tetsBefore {
		tst.Errorf("updating tet should be rewired in place, not removed: want %d got %d", tetsBefore, ctx.Cells.NumValid(mesh.Tet))
	}
	if ctx.Nodes.Valid(remove) {
		tst.Errorf("removed node should no longer be valid")
	}
	if len(ctx.Cells.CellsAt(mesh.Tet, keep)) != 2 {
		tst.Errorf("keep node should now be incident to both tets")
	}
}

func TestCollapseDeclinesOnPinnedCADNode(tst *testing.T) {
	chk.PrintTitle("CollapseDeclinesOnPinnedCADNode")
	ctx, keep, remove := collapseScenario(0.01)
	ctx.CAD.Add(remove, cadgeom.Record{Type: cadgeom.NodeEntity, ID: 1})
	st := Collapse(ctx, keep, remove, 0)
	if !st.IsDeclined() {
		tst.Errorf("expected a decline on pinned CAD node, got %v: %s", st.Kind, st.Reason)
	}
}
