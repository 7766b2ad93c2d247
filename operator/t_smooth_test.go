// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/refmesh/mesh"
)

func TestSmoothInteriorMovesTowardIdealApex(tst *testing.T) {
	chk.PrintTitle("SmoothInteriorMovesTowardIdealApex")
	ctx, n := bipyramid()
	D := n[3]

	ideal := ctx.Nodes.Node(D).X
	ctx.Nodes.Node(D).X[0] += 0.1 // perturb off the regular-tet position

	st := SmoothInterior(ctx, D)
	if !st.IsOk() {
		tst.Fatalf("expected smoothing to improve the perturbed node, got %v: %s", st.Kind, st.Reason)
	}
	got := ctx.Nodes.Node(D).X
	for i := 0; i < 3; i++ {
		if diff := got[i] - ideal[i]; diff > 1e-9 || diff < -1e-9 {
			tst.Errorf("expected node to land back on the ideal apex, axis %d: got %.6f want %.6f", i, got[i], ideal[i])
		}
	}
}

func TestSmoothInteriorDeclinesWithNoIncidentTets(tst *testing.T) {
	chk.PrintTitle("SmoothInteriorDeclinesWithNoIncidentTets")
	ctx, _ := bipyramid()
	orphan := ctx.Nodes.Add(999, [3]float64{9, 9, 9}, ctx.Nodes.Node(0).M, 0)

	st := SmoothInterior(ctx, orphan)
	if !st.IsDeclined() {
		tst.Errorf("expected a decline for a node with no incident tets, got %v: %s", st.Kind, st.Reason)
	}
}

func TestSmoothNonsmoothDeclinesAtOptimum(tst *testing.T) {
	chk.PrintTitle("SmoothNonsmoothDeclinesAtOptimum")
	ctx, n := bipyramid()
	D := n[3]
	// D sits at the regular-tet apex, so its one incident quality is
	// already maximal: no projected-gradient step can raise it
	st := SmoothNonsmooth(ctx, D)
	if !st.IsDeclined() {
		tst.Errorf("expected a decline at the optimum, got %v: %s", st.Kind, st.Reason)
	}
	x := ctx.Nodes.Node(D).X
	want := [3]float64{0.5, 0.2886751345948129, 0.816496580927726}
	for i := 0; i < 3; i++ {
		if d := x[i] - want[i]; d > 1e-12 || d < -1e-12 {
			tst.Errorf("declined smooth must leave the node in place, axis %d: %.12f", i, x[i])
		}
	}
}

func TestSmoothNonsmoothImprovesPerturbedNode(tst *testing.T) {
	chk.PrintTitle("SmoothNonsmoothImprovesPerturbedNode")
	ctx, n := bipyramid()
	D := n[3]
	tet := ctx.Cells.CellsAt(mesh.Tet, D)[0]
	cavity := ctx.Cells.Cell(mesh.Tet, tet).Nodes
	qIdeal := cellQuality(ctx, mesh.Tet, cavity)

	ctx.Nodes.Node(D).X[0] += 0.15 // push the apex off the regular position
	qPerturbed := cellQuality(ctx, mesh.Tet, cavity)
	if qPerturbed >= qIdeal {
		tst.Fatal("perturbation should have lowered the quality")
	}

	st := SmoothNonsmooth(ctx, D)
	if !st.IsOk() {
		tst.Fatalf("expected the projected-gradient ascent to move the node, got %v: %s", st.Kind, st.Reason)
	}
	if got := cellQuality(ctx, mesh.Tet, cavity); got <= qPerturbed {
		tst.Errorf("expected quality to rise above %.6f, got %.6f", qPerturbed, got)
	}
}
