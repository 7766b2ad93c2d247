// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
)

func TestSplitDeclinesBelowRatioThreshold(tst *testing.T) {
	chk.PrintTitle("SplitDeclinesBelowRatioThreshold")
	ctx, n := bipyramid()
	// edge A-B has unit length, ratio 1, below the ~1.556 split threshold
	st := Split(ctx, n[0], n[1], 0)
	if !st.IsDeclined() {
		tst.Errorf("expected a decline, got %v: %s", st.Kind, st.Reason)
	}
}

func TestSplitCommitsAndBisectsCavity(tst *testing.T) {
	chk.PrintTitle("SplitCommitsAndBisectsCavity")
	ctx, n := bipyramid()
	A, B := n[0], n[1]

	// stretch A-B well past the split threshold and permit any resulting
	// quality, isolating the test from the exact post-split shape
	ctx.Nodes.Node(B).X[0] = 3.0
	ctx.Cfg.SplitQualityAbsolute = -1e6
	ctx.Cfg.SplitQualityRelative = -1e6

	nBefore := ctx.Nodes.NumValid()
	tetsBefore := ctx.Cells.NumValid(mesh.Tet)

	st := Split(ctx, A, B, 0)
	if !st.IsOk() {
		tst.Fatalf("expected split to commit, got %v: %s", st.Kind, st.Reason)
	}

	if ctx.Nodes.NumValid() != nBefore+1 {
		tst.Errorf("expected one new node, went from %d to %d", nBefore, ctx.Nodes.NumValid())
	}
	// each of the two tets touching (A,B) becomes two tets
	if got := ctx.Cells.NumValid(mesh.Tet); got != tetsBefore+2 {
		tst.Errorf("expected %d tets after split, got %d", tetsBefore+2, got)
	}
	if ctx.Cells.DegreeWith2(mesh.Tet, A, B) != 0 {
		tst.Errorf("original edge (A,B) should no longer be shared by any tet")
	}
}

func TestSplitDeclinesOnForeignOwnership(tst *testing.T) {
	chk.PrintTitle("SplitDeclinesOnForeignOwnership")
	ctx, n := bipyramid()
	A, B := n[0], n[1]
	ctx.Nodes.Node(B).X[0] = 3.0 // past threshold, so ownership is the only gate left
	ctx.Nodes.Node(A).Part = 7   // foreign rank relative to myRank below

	st := Split(ctx, A, B, 0)
	if !st.IsDeclined() {
		tst.Errorf("expected a decline on foreign ownership, got %v: %s", st.Kind, st.Reason)
	}
}

func TestSplitPrismEdgePairsWithOppositeFace(tst *testing.T) {
	chk.PrintTitle("SplitPrismEdgePairsWithOppositeFace")
	ctx, n := prismColumn()
	fine := metric.Tensor{M11: 16, M22: 16, M33: 16}
	ctx.Nodes.Node(n[1]).M = fine
	ctx.Nodes.Node(n[4]).M = fine

	st := Split(ctx, n[0], n[1], 0)
	if !st.IsOk() {
		tst.Fatalf("expected the prism column to split, got %v: %s", st.Kind, st.Reason)
	}
	if got := ctx.Nodes.NumValid(); got != 8 {
		tst.Errorf("expected 8 nodes, got %d", got)
	}
	if got := ctx.Cells.NumValid(mesh.Prism); got != 2 {
		tst.Errorf("expected 2 prisms, got %d", got)
	}
	if got := ctx.Cells.NumValid(mesh.Tri); got != 4 {
		tst.Errorf("expected 4 triangles, got %d", got)
	}
	if got := ctx.Cells.NumValid(mesh.Quad); got != 2 {
		tst.Errorf("expected 2 quads, got %d", got)
	}
	// the split edge and its extrusion image are both gone
	if ctx.Cells.DegreeWith2(mesh.Prism, n[0], n[1]) != 0 || ctx.Cells.DegreeWith2(mesh.Prism, n[3], n[4]) != 0 {
		tst.Error("expected edge (0,1) and its opposite (3,4) to be replaced")
	}
	ctx.Cells.CheckNodeRefs()
	ctx.Cells.CheckUniqueCells()
}

func TestSplitDeclinesOnVanishedEdge(tst *testing.T) {
	chk.PrintTitle("SplitDeclinesOnVanishedEdge")
	ctx, n := bipyramid()
	// nodes exist but no cell carries this pair as an edge: D and E sit on
	// opposite sides of the shared face
	st := Split(ctx, n[3], n[4], 0)
	if !st.IsDeclined() {
		tst.Errorf("expected a decline for a node pair that is not an edge, got %v: %s", st.Kind, st.Reason)
	}
}
