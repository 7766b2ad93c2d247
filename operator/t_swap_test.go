// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/refmesh/mesh"
)

func TestSwapDeclinesOnSymmetricSquareDiagonal(tst *testing.T) {
	chk.PrintTitle("SwapDeclinesOnSymmetricSquareDiagonal")
	ctx, A, _, C, _ := splitSquare()
	// both diagonals of a unit square are congruent, so swapping strictly
	// never improves the minimum quality
	st := SwapTriangles(ctx, A, C, 0)
	if !st.IsDeclined() {
		tst.Errorf("expected a decline on a symmetric square diagonal, got %v: %s", st.Kind, st.Reason)
	}
}

func TestSwapCommitsAndRewiresDiagonal(tst *testing.T) {
	chk.PrintTitle("SwapCommitsAndRewiresDiagonal")
	ctx, A, B, C, D := splitSquare()
	ctx.Cfg.SwapMargin = -1e6 // force acceptance regardless of the quality delta

	st := SwapTriangles(ctx, A, C, 0)
	if !st.IsOk() {
		tst.Fatalf("expected swap to commit, got %v: %s", st.Kind, st.Reason)
	}
	if ctx.Cells.DegreeWith2(mesh.Tri, A, C) != 0 {
		tst.Errorf("old diagonal (A,C) should no longer be shared")
	}
	if ctx.Cells.DegreeWith2(mesh.Tri, B, D) != 2 {
		tst.Errorf("new diagonal (B,D) should now be shared by both triangles")
	}
}

func TestSwapDeclinesWhenEdgeNotSharedByTwoTriangles(tst *testing.T) {
	chk.PrintTitle("SwapDeclinesWhenEdgeNotSharedByTwoTriangles")
	ctx, A, B, _, _ := splitSquare()
	// (A,B) borders only one triangle
	st := SwapTriangles(ctx, A, B, 0)
	if !st.IsDeclined() {
		tst.Errorf("expected a decline, got %v: %s", st.Kind, st.Reason)
	}
}
