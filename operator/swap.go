// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
	"github.com/dpedroso/refmesh/reflog"
)

// SwapTriangles attempts the standard 2D edge flip between the two
// triangles sharing edge (n0, n1): replacing the diagonal (n0,n1) with
// (apexA, apexB), accepted only if the minimum quality strictly improves
// and, on a CAD surface, the normal deviation does not drop below
// threshold.
func SwapTriangles(c *Context, n0, n1 int, myRank int) reflog.Status {
	cells := c.Cells.ListWith2(mesh.Tri, n0, n1)
	if len(cells) != 2 {
		return reflog.Decline("edge (%d,%d) does not border exactly two triangles (%d)", n0, n1, len(cells))
	}
	idxA, idxB := cells[0], cells[1]
	if !c.Cells.IsCellOwned(mesh.Tri, idxA, myRank) || !c.Cells.IsCellOwned(mesh.Tri, idxB, myRank) {
		return reflog.Decline("swap candidate triangle is foreign-owned")
	}
	cellA, cellB := c.Cells.Cell(mesh.Tri, idxA), c.Cells.Cell(mesh.Tri, idxB)
	apexA, ok := thirdVertex(cellA.Nodes, n0, n1)
	if !ok {
		return reflog.FatalStatus("triangle %d does not contain edge (%d,%d)", idxA, n0, n1)
	}
	apexB, ok := thirdVertex(cellB.Nodes, n0, n1)
	if !ok {
		return reflog.FatalStatus("triangle %d does not contain edge (%d,%d)", idxB, n0, n1)
	}

	qBefore := minQuality(c, mesh.Tri, [][]int{cellA.Nodes, cellB.Nodes})

	newA := []int{apexA, apexB, n0}
	newB := []int{apexB, apexA, n1}
	qAfter := minQuality(c, mesh.Tri, [][]int{newA, newB})

	if qAfter <= qBefore+c.Cfg.SwapMargin {
		return reflog.Decline("swap does not improve minimum quality (%.4g -> %.4g)", qBefore, qAfter)
	}

	if c.CAD.HasType(n0, cadgeom.FaceEntity) && c.CAD.HasType(n1, cadgeom.FaceEntity) {
		if !swapPreservesSurfaceNormal(c, cellA.Nodes, newA) || !swapPreservesSurfaceNormal(c, cellB.Nodes, newB) {
			return reflog.Decline("swap would drop surface normal deviation below threshold")
		}
	}

	id := cellA.ID
	c.Cells.Remove(mesh.Tri, idxA)
	c.Cells.Remove(mesh.Tri, idxB)
	c.Cells.Add(mesh.Tri, newA, id)
	c.Cells.Add(mesh.Tri, newB, id)
	return reflog.Ok()
}

// swapPreservesSurfaceNormal reports whether triangle `after`'s normal
// stays within the configured deviation of triangle `before`'s normal
//.
func swapPreservesSurfaceNormal(c *Context, before, after []int) bool {
	nBefore := metric.TriangleNormal(coordsOf(c, before[0]), coordsOf(c, before[1]), coordsOf(c, before[2]))
	nAfter := metric.TriangleNormal(coordsOf(c, after[0]), coordsOf(c, after[1]), coordsOf(c, after[2]))
	dot := nBefore[0]*nAfter[0] + nBefore[1]*nAfter[1] + nBefore[2]*nAfter[2]
	return dot >= c.Cfg.PostMinNormDev
}

func thirdVertex(nodes []int, a, b int) (int, bool) {
	for _, n := range nodes {
		if n != a && n != b {
			return n, true
		}
	}
	return 0, false
}

// SwapFace23 attempts the 3D 2->3 face swap: two tets sharing a triangular
// face (a,b,c) with apexes p, q are replaced by three tets fanning the
// edge (p,q) across the original triangle, accepted when the minimum
// quality of the new configuration exceeds the old by swapMargin
//.
func SwapFace23(c *Context, a, b, cc int, myRank int) reflog.Status {
	idx0, idx1, n := c.Cells.WithFace(mesh.Tet, []int{a, b, cc})
	if n != 2 {
		return reflog.Decline("face (%d,%d,%d) does not border exactly two tets (%d)", a, b, cc, n)
	}
	if !c.Cells.IsCellOwned(mesh.Tet, idx0, myRank) || !c.Cells.IsCellOwned(mesh.Tet, idx1, myRank) {
		return reflog.Decline("swap candidate tet is foreign-owned")
	}
	p, ok := c.Cells.OpposingNode(idx0, a, b, cc)
	if !ok {
		return reflog.FatalStatus("tet %d missing opposing node to face (%d,%d,%d)", idx0, a, b, cc)
	}
	q, ok := c.Cells.OpposingNode(idx1, a, b, cc)
	if !ok {
		return reflog.FatalStatus("tet %d missing opposing node to face (%d,%d,%d)", idx1, a, b, cc)
	}

	before := [][]int{{a, b, cc, p}, {a, b, cc, q}}
	qBefore := minQuality(c, mesh.Tet, before)

	after := [][]int{
		{p, q, a, b},
		{p, q, b, cc},
		{p, q, cc, a},
	}
	qAfter := minQuality(c, mesh.Tet, after)

	if qAfter <= qBefore+c.Cfg.SwapMargin {
		return reflog.Decline("2->3 swap does not improve minimum quality (%.4g -> %.4g)", qBefore, qAfter)
	}

	c.Cells.Remove(mesh.Tet, idx0)
	c.Cells.Remove(mesh.Tet, idx1)
	for _, nodes := range after {
		c.Cells.Add(mesh.Tet, nodes, -1)
	}
	return reflog.Ok()
}

// SwapFace32 attempts the inverse 3->2 face swap: three tets fanning edge
// (p,q) across triangle (a,b,c) are replaced by two tets sharing face
// (a,b,c), the inverse reconfiguration of SwapFace23.
func SwapFace32(c *Context, p, q, a, b, cc int, myRank int) reflog.Status {
	for _, idx := range c.Cells.ListWith2(mesh.Tet, p, q) {
		if !c.Cells.IsCellOwned(mesh.Tet, idx, myRank) {
			return reflog.Decline("swap candidate tet %d is foreign-owned", idx)
		}
	}
	idxPab, okAB := findTetWith(c, p, q, a, b)
	idxPbc, okBC := findTetWith(c, p, q, b, cc)
	idxPca, okCA := findTetWith(c, p, q, cc, a)
	if !okAB || !okBC || !okCA {
		return reflog.Decline("edge (%d,%d) is not fanned by exactly three tets over (%d,%d,%d)", p, q, a, b, cc)
	}

	before := [][]int{{p, q, a, b}, {p, q, b, cc}, {p, q, cc, a}}
	qBefore := minQuality(c, mesh.Tet, before)
	after := [][]int{{a, b, cc, p}, {a, b, cc, q}}
	qAfter := minQuality(c, mesh.Tet, after)
	if qAfter <= qBefore+c.Cfg.SwapMargin {
		return reflog.Decline("3->2 swap does not improve minimum quality (%.4g -> %.4g)", qBefore, qAfter)
	}

	c.Cells.Remove(mesh.Tet, idxPab)
	c.Cells.Remove(mesh.Tet, idxPbc)
	c.Cells.Remove(mesh.Tet, idxPca)
	for _, nodes := range after {
		c.Cells.Add(mesh.Tet, nodes, -1)
	}
	return reflog.Ok()
}

func findTetWith(c *Context, p, q, x, y int) (int, bool) {
	for _, idx := range c.Cells.ListWith2(mesh.Tet, p, q) {
		cell := c.Cells.Cell(mesh.Tet, idx)
		if containsNode(cell.Nodes, x) && containsNode(cell.Nodes, y) {
			return idx, true
		}
	}
	return 0, false
}
