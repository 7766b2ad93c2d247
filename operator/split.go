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

// splitKinds are the kinds the split operator bisects along an edge;
// segments are included so a CAD-edge boundary line splits in step with
// its incident triangles.
var splitKinds = [3]mesh.Kind{mesh.Seg, mesh.Tri, mesh.Tet}

// forbiddenSplitKinds are cell kinds whose presence on the edge forbids a
// tet-cavity split; a pure prism column takes the paired-face path in
// splitPrismEdge instead.
var forbiddenSplitKinds = [3]mesh.Kind{mesh.Quad, mesh.Pyramid, mesh.Hex}

// Split attempts to split edge (n0, n1). myRank is this process's
// partition rank, used by the ownership precondition.
func Split(c *Context, n0, n1 int, myRank int) reflog.Status {
	ratio := edgeRatioOf(c, n0, n1)
	if !metric.IsSplitCandidate(ratio, c.Cfg.SplitRatio) {
		return reflog.Decline("edge ratio %.4g below split threshold %.4g", ratio, c.Cfg.SplitRatio)
	}

	// the caller may be iterating a stale edge table; an earlier commit in
	// the same sub-pass can have replaced this edge already
	present := 0
	for _, k := range [4]mesh.Kind{mesh.Seg, mesh.Tri, mesh.Tet, mesh.Prism} {
		present += c.Cells.DegreeWith2(k, n0, n1)
	}
	if present == 0 {
		return reflog.Decline("edge (%d,%d) is no longer in the mesh", n0, n1)
	}

	if c.Cells.DegreeWith2(mesh.Prism, n0, n1) > 0 {
		return splitPrismEdge(c, n0, n1, myRank)
	}

	for _, k := range forbiddenSplitKinds {
		if c.Cells.DegreeWith2(k, n0, n1) > 0 {
			return reflog.Decline("edge touches forbidden mixed kind %v", k)
		}
	}

	for _, k := range splitKinds {
		for _, idx := range c.Cells.ListWith2(k, n0, n1) {
			if !c.Cells.IsCellOwned(k, idx, myRank) {
				return reflog.Decline("incident cell %v[%d] is foreign-owned", k, idx)
			}
		}
	}

	xNew, mNew := midpointState(c, n0, n1)

	newRec, ok, declineMsg := projectSplitToCAD(c, n0, n1, &xNew)
	if !ok {
		return reflog.Decline("%s", declineMsg)
	}

	part := c.Nodes.Node(n0).Part
	Lnew := c.Nodes.Add(c.freshGlobal(), xNew, mNew, part)
	if newRec != nil {
		c.CAD.Add(Lnew, *newRec)
	}

	var repls []splitReplacement
	minBefore := cavityMinQuality(c, n0, n1)

	for _, k := range [2]mesh.Kind{mesh.Tri, mesh.Tet} {
		for _, idx := range c.Cells.ListWith2(k, n0, n1) {
			cell := c.Cells.Cell(k, idx)
			a := substitute(cell.Nodes, n0, Lnew)
			b := substitute(cell.Nodes, n1, Lnew)
			repls = append(repls, splitReplacement{kind: k, oldIdx: idx, a: a, b: b})
		}
	}

	worst := cavityWorstReplacement(c, repls)
	threshold := c.Cfg.SplitQualityAbsolute
	if rel := c.Cfg.SplitQualityRelative * minBefore; rel > threshold {
		threshold = rel
	}
	if worst < threshold {
		c.Nodes.Remove(Lnew)
		if newRec != nil {
			c.CAD.Remove(Lnew)
		}
		return reflog.Decline("worst new cell quality %.4g below guard %.4g", worst, threshold)
	}

	for _, k := range [2]mesh.Kind{mesh.Seg, mesh.Tri} {
		for _, idx := range c.Cells.ListWith2(k, n0, n1) {
			cell := c.Cells.Cell(k, idx)
			a := substitute(cell.Nodes, n0, Lnew)
			b := substitute(cell.Nodes, n1, Lnew)
			c.Cells.Add(k, a, cell.ID)
			c.Cells.Add(k, b, cell.ID)
			c.Cells.Remove(k, idx)
		}
	}
	for _, r := range repls {
		if r.kind == mesh.Seg || r.kind == mesh.Tri {
			continue // already committed above alongside their Seg/Tri siblings
		}
		cell := c.Cells.Cell(r.kind, r.oldIdx)
		c.Cells.Add(r.kind, r.a, cell.ID)
		c.Cells.Add(r.kind, r.b, cell.ID)
		c.Cells.Remove(r.kind, r.oldIdx)
	}

	return reflog.Ok()
}

// splitReplacement is one cavity cell's pair of candidate replacements.
type splitReplacement struct {
	kind   mesh.Kind
	oldIdx int
	a, b   []int
}

// midpointState interpolates the coordinates and metric of the midpoint
// of edge (n0, n1).
func midpointState(c *Context, n0, n1 int) (x [3]float64, m metric.Tensor) {
	x0, x1 := coordsOf(c, n0), coordsOf(c, n1)
	for i := 0; i < 3; i++ {
		x[i] = 0.5 * (x0[i] + x1[i])
	}
	m = metric.Lerp(c.Nodes.Node(n0).M, c.Nodes.Node(n1).M, 0.5)
	return
}

// splitPrismEdge splits a triangular-face edge (n0, n1) of a prism column
// together with its extrusion image (n2, n3) on the opposite triangular
// face: two new nodes are inserted, every prism sharing the face pair
// becomes two prisms, the triangles on each face bisect around their own
// new node, and the lateral quad spanning both edges becomes two quads.
// The pairing runs n2 above n0 and n3 above n1, so the layer stays one
// cell thick through the split.
func splitPrismEdge(c *Context, n0, n1 int, myRank int) reflog.Status {
	for _, k := range [3]mesh.Kind{mesh.Tet, mesh.Pyramid, mesh.Hex} {
		if c.Cells.DegreeWith2(k, n0, n1) > 0 {
			return reflog.Decline("prism edge (%d,%d) also borders mixed kind %v", n0, n1, k)
		}
	}

	prisms := c.Cells.ListWith2(mesh.Prism, n0, n1)
	n2, n3 := -1, -1
	for _, idx := range prisms {
		p2, p3, ok := oppositePrismEdge(c.Cells.Cell(mesh.Prism, idx).Nodes, n0, n1)
		if !ok {
			return reflog.Decline("edge (%d,%d) is a lateral prism edge", n0, n1)
		}
		if n2 < 0 {
			n2, n3 = p2, p3
		} else if n2 != p2 || n3 != p3 {
			return reflog.Decline("prisms disagree on the edge opposite (%d,%d)", n0, n1)
		}
	}

	for _, k := range [4]mesh.Kind{mesh.Seg, mesh.Tri, mesh.Quad, mesh.Prism} {
		for _, pair := range [2][2]int{{n0, n1}, {n2, n3}} {
			for _, idx := range c.Cells.ListWith2(k, pair[0], pair[1]) {
				if !c.Cells.IsCellOwned(k, idx, myRank) {
					return reflog.Decline("incident cell %v[%d] is foreign-owned", k, idx)
				}
			}
		}
	}

	xA, mA := midpointState(c, n0, n1)
	recA, ok, declineMsg := projectSplitToCAD(c, n0, n1, &xA)
	if !ok {
		return reflog.Decline("%s", declineMsg)
	}
	xB, mB := midpointState(c, n2, n3)
	recB, ok, declineMsg := projectSplitToCAD(c, n2, n3, &xB)
	if !ok {
		return reflog.Decline("%s", declineMsg)
	}

	part := c.Nodes.Node(n0).Part
	newA := c.Nodes.Add(c.freshGlobal(), xA, mA, part)
	newB := c.Nodes.Add(c.freshGlobal(), xB, mB, c.Nodes.Node(n2).Part)
	if recA != nil {
		c.CAD.Add(newA, *recA)
	}
	if recB != nil {
		c.CAD.Add(newB, *recB)
	}

	// quality guard over the bisected triangles of both faces
	minBefore := cavityMinQuality(c, n0, n1)
	if q := cavityMinQuality(c, n2, n3); q < minBefore {
		minBefore = q
	}
	worst := 1.0
	for _, pair := range [2][3]int{{n0, n1, newA}, {n2, n3, newB}} {
		for _, idx := range c.Cells.ListWith2(mesh.Tri, pair[0], pair[1]) {
			cell := c.Cells.Cell(mesh.Tri, idx)
			if qa := cellQuality(c, mesh.Tri, substitute(cell.Nodes, pair[0], pair[2])); qa < worst {
				worst = qa
			}
			if qb := cellQuality(c, mesh.Tri, substitute(cell.Nodes, pair[1], pair[2])); qb < worst {
				worst = qb
			}
		}
	}
	threshold := c.Cfg.SplitQualityAbsolute
	if rel := c.Cfg.SplitQualityRelative * minBefore; rel > threshold {
		threshold = rel
	}
	if worst < threshold {
		c.CAD.Remove(newA)
		c.CAD.Remove(newB)
		c.Nodes.Remove(newA)
		c.Nodes.Remove(newB)
		return reflog.Decline("worst new triangle quality %.4g below guard %.4g", worst, threshold)
	}

	// commit: bisect the per-face segments and triangles around their own
	// new node, then the paired kinds around both
	for _, pair := range [2][3]int{{n0, n1, newA}, {n2, n3, newB}} {
		for _, k := range [2]mesh.Kind{mesh.Seg, mesh.Tri} {
			for _, idx := range c.Cells.ListWith2(k, pair[0], pair[1]) {
				cell := c.Cells.Cell(k, idx)
				a := substitute(cell.Nodes, pair[0], pair[2])
				b := substitute(cell.Nodes, pair[1], pair[2])
				c.Cells.Add(k, a, cell.ID)
				c.Cells.Add(k, b, cell.ID)
				c.Cells.Remove(k, idx)
			}
		}
	}
	for _, k := range [2]mesh.Kind{mesh.Quad, mesh.Prism} {
		for _, idx := range c.Cells.ListWith2(k, n0, n1) {
			cell := c.Cells.Cell(k, idx)
			a := substitute(substitute(cell.Nodes, n1, newA), n3, newB)
			b := substitute(substitute(cell.Nodes, n0, newA), n2, newB)
			c.Cells.Add(k, a, cell.ID)
			c.Cells.Add(k, b, cell.ID)
			c.Cells.Remove(k, idx)
		}
	}

	return reflog.Ok()
}

// oppositePrismEdge returns the extrusion image of triangular-face edge
// (n0, n1) within one prism's canonical numbering (bottom 0-2, top 3-5,
// columns i and i+3); ok is false when (n0, n1) is a lateral edge or not
// part of the prism.
func oppositePrismEdge(nodes []int, n0, n1 int) (n2, n3 int, ok bool) {
	pos := func(n int) int {
		for i, v := range nodes {
			if v == n {
				return i
			}
		}
		return -1
	}
	a, b := pos(n0), pos(n1)
	if a < 0 || b < 0 {
		return 0, 0, false
	}
	if (a < 3) != (b < 3) {
		return 0, 0, false
	}
	return nodes[(a+3)%6], nodes[(b+3)%6], true
}

func substitute(nodes []int, old, new int) []int {
	out := append([]int(nil), nodes...)
	for i, n := range out {
		if n == old {
			out[i] = new
		}
	}
	return out
}

func cavityMinQuality(c *Context, n0, n1 int) float64 {
	var cav [][]int
	for _, idx := range c.Cells.ListWith2(mesh.Tri, n0, n1) {
		cav = append(cav, c.Cells.Cell(mesh.Tri, idx).Nodes)
	}
	q1 := minQuality(c, mesh.Tri, cav)
	cav = cav[:0]
	for _, idx := range c.Cells.ListWith2(mesh.Tet, n0, n1) {
		cav = append(cav, c.Cells.Cell(mesh.Tet, idx).Nodes)
	}
	q2 := minQuality(c, mesh.Tet, cav)
	if q1 < q2 {
		return q1
	}
	return q2
}

func cavityWorstReplacement(c *Context, repls []splitReplacement) float64 {
	worst := 1.0
	for _, r := range repls {
		if qa := cellQuality(c, r.kind, r.a); qa < worst {
			worst = qa
		}
		if qb := cellQuality(c, r.kind, r.b); qb < worst {
			worst = qb
		}
	}
	return worst
}

// projectSplitToCAD computes the new node's CAD-parameter record (if the
// edge lies on a CAD edge or face) and, when applicable, snaps xNew onto
// the CAD entity. ok is false when the CAD geometry disallows the
// insertion; declineMsg explains why.
func projectSplitToCAD(c *Context, n0, n1 int, xNew *[3]float64) (rec *cadgeom.Record, ok bool, declineMsg string) {
	recs0, recs1 := c.CAD.Records(n0), c.CAD.Records(n1)
	for _, r0 := range recs0 {
		if r0.Type != cadgeom.EdgeEntity {
			continue
		}
		for _, r1 := range recs1 {
			if r1.Type == cadgeom.EdgeEntity && r1.ID == r0.ID {
				interp := cadgeom.InterpolateEdge(r0, r1, 0.5)
				res, err := c.Oracle.InverseEvaluate(cadgeom.EdgeEntity, r0.ID, *xNew, &interp.Param)
				if err != nil || !res.InRange {
					return nil, false, "new CAD edge parameter falls outside the edge range"
				}
				ev, err := c.Oracle.Evaluate(cadgeom.EdgeEntity, r0.ID, res.Param)
				if err == nil {
					*xNew = ev.XYZ
				}
				interp.Param = res.Param
				return &interp, true, ""
			}
		}
	}
	for _, r0 := range recs0 {
		if r0.Type != cadgeom.FaceEntity {
			continue
		}
		for _, r1 := range recs1 {
			if r1.Type == cadgeom.FaceEntity && r1.ID == r0.ID {
				rec := cadgeom.InterpolateFace([]cadgeom.Record{r0, r1}, []float64{0.5, 0.5})
				res, err := c.Oracle.InverseEvaluate(cadgeom.FaceEntity, r0.ID, *xNew, &rec.Param)
				if err != nil || !res.InRange {
					return nil, false, "new CAD face parameter falls outside the face range"
				}
				ev, err := c.Oracle.Evaluate(cadgeom.FaceEntity, r0.ID, res.Param)
				if err == nil {
					*xNew = ev.XYZ
				}
				rec.Param = res.Param
				return &rec, true, ""
			}
		}
	}
	return nil, true, ""
}
