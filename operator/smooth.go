// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/num"

	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
	"github.com/dpedroso/refmesh/reflog"
)

// SmoothInterior repositions interior node L to a 1/q-weighted average of
// the "ideal" apex position implied by each incident tet's opposite face,
// then backtracks a line search toward that target, accepting the first
// step that strictly increases the minimum incident quality.
func SmoothInterior(c *Context, L int) reflog.Status {
	tets := c.Cells.CellsAt(mesh.Tet, L)
	if len(tets) == 0 {
		return reflog.Decline("node %d has no incident tets", L)
	}

	before := incidentNodeLists(c, mesh.Tet, tets)
	qBefore := minQuality(c, mesh.Tet, before)

	target, ok := idealTargetPosition(c, L, tets)
	if !ok {
		return reflog.Decline("could not form an ideal target for node %d", L)
	}

	orig := c.Nodes.Node(L).X
	step := 1.0
	for h := 0; h < c.Cfg.SmoothMaxHalvings; h++ {
		var trial [3]float64
		for i := 0; i < 3; i++ {
			trial[i] = orig[i] + step*(target[i]-orig[i])
		}
		c.Nodes.Node(L).X = trial
		qTrial := minQuality(c, mesh.Tet, before)
		if qTrial > qBefore {
			return reflog.Ok()
		}
		step *= 0.5
	}
	c.Nodes.Node(L).X = orig
	return reflog.Decline("no backtracking step improved minimum quality for node %d", L)
}

// incidentNodeLists returns the node lists of each cell index in idxs.
func incidentNodeLists(c *Context, k mesh.Kind, idxs []int) [][]int {
	out := make([][]int, len(idxs))
	for i, idx := range idxs {
		out[i] = c.Cells.Cell(k, idx).Nodes
	}
	return out
}

// idealTargetPosition computes the 1/q-weighted average of each incident
// tet's ideal apex (the point that makes the tet regular in the local
// metric, built on the face opposite L).
func idealTargetPosition(c *Context, L int, tets []int) ([3]float64, bool) {
	var sum [3]float64
	var wsum float64
	for _, idx := range tets {
		nodes := c.Cells.Cell(mesh.Tet, idx).Nodes
		opp := oppositeFace(nodes, L)
		if len(opp) != 3 {
			continue
		}
		ideal, ok := idealApex(c, opp)
		if !ok {
			continue
		}
		q := cellQuality(c, mesh.Tet, nodes)
		w := 1.0 / (math.Abs(q) + 1e-6)
		for i := 0; i < 3; i++ {
			sum[i] += w * ideal[i]
		}
		wsum += w
	}
	if wsum <= 0 {
		return [3]float64{}, false
	}
	for i := range sum {
		sum[i] /= wsum
	}
	return sum, true
}

func oppositeFace(nodes []int, L int) []int {
	var out []int
	for _, n := range nodes {
		if n != L {
			out = append(out, n)
		}
	}
	return out
}

// idealApex returns the point forming a regular tetrahedron with the
// given triangular face in the local (averaged) metric: centroid plus
// the face normal scaled to the edge-length target of the metric.
func idealApex(c *Context, face []int) ([3]float64, bool) {
	x0, x1, x2 := coordsOf(c, face[0]), coordsOf(c, face[1]), coordsOf(c, face[2])
	n := metric.TriangleNormal(x0, x1, x2)
	centroid := metric.Centroid(x0, x1, x2)
	edge := 0.0
	for _, pair := range [3][2][]float64{{x0, x1}, {x1, x2}, {x2, x0}} {
		d := 0.0
		for i := 0; i < 3; i++ {
			diff := pair[0][i] - pair[1][i]
			d += diff * diff
		}
		edge += math.Sqrt(d)
	}
	edge /= 3
	h := edge * math.Sqrt(2.0/3.0)
	var apex [3]float64
	for i := 0; i < 3; i++ {
		apex[i] = centroid[i] + h*n[i]
	}
	return apex, true
}

// SmoothSurfaceFace repositions node L, which lies on CAD face id, by a
// backtracking line search in (u,v) parameter space toward the direction
// that increases minimum incident-triangle quality, with Polak-Ribiere
// conjugate-gradient acceleration. prevDir/prevGrad carry the previous iteration's search
// direction and gradient for the CG recurrence; pass nil on the first
// call for a node.
func SmoothSurfaceFace(c *Context, L, faceID int, prevDir, prevGrad *[2]float64) (status reflog.Status, dir, grad [2]float64) {
	tris := c.Cells.CellsAt(mesh.Tri, L)
	if len(tris) == 0 {
		return reflog.Decline("node %d has no incident triangles", L), [2]float64{}, [2]float64{}
	}
	before := incidentNodeLists(c, mesh.Tri, tris)
	qBefore := minQuality(c, mesh.Tri, before)

	u0, v0, ok := c.CAD.FaceParam(L, faceID)
	if !ok {
		return reflog.Decline("node %d has no FACE record on %d", L, faceID), [2]float64{}, [2]float64{}
	}

	grad = parameterGradient(c, L, faceID, tris, u0, v0)

	dir = [2]float64{grad[0], grad[1]}
	if prevDir != nil && prevGrad != nil {
		denom := prevGrad[0]*prevGrad[0] + prevGrad[1]*prevGrad[1]
		if denom > 1e-300 {
			beta := (grad[0]*(grad[0]-prevGrad[0]) + grad[1]*(grad[1]-prevGrad[1])) / denom
			if beta < 0 && c.Cfg.PRClampNegative {
				beta = 0
			}
			dir[0] = grad[0] + beta*prevDir[0]
			dir[1] = grad[1] + beta*prevDir[1]
		}
	}

	topo, err := c.Oracle.FaceTopology(faceID)
	if err != nil {
		return reflog.FatalStatus("face topology query failed for %d: %v", faceID, err), dir, grad
	}

	origU, origV := u0, v0
	step := 1.0
	for h := 0; h < c.Cfg.SmoothMaxHalvings; h++ {
		trialU := origU + step*dir[0]
		trialV := origV + step*dir[1]
		if trialU < topo.UMin || trialU > topo.UMax || trialV < topo.VMin || trialV > topo.VMax {
			step *= 0.5
			continue
		}
		ev, err := c.Oracle.Evaluate(cadgeom.FaceEntity, faceID, [2]float64{trialU, trialV})
		if err != nil {
			step *= 0.5
			continue
		}
		orig := c.Nodes.Node(L).X
		c.Nodes.Node(L).X = ev.XYZ
		if !uvAreaSignsConsistent(c, tris, L) {
			c.Nodes.Node(L).X = orig
			step *= 0.5
			continue
		}
		qTrial := minQuality(c, mesh.Tri, before)
		if qTrial > qBefore {
			c.CAD.SetFaceParam(L, faceID, trialU, trialV)
			return reflog.Ok(), dir, grad
		}
		c.Nodes.Node(L).X = orig
		step *= 0.5
	}
	return reflog.Decline("no backtracking step improved minimum quality for node %d on face %d", L, faceID), dir, grad
}

// parameterGradient numerically estimates d(min quality)/d(u,v) at the
// node's current face parameter, folding the CAD's xyz(u,v) map through
// the quality evaluation.
func parameterGradient(c *Context, L, faceID int, tris []int, u0, v0 float64) [2]float64 {
	before := incidentNodeLists(c, mesh.Tri, tris)
	orig := c.Nodes.Node(L).X

	eval := func(u, v float64) float64 {
		ev, err := c.Oracle.Evaluate(cadgeom.FaceEntity, faceID, [2]float64{u, v})
		if err != nil {
			return minQuality(c, mesh.Tri, before)
		}
		c.Nodes.Node(L).X = ev.XYZ
		q := minQuality(c, mesh.Tri, before)
		c.Nodes.Node(L).X = orig
		return q
	}
	fu := func(x float64, args ...interface{}) float64 { return eval(x, v0) }
	fv := func(x float64, args ...interface{}) float64 { return eval(u0, x) }
	return [2]float64{num.DerivCen(fu, u0), num.DerivCen(fv, v0)}
}

func uvAreaSignsConsistent(c *Context, tris []int, L int) bool {
	var refSign float64
	for i, idx := range tris {
		nodes := c.Cells.Cell(mesh.Tri, idx).Nodes
		x0, x1, x2 := coordsOf(c, nodes[0]), coordsOf(c, nodes[1]), coordsOf(c, nodes[2])
		n := metric.TriangleNormal(x0, x1, x2)
		sign := n[0] + n[1] + n[2]
		if i == 0 {
			refSign = sign
			continue
		}
		if refSign*sign < 0 {
			return false
		}
	}
	return true
}

// SmoothBoundaryEdge repositions node L, which lies on CAD edge id, by
// rebalancing the two metric edge-ratios across it toward equality,
// backtracking in t.
func SmoothBoundaryEdge(c *Context, L, edgeID, nbrA, nbrB int) reflog.Status {
	segs := c.Cells.CellsAt(mesh.Seg, L)
	if len(segs) == 0 {
		return reflog.Decline("node %d has no incident segments", L)
	}
	qBefore := cavityRatioBalance(c, L, nbrA, nbrB)

	t0, ok := c.CAD.EdgeParam(L, edgeID)
	if !ok {
		return reflog.Decline("node %d has no EDGE record on %d", L, edgeID)
	}
	tA, okA := c.CAD.EdgeParam(nbrA, edgeID)
	tB, okB := c.CAD.EdgeParam(nbrB, edgeID)
	if !okA || !okB {
		return reflog.Decline("edge neighbors of node %d lack EDGE records on %d", L, edgeID)
	}
	target := 0.5 * (tA + tB)

	topo, err := c.Oracle.EdgeTopology(edgeID)
	if err != nil {
		return reflog.FatalStatus("edge topology query failed for %d: %v", edgeID, err)
	}

	origT := t0
	origX := c.Nodes.Node(L).X
	step := 1.0
	for h := 0; h < c.Cfg.SmoothMaxHalvings; h++ {
		trialT := origT + step*(target-origT)
		if trialT < topo.TMin || trialT > topo.TMax {
			step *= 0.5
			continue
		}
		ev, err := c.Oracle.Evaluate(cadgeom.EdgeEntity, edgeID, [2]float64{trialT, 0})
		if err != nil {
			step *= 0.5
			continue
		}
		c.Nodes.Node(L).X = ev.XYZ
		qTrial := cavityRatioBalance(c, L, nbrA, nbrB)
		if qTrial > qBefore {
			c.CAD.SetEdgeParam(L, edgeID, trialT)
			return reflog.Ok()
		}
		c.Nodes.Node(L).X = origX
		step *= 0.5
	}
	return reflog.Decline("no backtracking step balanced edge ratios at node %d", L)
}

// cavityRatioBalance scores how close the two edge ratios on either side
// of L are to equality: higher is better (1 is perfectly balanced).
func cavityRatioBalance(c *Context, L, nbrA, nbrB int) float64 {
	rA := edgeRatioOf(c, L, nbrA)
	rB := edgeRatioOf(c, L, nbrB)
	if rA <= 0 || rB <= 0 {
		return 0
	}
	if rA > rB {
		return rB / rA
	}
	return rA / rB
}

// SmoothNonsmooth handles the case where node L's incident-cell quality
// function is locally nonsmooth: one or more incident tets are tied (to
// within ActiveSetTieTol) at the cavity minimum, so a smooth ascent would
// average across a kink instead of climbing it. Each iteration takes one
// projected-gradient step on the active set; the loop runs until a step
// reports the node is at its constrained optimum (four or more active
// constraints, a non-ascending projected direction, or negligible
// remaining improvement) or fails to move the node.
func SmoothNonsmooth(c *Context, L int) reflog.Status {
	tets := c.Cells.CellsAt(mesh.Tet, L)
	if len(tets) == 0 {
		return reflog.Decline("node %d has no incident tets", L)
	}
	const maxSteps = 30
	moved := false
	for it := 0; it < maxSteps; it++ {
		complete, improved := nonsmoothStep(c, L, tets)
		if improved {
			moved = true
		}
		if complete || !improved {
			break
		}
	}
	if moved {
		return reflog.Ok()
	}
	return reflog.Decline("projected-gradient step could not raise the minimum quality at node %d", L)
}

// nonsmoothStep takes a single projected-gradient step of the active-set
// smoothing: assemble the quality gradients of the cells tied at the
// cavity minimum, project e0 onto the orthogonal complement of the span of
// the active rows (1, -grad_i) and take its spatial part, a direction along
// which every active cell's linearized quality rises at the same rate
// (Charalambous and Conn, DOI:10.1137/0715011 eq. 3.2), pick the step length where the next
// cell's linearized quality crosses the worst's, and backtrack until the
// minimum clears a 0.9-slope sufficient-increase bound. complete reports
// that L is at its constrained optimum and further steps are pointless.
func nonsmoothStep(c *Context, L int, tets []int) (complete, improved bool) {
	degree := len(tets)
	quals := make([]float64, degree)
	grads := la.MatAlloc(degree, 3)
	worst := 0
	for i, idx := range tets {
		nodes := c.Cells.Cell(mesh.Tet, idx).Nodes
		quals[i] = cellQuality(c, mesh.Tet, nodes)
		qualityGradient(c, L, nodes, grads[i])
		if quals[i] < quals[worst] {
			worst = i
		}
	}

	active := []int{worst}
	for i := 0; i < degree; i++ {
		if i == worst {
			continue
		}
		if quals[i]-quals[worst] < c.Cfg.ActiveSetTieTol {
			active = append(active, i)
		}
	}
	nactive := len(active)
	if nactive >= 4 {
		return true, false // the active constraints pin the node
	}

	dir := make([]float64, 3)
	if nactive == 1 {
		copy(dir, grads[worst])
	} else {
		// rows of N are (1, -grad_i) over the active set; the step is the
		// spatial part of (I - Nt [N Nt]^-1 N) e0
		N := la.MatAlloc(nactive, 4)
		for i, a := range active {
			N[i][0] = 1
			for x := 0; x < 3; x++ {
				N[i][1+x] = -grads[a][x]
			}
		}
		NNt := la.MatAlloc(nactive, nactive)
		for i := 0; i < nactive; i++ {
			for j := 0; j < nactive; j++ {
				for k := 0; k < 4; k++ {
					NNt[i][j] += N[i][k] * N[j][k]
				}
			}
		}
		invNNt := la.MatAlloc(nactive, nactive)
		if _, err := la.MatInv(invNNt, NNt, 1e-14); err != nil {
			return true, false // degenerate active gradients
		}
		ones := make([]float64, nactive)
		for i := range ones {
			ones[i] = 1
		}
		v := make([]float64, nactive)
		la.MatVecMul(v, 1, invNNt, ones)
		for x := 0; x < 3; x++ {
			for i, a := range active {
				dir[x] += grads[a][x] * v[i]
			}
		}
	}

	norm := math.Sqrt(la.VecDot(dir, dir))
	if norm < 1e-300 {
		return true, false
	}
	for x := range dir {
		dir[x] /= norm
	}
	m0 := la.VecDot(dir, grads[worst])
	if m0 <= 0 {
		return true, false // projected direction no longer ascends the minimum
	}

	// step to the first crossing where another cell's linearized quality
	// catches the worst's; fall back to the slope-limited distance to
	// quality 1 when no crossing lies ahead
	minAlpha := math.Inf(1)
	for i := 0; i < degree; i++ {
		isActive := false
		for _, a := range active {
			if i == a {
				isActive = true
				break
			}
		}
		if isActive {
			continue
		}
		m1 := la.VecDot(dir, grads[i])
		if m1-m0 == 0 {
			continue
		}
		alpha := (quals[worst] - quals[i]) / (m1 - m0)
		if alpha > 0 && alpha < minAlpha {
			minAlpha = alpha
		}
	}
	if math.IsInf(minAlpha, 1) {
		for i := 0; i < degree; i++ {
			slope := la.VecDot(dir, grads[i])
			if slope <= 0 {
				continue
			}
			if alpha := (1 - quals[i]) / slope; alpha < minAlpha {
				minAlpha = alpha
			}
		}
		if math.IsInf(minAlpha, 1) || minAlpha <= 0 {
			return true, false
		}
	}

	before := incidentNodeLists(c, mesh.Tet, tets)
	orig := c.Nodes.Node(L).X
	place := func(alpha float64) {
		for x := 0; x < 3; x++ {
			c.Nodes.Node(L).X[x] = orig[x] + alpha*dir[x]
		}
	}
	alpha := minAlpha
	lastAlpha, lastQual := 0.0, 0.0
	var quality float64
	reductions := 0
	maxReductions := c.Cfg.SmoothMaxHalvings
	for ; reductions < maxReductions; reductions++ {
		place(alpha)
		quality = minQuality(c, mesh.Tet, before)
		requirement := 0.9*alpha*m0 + quals[worst]
		if reductions > 0 && quality < lastQual && quality > quals[worst] {
			alpha, quality = lastAlpha, lastQual
			place(alpha)
			break
		}
		if quality > requirement || alpha < 1e-12 {
			break
		}
		lastAlpha, lastQual = alpha, quality
		alpha *= 0.5
	}
	if reductions >= maxReductions || quality <= quals[worst] {
		c.Nodes.Node(L).X = orig
		return true, false // only marginal gains remain along this direction
	}
	if nactive == 3 && quality-quals[worst] < 1e-5 {
		return true, true // tiny step toward a fourth active constraint
	}
	return false, true
}

// qualityGradient fills grad with d(quality)/d(node L's xyz) for one tet,
// by central differences on each coordinate.
func qualityGradient(c *Context, L int, nodes []int, grad []float64) {
	orig := c.Nodes.Node(L).X
	for i := 0; i < 3; i++ {
		i := i
		f := func(x float64, args ...interface{}) float64 {
			c.Nodes.Node(L).X[i] = x
			q := cellQuality(c, mesh.Tet, nodes)
			c.Nodes.Node(L).X[i] = orig[i]
			return q
		}
		grad[i] = num.DerivCen(f, orig[i])
	}
}
