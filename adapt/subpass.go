// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package adapt

import (
	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/collective"
	"github.com/dpedroso/refmesh/ghost"
	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/operator"
	"github.com/dpedroso/refmesh/reflog"
)

// syncAfterTopologyChange runs the post-split/collapse sequence a sub-pass
// that creates new nodes must perform before the next sub-pass can trust
// global ids to be unique and ghost copies to be current: renumber the
// provisional globals to be globally unique, reconcile any two ranks'
// coincidentally-identical new nodes onto one survivor, then pull every
// ghost's authoritative state.
func syncAfterTopologyChange(ctx *operator.Context, comm collective.Comm, myRank int) {
	pending := append([]int(nil), ctx.Nodes.PendingNew()...)
	ctx.Nodes.ShiftNewGlobals(shiftBase(comm, ctx.Nodes))
	if comm.IsDistributed() {
		ghost.ReconcileCoincidentSplits(comm, ctx.Nodes, ctx.Cells, pending, ctx.Cfg.CadParamTol)
	}
	ghost.Sync(comm, ctx.Nodes, ctx.CAD, myRank)
}

// shiftBase computes the per-rank offset that makes this pass's
// provisional (rank-local) new global ids globally unique: each rank's
// offset is the total count of new nodes committed by every
// lower-ranked peer this pass, an exclusive prefix sum over
// comm.Size() ranks built from one AllToAllCounts round in which every
// rank sends its own pending count to every peer.
func shiftBase(comm collective.Comm, nodes *mesh.NodeStore) int64 {
	mine := len(nodes.PendingNew())
	size := comm.Size()
	if size <= 1 {
		return 0
	}
	counts := make([]int, size)
	for r := 0; r < size; r++ {
		counts[r] = mine
	}
	// every rank must see every other rank's count; SumInt reduces one
	// scalar globally, so each rank's count is carried via an
	// AllToAllCounts round instead, which exchanges the full [Size()]
	// table in one collective.
	recv := comm.AllToAllCounts(counts)
	var base int64
	for r := 0; r < comm.Rank(); r++ {
		base += int64(recv[r])
	}
	return base
}

// collapsePass iterates every tet edge once, attempting Collapse on
// whichever endpoint is not a pinned CAD node.
func collapsePass(ctx *operator.Context, comm collective.Comm, myRank int, counters *Counters) {
	touched := make(map[int]bool)
	for _, e := range ctx.Cells.EdgeTable() {
		if !ctx.Nodes.Valid(e.N0) || !ctx.Nodes.Valid(e.N1) {
			continue
		}
		keep, remove := e.N0, e.N1
		if ctx.CAD.HasType(e.N1, cadgeom.NodeEntity) {
			keep, remove = e.N1, e.N0
		}
		status := operator.Collapse(ctx, keep, remove, myRank)
		counters.log("collapse", status)
		if status.IsOk() {
			counters.Collapsed++
			touched[keep] = true
		}
	}
	ctx.Nodes.IncrementAges(touched)
}

// splitPass iterates every tet edge once, attempting Split on each.
func splitPass(ctx *operator.Context, comm collective.Comm, myRank int, counters *Counters) {
	touched := make(map[int]bool)
	for _, e := range ctx.Cells.EdgeTable() {
		if !ctx.Nodes.Valid(e.N0) || !ctx.Nodes.Valid(e.N1) {
			continue
		}
		status := operator.Split(ctx, e.N0, e.N1, myRank)
		counters.log("split", status)
		if status.IsOk() {
			counters.Split++
			touched[e.N0] = true
			touched[e.N1] = true
		}
	}
	ctx.Nodes.IncrementAges(touched)
}

// swapPass runs one surface-swap sub-pass (triangle edge flips on
// boundary faces) followed by one volume-swap sub-pass (tet face 2<->3
// swaps), iterating the derived edge/face tables once each.
func swapPass(ctx *operator.Context, comm collective.Comm, myRank int, counters *Counters) {
	for _, e := range ctx.Cells.EdgeTable() {
		if !ctx.Nodes.Valid(e.N0) || !ctx.Nodes.Valid(e.N1) {
			continue
		}
		if ctx.Cells.DegreeWith2(mesh.Tri, e.N0, e.N1) != 2 {
			continue
		}
		status := operator.SwapTriangles(ctx, e.N0, e.N1, myRank)
		counters.log("swap-triangle", status)
		if status.IsOk() {
			counters.Swapped++
		}
	}
	for _, f := range ctx.Cells.FaceTable() {
		if !ctx.Nodes.Valid(f.Nodes[0]) || !ctx.Nodes.Valid(f.Nodes[1]) || !ctx.Nodes.Valid(f.Nodes[2]) {
			continue
		}
		status := operator.SwapFace23(ctx, f.Nodes[0], f.Nodes[1], f.Nodes[2], myRank)
		counters.log("swap-face23", status)
		if status.IsOk() {
			counters.Swapped++
		}
	}
}

// smoothPass sweeps every locally-owned valid node once, dispatching to
// SmoothSurfaceFace or SmoothBoundaryEdge when the node carries the
// corresponding CAD record, SmoothInterior otherwise (falling back to
// SmoothNonsmooth when SmoothInterior declines on a quality tie). Pinned
// CAD NODE entities are left alone.
func smoothPass(ctx *operator.Context, comm collective.Comm, myRank int, counters *Counters) {
	touched := make(map[int]bool)
	for L := 0; L < ctx.Nodes.Len(); L++ {
		if !ctx.Nodes.Valid(L) {
			continue
		}
		if !ctx.Nodes.IsOwned(L, myRank) {
			continue
		}
		status := smoothNode(ctx, L)
		counters.log("smooth", status)
		if status.IsOk() {
			counters.Smoothed++
			touched[L] = true
		}
	}
	ctx.Nodes.IncrementAges(touched)
}

func smoothNode(ctx *operator.Context, L int) reflog.Status {
	if ctx.CAD.HasType(L, cadgeom.NodeEntity) {
		return reflog.Decline("node %d is a pinned CAD NODE", L)
	}
	if faceID, ok := firstRecordOfType(ctx, L, cadgeom.FaceEntity); ok {
		s, _, _ := operator.SmoothSurfaceFace(ctx, L, faceID, nil, nil)
		return s
	}
	if edgeID, ok := firstRecordOfType(ctx, L, cadgeom.EdgeEntity); ok {
		nbrA, nbrB, ok := boundaryEdgeNeighbors(ctx, L)
		if !ok {
			return reflog.Decline("node %d on CAD edge %d has no unique pair of segment neighbors", L, edgeID)
		}
		return operator.SmoothBoundaryEdge(ctx, L, edgeID, nbrA, nbrB)
	}
	status := operator.SmoothInterior(ctx, L)
	if status.IsDeclined() {
		return operator.SmoothNonsmooth(ctx, L)
	}
	return status
}

// firstRecordOfType returns the id of node L's first CAD record of type t,
// and whether one exists.
func firstRecordOfType(ctx *operator.Context, L int, t cadgeom.EntityType) (id int, ok bool) {
	for _, r := range ctx.CAD.Records(L) {
		if r.Type == t {
			return r.ID, true
		}
	}
	return 0, false
}

// boundaryEdgeNeighbors returns node L's two neighbors along its incident
// boundary segments; ok is false unless L has exactly two incident Seg
// cells (an interior-to-the-CAD-edge node, not an endpoint or junction).
func boundaryEdgeNeighbors(ctx *operator.Context, L int) (nbrA, nbrB int, ok bool) {
	segs := ctx.Cells.CellsAt(mesh.Seg, L)
	if len(segs) != 2 {
		return 0, 0, false
	}
	var nbrs [2]int
	for i, idx := range segs {
		nodes := ctx.Cells.Cell(mesh.Seg, idx).Nodes
		if nodes[0] == L {
			nbrs[i] = nodes[1]
		} else {
			nbrs[i] = nodes[0]
		}
	}
	return nbrs[0], nbrs[1], true
}
