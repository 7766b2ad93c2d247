// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ghost

import (
	"math"

	"github.com/dpedroso/refmesh/collective"
	"github.com/dpedroso/refmesh/mesh"
)

// newNodeBroadcast is one rank's freshly created node, as exchanged among
// every rank so all can agree on duplicates without a second round trip.
type newNodeBroadcast struct {
	global int64
	x      [3]float64
}

const floatsPerBroadcastNode = 3
const intsPerBroadcastNode = 1 // global, split across its own buffer below

var allCellKinds = []mesh.Kind{mesh.Seg, mesh.Tri, mesh.Tet, mesh.Quad, mesh.Prism, mesh.Pyramid, mesh.Hex}

// ReconcileCoincidentSplits detects nodes that two (or more) ranks created
// independently this pass at the same physical position — the case where
// two ranks each hold one endpoint of a shared boundary edge, both decide
// to split it, and each inserts its own new node at the midpoint under its
// own provisional global id. Left alone, every rank's pendingNew list would
// disagree on the new node's identity forever; this picks the lowest
// global in each coincident cluster as the survivor and converges every
// rank onto it.
//
// newNodes lists this rank's freshly created node local indices, captured
// before the deferred global renumbering so the caller can renumber first
// (duplicate detection needs the final, globally unique ids — otherwise
// two ranks could agree on a winner only to renumber it apart again).
//
// Every rank must call this with the exact same set of collective calls
// (it broadcasts its own new-node list and receives everyone else's), so
// it must be called uniformly after every sub-pass that might split, even
// on ranks that split nothing this pass.
func ReconcileCoincidentSplits(comm collective.Comm, nodes *mesh.NodeStore, cells *mesh.CellStore, newNodes []int, tol float64) {
	mine := newNodes

	size := comm.Size()
	myRank := comm.Rank()

	sendFloatCounts := make([]int, size)
	sendIntCounts := make([]int, size)
	var sendFloats []float64
	var sendInts []int
	for r := 0; r < size; r++ {
		if r == myRank {
			continue
		}
		sendFloatCounts[r] = len(mine) * floatsPerBroadcastNode
		sendIntCounts[r] = len(mine) * intsPerBroadcastNode
		for _, L := range mine {
			x := nodes.Node(L).X
			sendFloats = append(sendFloats, x[0], x[1], x[2])
			sendInts = append(sendInts, int(nodes.GlobalOf(L)))
		}
	}

	recvFloats, _, floatDispls := comm.AllToAllFloatV(sendFloatCounts, sendFloats)
	recvInts, _, intDispls := comm.AllToAllIntV(sendIntCounts, sendInts)

	var remote []newNodeBroadcast
	for r := 0; r < size; r++ {
		if r == myRank {
			continue
		}
		for i, lo := 0, intDispls[r]; lo+i < intDispls[r+1]; i++ {
			fb := floatDispls[r] + i*floatsPerBroadcastNode
			remote = append(remote, newNodeBroadcast{
				global: int64(recvInts[lo+i]),
				x:      [3]float64{recvFloats[fb], recvFloats[fb+1], recvFloats[fb+2]},
			})
		}
	}
	if len(mine) == 0 || len(remote) == 0 {
		return
	}

	// bin the local store once, then look each remote new node up by
	// position; a cluster matters here only if one of its members is a
	// local node (purely remote coincidences merge on their own ranks)
	lo, hi, ndiv := spatialBounds(nodes, tol)
	idx := mesh.BuildSpatialIndex(nodes, lo, hi, ndiv)
	mineSet := make(map[int]bool, len(mine))
	for _, L := range mine {
		mineSet[L] = true
	}
	clusters := make(map[int][]int64)
	for _, rn := range remote {
		L, ok := idx.FindNear(rn.x)
		if !ok || !mineSet[L] {
			continue
		}
		if dist3(nodes.Node(L).X, rn.x) > tol {
			continue
		}
		clusters[L] = append(clusters[L], rn.global)
	}
	for L, remotes := range clusters {
		cluster := append([]int64{nodes.GlobalOf(L)}, remotes...)
		winner := cluster[0]
		for _, g := range cluster[1:] {
			if g < winner {
				winner = g
			}
		}
		applyMerge(nodes, cells, cluster, winner)
	}
}

// spatialBounds returns a bounding box (with a tol-plus margin) and a
// division count for binning every valid node of the store.
func spatialBounds(nodes *mesh.NodeStore, tol float64) (lo, hi [3]float64, ndiv int) {
	first := true
	for L := 0; L < nodes.Len(); L++ {
		if !nodes.Valid(L) {
			continue
		}
		x := nodes.Node(L).X
		if first {
			lo, hi = x, x
			first = false
			continue
		}
		for i := 0; i < 3; i++ {
			if x[i] < lo[i] {
				lo[i] = x[i]
			}
			if x[i] > hi[i] {
				hi[i] = x[i]
			}
		}
	}
	margin := tol + 1e-9
	for i := 0; i < 3; i++ {
		lo[i] -= margin
		hi[i] += margin
	}
	return lo, hi, 40
}

func applyMerge(nodes *mesh.NodeStore, cells *mesh.CellStore, cluster []int64, winner int64) {
	winnerL, haveWinner := nodes.Local(winner)
	for _, g := range cluster {
		if g == winner {
			continue
		}
		loserL, ok := nodes.Local(g)
		if !ok {
			continue // this rank never saw this particular duplicate
		}
		if !haveWinner {
			nodes.Rename(loserL, winner)
			winnerL, haveWinner = loserL, true
			continue
		}
		for _, k := range allCellKinds {
			cells.ReplaceNodeEverywhere(k, loserL, winnerL)
		}
		nodes.Remove(loserL)
	}
}

func dist3(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
