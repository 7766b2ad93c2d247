// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ghost implements the two-phase (counts, then payload) all-to-all
// ghost-node exchange run after every operator sub-pass: each rank asks
// the owner of every node it references but does not own for the
// authoritative copy (coordinates, metric, owning rank, CAD-parameter
// records) and writes the reply into its own local slot.
package ghost

import (
	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/collective"
	"github.com/dpedroso/refmesh/mesh"
)

const fixedFloatsPerNode = 9 // X[3] + M{11,12,13,22,23,33}
const intsPerNode = 2        // Part, numRecords
const floatsPerRecord = 4    // Param[0], Param[1], Jump, Degeneracy
const intsPerRecord = 2      // Type, ID

// Sync brings every ghost node's authoritative state across from its owner
// (coordinates, metric, owning rank, CAD-parameter records), overwriting
// whatever stale copy this rank was holding. A single-rank comm is a no-op:
// there are no ghosts to resolve.
func Sync(comm collective.Comm, nodes *mesh.NodeStore, cad *cadgeom.Store, myRank int) {
	if !comm.IsDistributed() {
		return
	}

	ghosts := nodes.GhostNodes(myRank)
	byOwner := make(map[int][]int) // owner rank -> local ghost indices, request order
	for _, L := range ghosts {
		owner := nodes.OwnerRank(L)
		byOwner[owner] = append(byOwner[owner], L)
	}

	size := comm.Size()
	reqCounts := make([]int, size)
	var reqGlobals []int
	for r := 0; r < size; r++ {
		for _, L := range byOwner[r] {
			reqGlobals = append(reqGlobals, int(nodes.GlobalOf(L)))
		}
		reqCounts[r] = len(byOwner[r])
	}

	recvReqCounts := comm.AllToAllCounts(reqCounts)
	recvGlobals, _, recvGlobalDispls := comm.AllToAllIntV(reqCounts, reqGlobals)

	// recvGlobals[recvGlobalDispls[r]:recvGlobalDispls[r+1]] are the globals
	// rank r wants from me, in the order rank r asked for them; my replies
	// must preserve that order so the requester can zip them back onto its
	// own byOwner[r] list.
	fixedSendCounts := make([]int, size)
	intSendCounts := make([]int, size)
	recIntSendCounts := make([]int, size)
	recFloatSendCounts := make([]int, size)
	var fixedSendBuf, recFloatSendBuf []float64
	var intSendBuf, recIntSendBuf []int

	for r := 0; r < size; r++ {
		n := recvReqCounts[r]
		fixedSendCounts[r] = n * fixedFloatsPerNode
		intSendCounts[r] = n * intsPerNode
		for i := 0; i < n; i++ {
			g := int64(recvGlobals[recvGlobalDispls[r]+i])
			L, ok := nodes.Local(g)
			if !ok {
				chk.Panic("ghost: rank %d asked me for global %d, which I do not own or hold", r, g)
			}
			nd := nodes.Node(L)
			fixedSendBuf = append(fixedSendBuf,
				nd.X[0], nd.X[1], nd.X[2],
				nd.M.M11, nd.M.M12, nd.M.M13, nd.M.M22, nd.M.M23, nd.M.M33)

			recs := cad.Records(L)
			intSendBuf = append(intSendBuf, nd.Part, len(recs))
			recIntSendCounts[r] += len(recs) * intsPerRecord
			recFloatSendCounts[r] += len(recs) * floatsPerRecord
			for _, rec := range recs {
				recIntSendBuf = append(recIntSendBuf, int(rec.Type), rec.ID)
				recFloatSendBuf = append(recFloatSendBuf, rec.Param[0], rec.Param[1], rec.Jump, rec.Degeneracy)
			}
		}
	}

	fixedRecvBuf, _, fixedRecvDispls := comm.AllToAllFloatV(fixedSendCounts, fixedSendBuf)
	intRecvBuf, _, intRecvDispls := comm.AllToAllIntV(intSendCounts, intSendBuf)
	recIntRecvBuf, _, recIntRecvDispls := comm.AllToAllIntV(recIntSendCounts, recIntSendBuf)
	recFloatRecvBuf, _, recFloatRecvDispls := comm.AllToAllFloatV(recFloatSendCounts, recFloatSendBuf)

	for r := 0; r < size; r++ {
		intCursor := intRecvDispls[r]
		recIntCursor := recIntRecvDispls[r]
		recFloatCursor := recFloatRecvDispls[r]
		for i, L := range byOwner[r] {
			fBase := fixedRecvDispls[r] + i*fixedFloatsPerNode
			nd := nodes.Node(L)
			nd.X = [3]float64{fixedRecvBuf[fBase], fixedRecvBuf[fBase+1], fixedRecvBuf[fBase+2]}
			nd.M.M11, nd.M.M12, nd.M.M13 = fixedRecvBuf[fBase+3], fixedRecvBuf[fBase+4], fixedRecvBuf[fBase+5]
			nd.M.M22, nd.M.M23, nd.M.M33 = fixedRecvBuf[fBase+6], fixedRecvBuf[fBase+7], fixedRecvBuf[fBase+8]

			nd.Part = intRecvBuf[intCursor]
			numRecords := intRecvBuf[intCursor+1]
			intCursor += intsPerNode

			cad.Remove(L)
			for j := 0; j < numRecords; j++ {
				typ := cadgeom.EntityType(recIntRecvBuf[recIntCursor])
				id := recIntRecvBuf[recIntCursor+1]
				recIntCursor += intsPerRecord
				cad.Add(L, cadgeom.Record{
					Type:       typ,
					ID:         id,
					Param:      [2]float64{recFloatRecvBuf[recFloatCursor], recFloatRecvBuf[recFloatCursor+1]},
					Jump:       recFloatRecvBuf[recFloatCursor+2],
					Degeneracy: recFloatRecvBuf[recFloatCursor+3],
				})
				recFloatCursor += floatsPerRecord
			}
		}
	}
}
