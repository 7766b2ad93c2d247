// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ghost

import (
	"math"
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/collective"
	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
)

// pairComm is an in-process two-rank Comm: each rank runs in its own
// goroutine and the collectives rendezvous over a channel pair. Both ranks
// must issue the exact same sequence of collective calls, the same
// lockstep contract the MPI backing has.
type pairComm struct {
	rank int
	send chan<- interface{}
	recv <-chan interface{}
}

func newPairComms() (*pairComm, *pairComm) {
	c01 := make(chan interface{}, 8)
	c10 := make(chan interface{}, 8)
	return &pairComm{rank: 0, send: c01, recv: c10}, &pairComm{rank: 1, send: c10, recv: c01}
}

func (o *pairComm) swap(v interface{}) interface{} {
	o.send <- v
	return <-o.recv
}

func (o *pairComm) Rank() int           { return o.rank }
func (o *pairComm) Size() int           { return 2 }
func (o *pairComm) IsDistributed() bool { return true }

func (o *pairComm) MinFloat(v float64) float64 { return math.Min(v, o.swap(v).(float64)) }
func (o *pairComm) MaxFloat(v float64) float64 { return math.Max(v, o.swap(v).(float64)) }
func (o *pairComm) SumFloat(v float64) float64 { return v + o.swap(v).(float64) }

func (o *pairComm) MaxInt(v int) int {
	p := o.swap(v).(int)
	if p > v {
		return p
	}
	return v
}

func (o *pairComm) SumInt(v int) int { return v + o.swap(v).(int) }

func (o *pairComm) BcastBool(v bool) bool {
	if o.rank == 0 {
		o.send <- v
		return v
	}
	return (<-o.recv).(bool)
}

func (o *pairComm) AllToAllCounts(sendCounts []int) (recvCounts []int) {
	peerCounts := o.swap(append([]int(nil), sendCounts...)).([]int)
	recvCounts = make([]int, 2)
	recvCounts[o.rank] = sendCounts[o.rank]
	recvCounts[1-o.rank] = peerCounts[o.rank]
	return
}

func (o *pairComm) AllToAllFloatV(sendCounts []int, sendBuf []float64) (recvBuf []float64, recvCounts, recvDispls []int) {
	recvCounts = o.AllToAllCounts(sendCounts)
	recvDispls = collective.Prefix(recvCounts)
	offs := collective.Prefix(sendCounts)
	peer := 1 - o.rank
	toPeer := append([]float64(nil), sendBuf[offs[peer]:offs[peer+1]]...)
	fromPeer := o.swap(toPeer).([]float64)
	recvBuf = make([]float64, recvDispls[2])
	copy(recvBuf[recvDispls[o.rank]:], sendBuf[offs[o.rank]:offs[o.rank+1]])
	copy(recvBuf[recvDispls[peer]:], fromPeer)
	return
}

func (o *pairComm) AllToAllIntV(sendCounts []int, sendBuf []int) (recvBuf []int, recvCounts, recvDispls []int) {
	recvCounts = o.AllToAllCounts(sendCounts)
	recvDispls = collective.Prefix(recvCounts)
	offs := collective.Prefix(sendCounts)
	peer := 1 - o.rank
	toPeer := append([]int(nil), sendBuf[offs[peer]:offs[peer+1]]...)
	fromPeer := o.swap(toPeer).([]int)
	recvBuf = make([]int, recvDispls[2])
	copy(recvBuf[recvDispls[o.rank]:], sendBuf[offs[o.rank]:offs[o.rank+1]])
	copy(recvBuf[recvDispls[peer]:], fromPeer)
	return
}

// twoRankFixture builds the shared-edge scenario: two tets, one per rank,
// sharing nodes with globals 2 and 3 (owned by rank 0).
func twoRankFixture() (nodes [2]*mesh.NodeStore, cells [2]*mesh.CellStore, cad [2]*cadgeom.Store) {
	u := metric.Identity()
	coords := [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {0.5, 1, 0}, {0.5, 0.5, 1}, {1.5, 1, 0}, {1.5, 0.5, 1},
	}
	parts := []int{0, 0, 0, 0, 1, 1}

	for r := 0; r < 2; r++ {
		nodes[r] = mesh.NewNodeStore()
		cells[r] = mesh.NewCellStore(nodes[r])
		cad[r] = cadgeom.NewStore()
	}
	for _, g := range []int64{0, 1, 2, 3} {
		nodes[0].Add(g, coords[g], u, parts[g])
	}
	for _, g := range []int64{2, 3, 4, 5} {
		nodes[1].Add(g, coords[g], u, parts[g])
	}
	nodes[0].ShiftNewGlobals(0)
	nodes[1].ShiftNewGlobals(0)

	addTet := func(r int, globals [4]int64) {
		locals := make([]int, 4)
		for i, g := range globals {
			locals[i], _ = nodes[r].Local(g)
		}
		cells[r].Add(mesh.Tet, locals, -1)
	}
	addTet(0, [4]int64{0, 1, 2, 3})
	addTet(1, [4]int64{2, 3, 4, 5})
	return
}

func runBothRanks(fn func(r int, comm collective.Comm)) {
	c0, c1 := newPairComms()
	comms := []collective.Comm{c0, c1}
	var wg sync.WaitGroup
	for r := 0; r < 2; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			fn(r, comms[r])
		}(r)
	}
	wg.Wait()
}

func TestSyncCopiesOwnedStateOntoGhosts(tst *testing.T) {
	chk.PrintTitle("SyncCopiesOwnedStateOntoGhosts")
	nodes, _, cad := twoRankFixture()

	// rank 0 moves its owned node (global 2) and refines its metric
	L2r0, _ := nodes[0].Local(2)
	nd := nodes[0].Node(L2r0)
	nd.X = [3]float64{0.5, 1.25, 0.125}
	nd.M.M33 = 16
	cad[0].Add(L2r0, cadgeom.Record{Type: cadgeom.FaceEntity, ID: 3, Param: [2]float64{0.5, 0.75}})

	runBothRanks(func(r int, comm collective.Comm) {
		Sync(comm, nodes[r], cad[r], r)
	})

	// rank 1's ghost slot must now be bit-equal to rank 0's owned record
	L2r1, _ := nodes[1].Local(2)
	got := nodes[1].Node(L2r1)
	if got.X != nd.X {
		tst.Errorf("ghost coords %v != owned coords %v", got.X, nd.X)
	}
	if got.M != nd.M {
		tst.Errorf("ghost metric %+v != owned metric %+v", got.M, nd.M)
	}
	if got.Part != 0 {
		tst.Errorf("ghost part = %d, want 0", got.Part)
	}
	u, v, ok := cad[1].FaceParam(L2r1, 3)
	if !ok {
		tst.Fatal("CAD face record did not travel with the ghost sync")
	}
	chk.Scalar(tst, "u", 1e-15, u, 0.5)
	chk.Scalar(tst, "v", 1e-15, v, 0.75)
}

func TestSyncIsIdempotent(tst *testing.T) {
	chk.PrintTitle("SyncIsIdempotent")
	nodes, _, cad := twoRankFixture()
	L2r0, _ := nodes[0].Local(2)
	nodes[0].Node(L2r0).X = [3]float64{0.5, 2, 0}

	runBothRanks(func(r int, comm collective.Comm) {
		Sync(comm, nodes[r], cad[r], r)
	})
	L2r1, _ := nodes[1].Local(2)
	first := *nodes[1].Node(L2r1)

	runBothRanks(func(r int, comm collective.Comm) {
		Sync(comm, nodes[r], cad[r], r)
	})
	second := *nodes[1].Node(L2r1)
	if first != second {
		tst.Errorf("second sync changed the ghost slot: %+v != %+v", first, second)
	}
}

func TestReconcileMergesCoincidentSplitNodes(tst *testing.T) {
	chk.PrintTitle("ReconcileMergesCoincidentSplitNodes")
	nodes, cells, _ := twoRankFixture()

	// both ranks split their shared edge (2,3) independently: each creates
	// its own midpoint node under its own provisional global id
	mid := [3]float64{0.5, 0.75, 0.5}
	u := metric.Identity()
	newL0 := nodes[0].Add(1000, mid, u, 0)
	newL1 := nodes[1].Add(2000, mid, u, 1)
	L3r1, _ := nodes[1].Local(3)
	cells[1].Add(mesh.Tet, []int{newL1, L3r1, mustLocal(nodes[1], 4), mustLocal(nodes[1], 5)}, -1)

	pending := [2][]int{{newL0}, {newL1}}
	runBothRanks(func(r int, comm collective.Comm) {
		ReconcileCoincidentSplits(comm, nodes[r], cells[r], pending[r], 1e-9)
	})

	// the lowest global in the cluster wins on every rank
	for r := 0; r < 2; r++ {
		if _, ok := nodes[r].Local(2000); ok {
			tst.Errorf("rank %d still holds losing global 2000", r)
		}
		L, ok := nodes[r].Local(1000)
		if !ok {
			tst.Fatalf("rank %d lost the surviving global 1000", r)
		}
		if nodes[r].Node(L).X != mid {
			tst.Errorf("rank %d survivor moved to %v", r, nodes[r].Node(L).X)
		}
	}
	// the cell rank 1 built on its duplicate now references the survivor
	L1000r1, _ := nodes[1].Local(1000)
	if got := len(cells[1].CellsAt(mesh.Tet, L1000r1)); got != 1 {
		tst.Errorf("expected survivor on rank 1 to be in 1 tet, got %d", got)
	}
	cells[1].CheckNodeRefs()
}

func mustLocal(n *mesh.NodeStore, g int64) int {
	L, ok := n.Local(g)
	if !ok {
		panic("missing global")
	}
	return L
}
