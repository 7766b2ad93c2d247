// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh implements the node store, cell store, node→cell adjacency,
// and derived edge/face indices of the adaptation core: an append-only
// arena of node records with a free list, and a family of parallel
// per-kind cell arenas.
package mesh

import (
	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/refmesh/metric"
)

// freeSlot marks a free node/cell slot; nodes use Global==freeSlot
const freeSlot = -1

// Node holds one node record: coordinates, metric, global id, owning
// partition, and age
type Node struct {
	X      [3]float64   // Cartesian coordinates
	M      metric.Tensor // SPD metric tensor
	Global int64        // global id, invariant across partitions; freeGlobal if free
	Part   int          // owning partition rank
	Age    int          // consecutive passes with no local operation touching this node
}

const freeGlobal int64 = -1

func (n *Node) isFree() bool { return n.Global == freeGlobal }

// NodeStore is the append-only arena of node records with a free list and
// global<->local lookup.
type NodeStore struct {
	nodes       []Node
	free        []int         // reusable local slots
	global2local map[int64]int // global id -> local index
	pendingNew  []int         // local indices added since last ShiftNewGlobals
}

// NewNodeStore returns an empty node store
func NewNodeStore() *NodeStore {
	return &NodeStore{global2local: make(map[int64]int)}
}

// Len returns the arena length (includes free slots); use NumValid for the
// count of occupied slots
func (o *NodeStore) Len() int { return len(o.nodes) }

// Valid reports whether local index L holds an occupied slot
func (o *NodeStore) Valid(L int) bool {
	return L >= 0 && L < len(o.nodes) && !o.nodes[L].isFree()
}

// NumValid counts occupied slots
func (o *NodeStore) NumValid() (n int) {
	for i := range o.nodes {
		if !o.nodes[i].isFree() {
			n++
		}
	}
	return
}

// Node returns a pointer to the node record at local index L; panics if L
// is out of range (fatal: caller must check Valid first for speculative
// access; invalid access is a programming error)
func (o *NodeStore) Node(L int) *Node {
	return &o.nodes[L]
}

// Local returns the local index for a global id, and whether it was found
func (o *NodeStore) Local(global int64) (L int, ok bool) {
	L, ok = o.global2local[global]
	return
}

// GlobalOf returns the global id stored at local index L
func (o *NodeStore) GlobalOf(L int) int64 {
	return o.nodes[L].Global
}

// Add allocates a fresh local slot for a known global id; idempotent: if
// global already has a local slot, that slot is returned unchanged
//.
func (o *NodeStore) Add(global int64, x [3]float64, m metric.Tensor, part int) int {
	if L, ok := o.global2local[global]; ok {
		return L
	}
	var L int
	if n := len(o.free); n > 0 {
		L = o.free[n-1]
		o.free = o.free[:n-1]
	} else {
		o.nodes = append(o.nodes, Node{})
		L = len(o.nodes) - 1
	}
	o.nodes[L] = Node{X: x, M: m, Global: global, Part: part}
	o.global2local[global] = L
	o.pendingNew = append(o.pendingNew, L)
	return L
}

// Remove frees local slot L, returning it to the free list
func (o *NodeStore) Remove(L int) {
	g := o.nodes[L].Global
	delete(o.global2local, g)
	o.nodes[L] = Node{Global: freeGlobal}
	o.free = append(o.free, L)
}

// PendingNew returns the local indices added since the last
// ShiftNewGlobals (or since construction), for passes that need to inspect
// or reconcile freshly created nodes before the next ghost exchange.
func (o *NodeStore) PendingNew() []int {
	return o.pendingNew
}

// Rename reassigns local slot L's global id, rewriting the global2local
// index; used when two ranks independently create nodes at the same
// physical position (e.g. splitting the same boundary edge) and must
// converge on a single canonical global id. The caller must ensure newGlobal
// is not already held by a different local slot on this rank — if it is,
// the two local slots represent the same node and must be merged via the
// cell store instead of renamed.
func (o *NodeStore) Rename(L int, newGlobal int64) {
	old := o.nodes[L].Global
	delete(o.global2local, old)
	o.nodes[L].Global = newGlobal
	o.global2local[newGlobal] = L
}

// ShiftNewGlobals performs the deferred bulk renumbering of node globals
// added since the last call. base is added to every pending
// node's global id, and the global2local index is rebuilt for those
// entries; used after a batch of split commits whose new nodes were given
// provisional (rank-local) global ids that must be made globally unique
// before the next ghost exchange.
func (o *NodeStore) ShiftNewGlobals(base int64) {
	for _, L := range o.pendingNew {
		if o.nodes[L].isFree() {
			continue
		}
		old := o.nodes[L].Global
		delete(o.global2local, old)
		o.nodes[L].Global += base
		o.global2local[o.nodes[L].Global] = L
	}
	o.pendingNew = o.pendingNew[:0]
}

// IncrementAges resets Age to 0 on every valid node in `touched` and
// increments Age on every other valid node
func (o *NodeStore) IncrementAges(touched map[int]bool) {
	for L := range o.nodes {
		if o.nodes[L].isFree() {
			continue
		}
		if touched[L] {
			o.nodes[L].Age = 0
		} else {
			o.nodes[L].Age++
		}
	}
}

// MaxAge returns the maximum Age over all valid nodes
func (o *NodeStore) MaxAge() (max int) {
	for i := range o.nodes {
		if o.nodes[i].isFree() {
			continue
		}
		if o.nodes[i].Age > max {
			max = o.nodes[i].Age
		}
	}
	return
}

// CheckGlobalLookup verifies that for every local index, either the slot is
// free, or global2local(local2global(L)) == L.
func (o *NodeStore) CheckGlobalLookup() {
	for L := range o.nodes {
		if o.nodes[L].isFree() {
			continue
		}
		g := o.nodes[L].Global
		got, ok := o.global2local[g]
		if !ok || got != L {
			o.DumpNode(L)
			chk.Panic("node store: global lookup broken at local=%d global=%d", L, g)
		}
	}
}
