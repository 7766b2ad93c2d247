// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"sort"

	"github.com/cpmech/gosl/chk"
)

// growMinCap and growFactor set the arena growth policy: geometric,
// max(5000, 1.5x current), bounded below 2^30 to stay in signed 32-bit.
const (
	growMinCap  = 5000
	growFactor  = 1.5
	growMaxCap  = 1 << 30
)

// Cell is one cell record: its node list (length == DefOf(kind).NodePer)
// and, for boundary kinds, the CAD face/edge id used to look up CAD
// association. Nodes are local node-store indices.
type Cell struct {
	Nodes []int
	ID    int // CAD id for boundary kinds; -1 otherwise or when free
}

func (c *Cell) isFree() bool { return c.Nodes == nil }

// CellRef identifies a cell by (kind, index)
type CellRef struct {
	Kind Kind
	Idx  int
}

// kindArena is one kind's parallel arena plus its node→cell adjacency
// index.
type kindArena struct {
	def   KindDef
	cells []Cell
	free  []int
	adj   map[int][]int // node local index -> cell indices incident to it
}

func newKindArena(k Kind) *kindArena {
	return &kindArena{def: DefOf(k), adj: make(map[int][]int)}
}

func (a *kindArena) grow() {
	if len(a.cells) < cap(a.cells) {
		return
	}
	newCap := int(float64(len(a.cells)) * growFactor)
	if newCap < growMinCap {
		newCap = growMinCap
	}
	if newCap > growMaxCap {
		newCap = growMaxCap
	}
	grown := make([]Cell, len(a.cells), newCap)
	copy(grown, a.cells)
	a.cells = grown
}

func (a *kindArena) allocSlot() int {
	if n := len(a.free); n > 0 {
		L := a.free[n-1]
		a.free = a.free[:n-1]
		return L
	}
	a.grow()
	a.cells = append(a.cells, Cell{})
	return len(a.cells) - 1
}

func sameNodeSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]int(nil), a...)
	sb := append([]int(nil), b...)
	sort.Ints(sa)
	sort.Ints(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// lookup finds the cell (if any) with the given unordered node set,
// scanning the adjacency list of the lowest-degree member node so the
// search is O(deg).
func (a *kindArena) lookup(nodes []int) (idx int, ok bool) {
	if len(nodes) == 0 {
		return -1, false
	}
	best := nodes[0]
	bestDeg := len(a.adj[best])
	for _, n := range nodes[1:] {
		if d := len(a.adj[n]); d < bestDeg {
			best, bestDeg = n, d
		}
	}
	for _, c := range a.adj[best] {
		if sameNodeSet(a.cells[c].Nodes, nodes) {
			return c, true
		}
	}
	return -1, false
}

func (a *kindArena) linkAdjacency(idx int) {
	for _, n := range a.cells[idx].Nodes {
		a.adj[n] = append(a.adj[n], idx)
	}
}

func (a *kindArena) unlinkAdjacency(idx int) {
	for _, n := range a.cells[idx].Nodes {
		lst := a.adj[n]
		for i, c := range lst {
			if c == idx {
				lst[i] = lst[len(lst)-1]
				lst = lst[:len(lst)-1]
				break
			}
		}
		if len(lst) == 0 {
			delete(a.adj, n)
		} else {
			a.adj[n] = lst
		}
	}
}

// add creates a new cell record, enforcing "exactly one record exists for
// any given unordered node set within a kind": if a
// cell with this node set already exists, its index is returned instead of
// creating a duplicate.
func (a *kindArena) add(nodes []int, id int) int {
	if idx, ok := a.lookup(nodes); ok {
		return idx
	}
	idx := a.allocSlot()
	cp := append([]int(nil), nodes...)
	a.cells[idx] = Cell{Nodes: cp, ID: id}
	a.linkAdjacency(idx)
	return idx
}

// remove deletes cell idx, unlinking it from adjacency and returning the
// slot to the free list.
func (a *kindArena) remove(idx int) {
	if a.cells[idx].isFree() {
		chk.Panic("cell store: double remove of kind=%v idx=%d", a.def.Kind, idx)
	}
	a.unlinkAdjacency(idx)
	a.cells[idx] = Cell{}
	a.free = append(a.free, idx)
}

// replaceWhole substitutes the entire node list of cell idx, relinking
// adjacency.
func (a *kindArena) replaceWhole(idx int, nodes []int) {
	a.unlinkAdjacency(idx)
	cp := append([]int(nil), nodes...)
	a.cells[idx].Nodes = cp
	a.linkAdjacency(idx)
}

// replaceNodeInCell substitutes oldNode with newNode within a single cell,
// relinking adjacency only for that one node slot.
func (a *kindArena) replaceNodeInCell(idx, oldNode, newNode int) {
	changed := false
	for i, n := range a.cells[idx].Nodes {
		if n == oldNode {
			a.cells[idx].Nodes[i] = newNode
			changed = true
		}
	}
	if !changed {
		return
	}
	lst := a.adj[oldNode]
	for i, c := range lst {
		if c == idx {
			lst[i] = lst[len(lst)-1]
			lst = lst[:len(lst)-1]
			break
		}
	}
	if len(lst) == 0 {
		delete(a.adj, oldNode)
	} else {
		a.adj[oldNode] = lst
	}
	a.adj[newNode] = append(a.adj[newNode], idx)
}

// listWith2 returns every cell index containing both node0 and node1;
// the edge-cavity enumeration split and collapse build on.
func (a *kindArena) listWith2(node0, node1 int) (cells []int) {
	for _, c := range a.adj[node0] {
		for _, n := range a.cells[c].Nodes {
			if n == node1 {
				cells = append(cells, c)
				break
			}
		}
	}
	return
}

// degreeWith2 counts cells containing both node0 and node1
func (a *kindArena) degreeWith2(node0, node1 int) int {
	return len(a.listWith2(node0, node1))
}

// withFace returns up to two cells sharing the given face node set; the
// tet 2<->3 swap uses it to find the cell on the far side of a shared
// face.
func (a *kindArena) withFace(faceNodes []int) (cell0, cell1 int, n int) {
	cell0, cell1 = -1, -1
	if len(faceNodes) == 0 {
		return
	}
	seen := map[int]bool{}
	for _, fn := range faceNodes {
		for _, c := range a.adj[fn] {
			if seen[c] {
				continue
			}
			if hasFace(a.cells[c].Nodes, faceNodes) {
				seen[c] = true
				if n == 0 {
					cell0 = c
				} else if n == 1 {
					cell1 = c
				}
				n++
			}
		}
	}
	return
}

func hasFace(cellNodes, faceNodes []int) bool {
	set := make(map[int]bool, len(cellNodes))
	for _, n := range cellNodes {
		set[n] = true
	}
	for _, n := range faceNodes {
		if !set[n] {
			return false
		}
	}
	return true
}

// nodeListAround returns the distinct set of nodes (excluding `node`
// itself) that share any cell of this kind with `node`.
func (a *kindArena) nodeListAround(node int) (around []int) {
	seen := map[int]bool{node: true}
	for _, c := range a.adj[node] {
		for _, n := range a.cells[c].Nodes {
			if !seen[n] {
				seen[n] = true
				around = append(around, n)
			}
		}
	}
	return
}
