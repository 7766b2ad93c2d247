// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import "github.com/cpmech/gosl/chk"

// CellStore is the family of per-kind cell arenas plus the shared node
// store they index into.
type CellStore struct {
	Nodes  *NodeStore
	arenas [numKinds]*kindArena
}

// NewCellStore returns an empty cell store bound to the given node store
func NewCellStore(nodes *NodeStore) *CellStore {
	s := &CellStore{Nodes: nodes}
	for k := Kind(0); k < numKinds; k++ {
		s.arenas[k] = newKindArena(k)
	}
	return s
}

func (s *CellStore) arena(k Kind) *kindArena { return s.arenas[k] }

// NumValid counts occupied cells of kind k
func (s *CellStore) NumValid(k Kind) (n int) {
	a := s.arena(k)
	for i := range a.cells {
		if !a.cells[i].isFree() {
			n++
		}
	}
	return
}

// Cap returns the arena length of kind k (includes free slots)
func (s *CellStore) Cap(k Kind) int { return len(s.arena(k).cells) }

// Valid reports whether (k, idx) is an occupied cell
func (s *CellStore) Valid(k Kind, idx int) bool {
	a := s.arena(k)
	return idx >= 0 && idx < len(a.cells) && !a.cells[idx].isFree()
}

// Cell returns a pointer to the cell record (k, idx); panics only when idx
// is out of range (a freed slot is returned unchecked), mirroring
// NodeStore.Node's "caller must check Valid first" contract.
func (s *CellStore) Cell(k Kind, idx int) *Cell { return &s.arena(k).cells[idx] }

// Lookup returns the cell of kind k with the given unordered local node
// set, if one exists, in O(deg).
func (s *CellStore) Lookup(k Kind, nodes []int) (idx int, ok bool) {
	return s.arena(k).lookup(nodes)
}

// Add creates or returns the existing cell of kind k with the given node
// set. id is the CAD face/edge id for
// boundary kinds, or -1.
func (s *CellStore) Add(k Kind, nodes []int, id int) int {
	if len(nodes) != DefOf(k).NodePer {
		chk.Panic("mesh: Add(%v): wrong node count %d, want %d", k, len(nodes), DefOf(k).NodePer)
	}
	return s.arena(k).add(nodes, id)
}

// Remove deletes cell (k, idx)
func (s *CellStore) Remove(k Kind, idx int) { s.arena(k).remove(idx) }

// ReplaceWhole substitutes the entire node list of cell (k, idx)
func (s *CellStore) ReplaceWhole(k Kind, idx int, nodes []int) {
	if len(nodes) != DefOf(k).NodePer {
		chk.Panic("mesh: ReplaceWhole(%v): wrong node count %d, want %d", k, len(nodes), DefOf(k).NodePer)
	}
	s.arena(k).replaceWhole(idx, nodes)
}

// ReplaceNodeInCell substitutes oldNode by newNode within one cell
func (s *CellStore) ReplaceNodeInCell(k Kind, idx, oldNode, newNode int) {
	s.arena(k).replaceNodeInCell(idx, oldNode, newNode)
}

// ReplaceNodeEverywhere substitutes oldNode by newNode across every cell
// of kind k incident to oldNode; used by edge-collapse to retarget the
// cavity onto the surviving node.
func (s *CellStore) ReplaceNodeEverywhere(k Kind, oldNode, newNode int) (touched []int) {
	a := s.arena(k)
	for _, idx := range append([]int(nil), a.adj[oldNode]...) {
		a.replaceNodeInCell(idx, oldNode, newNode)
		touched = append(touched, idx)
	}
	return
}

// ListWith2 returns every cell of kind k containing both node0 and node1
func (s *CellStore) ListWith2(k Kind, node0, node1 int) []int {
	return s.arena(k).listWith2(node0, node1)
}

// DegreeWith2 counts cells of kind k containing both node0 and node1
func (s *CellStore) DegreeWith2(k Kind, node0, node1 int) int {
	return s.arena(k).degreeWith2(node0, node1)
}

// WithFace returns the (up to two) cells of kind k sharing the given face
// node set
func (s *CellStore) WithFace(k Kind, faceNodes []int) (cell0, cell1, n int) {
	return s.arena(k).withFace(faceNodes)
}

// NodeListAround returns the distinct nodes sharing a cell of kind k with
// `node`
func (s *CellStore) NodeListAround(k Kind, node int) []int {
	return s.arena(k).nodeListAround(node)
}

// CellsAt returns every cell of kind k incident to `node` (a copy, safe to
// mutate while iterating)
func (s *CellStore) CellsAt(k Kind, node int) []int {
	return append([]int(nil), s.arena(k).adj[node]...)
}

// ForEach calls fn(idx, *Cell) for every occupied cell of kind k, in
// storage order (ascending idx); fn must not add or remove cells of kind
// k during iteration.
func (s *CellStore) ForEach(k Kind, fn func(idx int, c *Cell)) {
	a := s.arena(k)
	for idx := range a.cells {
		if !a.cells[idx].isFree() {
			fn(idx, &a.cells[idx])
		}
	}
}

// CheckNodeRefs verifies that every occupied cell's node references
// point at occupied node-store slots.
func (s *CellStore) CheckNodeRefs() {
	for k := Kind(0); k < numKinds; k++ {
		s.ForEach(k, func(idx int, c *Cell) {
			for _, L := range c.Nodes {
				if !s.Nodes.Valid(L) {
					s.DumpCell(k, idx)
					s.Nodes.DumpNode(L)
					chk.Panic("mesh: %v[%d] references freed node %d", k, idx, L)
				}
			}
		})
	}
}

// CheckUniqueCells verifies that no two occupied cells of the same kind
// share an identical node set.
func (s *CellStore) CheckUniqueCells() {
	for k := Kind(0); k < numKinds; k++ {
		a := s.arena(k)
		seen := make(map[string][]int)
		s.ForEach(k, func(idx int, c *Cell) {
			key := canonicalKey(c.Nodes)
			seen[key] = append(seen[key], idx)
		})
		for key, idxs := range seen {
			if len(idxs) > 1 {
				for _, idx := range idxs {
					s.DumpCell(k, idx)
				}
				chk.Panic("mesh: %v cells %v share node set %s", k, idxs, key)
			}
		}
		_ = a
	}
}

func canonicalKey(nodes []int) string {
	sorted := append([]int(nil), nodes...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	buf := make([]byte, 0, len(sorted)*8)
	for _, v := range sorted {
		buf = appendInt(buf, v)
		buf = append(buf, ',')
	}
	return string(buf)
}

func appendInt(buf []byte, v int) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	neg := v < 0
	if neg {
		v = -v
	}
	start := len(buf)
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	if neg {
		buf = append(buf, '-')
	}
	// reverse in place
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}
