// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import "sort"

// Edge is a derived record: two global node-store local indices (lower
// first) plus the count of volume cells sharing it, used by the
// adaptation driver's survey pass.
type Edge struct {
	N0, N1 int
	Count  int // number of volume cells (tet or prism) incident to this edge
}

// Face is a derived record: three global node-store local indices
// (sorted) plus the count of Tet cells sharing it; a Face with Count==1 is
// a boundary face (no opposing tet), Count==2 is interior.
type Face struct {
	Nodes [3]int
	Count int
}

func edgeKey(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func faceKey(a, b, c int) [3]int {
	s := []int{a, b, c}
	sort.Ints(s)
	return [3]int{s[0], s[1], s[2]}
}

// EdgeTable rebuilds the derived edge table: one entry per distinct node
// pair appearing as a tet edge or as a prism triangular-face edge, with
// its incident-cell count. Prism lateral (extrusion) edges are left out:
// the one-cell-thick layer a prism column represents is never subdivided
// along the extrusion direction, so they are not adaptation candidates.
// Built fresh each time it's needed.
func (s *CellStore) EdgeTable() []Edge {
	counts := make(map[[2]int]int)
	def := DefOf(Tet)
	s.ForEach(Tet, func(_ int, c *Cell) {
		for _, e := range def.Edges {
			a, b := edgeKey(c.Nodes[e[0]], c.Nodes[e[1]])
			counts[[2]int{a, b}]++
		}
	})
	priDef := DefOf(Prism)
	s.ForEach(Prism, func(_ int, c *Cell) {
		for _, e := range priDef.Edges[:6] {
			a, b := edgeKey(c.Nodes[e[0]], c.Nodes[e[1]])
			counts[[2]int{a, b}]++
		}
	})
	out := make([]Edge, 0, len(counts))
	for k, n := range counts {
		out = append(out, Edge{N0: k[0], N1: k[1], Count: n})
	}
	return out
}

// FaceTable rebuilds the derived face table from the Tet arena: one entry
// per distinct triangular face with its incident-tet count (1 = boundary,
// 2 = interior).
func (s *CellStore) FaceTable() []Face {
	counts := make(map[[3]int]int)
	def := DefOf(Tet)
	s.ForEach(Tet, func(_ int, c *Cell) {
		for _, f := range def.Faces {
			key := faceKey(c.Nodes[f[0]], c.Nodes[f[1]], c.Nodes[f[2]])
			counts[key]++
		}
	})
	out := make([]Face, 0, len(counts))
	for k, n := range counts {
		out = append(out, Face{Nodes: k, Count: n})
	}
	return out
}

// TetsSharingFace returns the Tet cell indices whose node set contains
// the three given nodes (0, 1, or 2 results for a well-formed mesh).
func (s *CellStore) TetsSharingFace(a, b, c int) []int {
	cell0, cell1, n := s.WithFace(Tet, []int{a, b, c})
	switch n {
	case 0:
		return nil
	case 1:
		return []int{cell0}
	default:
		return []int{cell0, cell1}
	}
}

// OpposingNode returns the 4th node of the tet at idx that is not one of
// the given three face nodes; used by the 2<->3 and 3<->2 swap operators
// to find the two apex nodes across a shared face.
func (s *CellStore) OpposingNode(idx int, a, b, c int) (int, bool) {
	cell := s.Cell(Tet, idx)
	for _, n := range cell.Nodes {
		if n != a && n != b && n != c {
			return n, true
		}
	}
	return 0, false
}
