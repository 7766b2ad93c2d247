// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

// OwnerRank returns the owning rank of node L: the partition recorded on
// the node record itself.
func (o *NodeStore) OwnerRank(L int) int { return o.nodes[L].Part }

// IsOwned reports whether node L is owned by rank `myRank`
func (o *NodeStore) IsOwned(L int, myRank int) bool { return o.nodes[L].Part == myRank }

// IsGhost reports whether node L is NOT owned by rank `myRank`
func (o *NodeStore) IsGhost(L int, myRank int) bool { return o.nodes[L].Part != myRank }

// CellOwnerRank computes the owning rank of a cell: the rank of the
// incident node with the lowest global id.
func (s *CellStore) CellOwnerRank(k Kind, idx int) int {
	cell := s.Cell(k, idx)
	best := int64(1)<<62 - 1
	owner := -1
	for _, L := range cell.Nodes {
		g := s.Nodes.GlobalOf(L)
		if g < best {
			best = g
			owner = s.Nodes.OwnerRank(L)
		}
	}
	return owner
}

// IsCellOwned reports whether cell (k, idx) is owned by rank `myRank`
func (s *CellStore) IsCellOwned(k Kind, idx int, myRank int) bool {
	return s.CellOwnerRank(k, idx) == myRank
}

// GhostNodes returns every node local index not owned by `myRank`
func (o *NodeStore) GhostNodes(myRank int) (ghosts []int) {
	for L := range o.nodes {
		if o.nodes[L].isFree() {
			continue
		}
		if o.nodes[L].Part != myRank {
			ghosts = append(ghosts, L)
		}
	}
	return
}

// OwnedNodes returns every node local index owned by `myRank`
func (o *NodeStore) OwnedNodes(myRank int) (owned []int) {
	for L := range o.nodes {
		if o.nodes[L].isFree() {
			continue
		}
		if o.nodes[L].Part == myRank {
			owned = append(owned, L)
		}
	}
	return
}
