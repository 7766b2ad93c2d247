// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

// CompactStats reports how many slots a Compact pass reclaimed, per kind
// plus the node store, for logging.
type CompactStats struct {
	NodesBefore, NodesAfter int
	CellsBefore, CellsAfter [numKinds]int
}

// Compact repacks the node store and every cell arena to the front,
// eliminating free-list fragmentation; node-store and cell local indices
// are invalidated and must not be retained across this call.
// Returns the local-index remapping old->new for nodes, and per-kind for
// cells, so callers holding external references (e.g. a CAD boundary
// cache keyed by local id) can translate them.
func Compact(s *CellStore) (nodeMap []int, cellMaps [numKinds][]int, stats CompactStats) {
	stats.NodesBefore = len(s.Nodes.nodes)
	for k := Kind(0); k < numKinds; k++ {
		stats.CellsBefore[k] = len(s.arenas[k].cells)
	}

	nodeMap = make([]int, len(s.Nodes.nodes))
	for i := range nodeMap {
		nodeMap[i] = -1
	}
	newNodes := make([]Node, 0, s.Nodes.NumValid())
	for L := range s.Nodes.nodes {
		if s.Nodes.nodes[L].isFree() {
			continue
		}
		nodeMap[L] = len(newNodes)
		newNodes = append(newNodes, s.Nodes.nodes[L])
	}
	s.Nodes.nodes = newNodes
	s.Nodes.free = nil
	s.Nodes.global2local = make(map[int64]int, len(newNodes))
	for L := range s.Nodes.nodes {
		s.Nodes.global2local[s.Nodes.nodes[L].Global] = L
	}
	s.Nodes.pendingNew = s.Nodes.pendingNew[:0]
	stats.NodesAfter = len(newNodes)

	for k := Kind(0); k < numKinds; k++ {
		a := s.arenas[k]
		cm := make([]int, len(a.cells))
		for i := range cm {
			cm[i] = -1
		}
		newCells := make([]Cell, 0, len(a.cells)-len(a.free))
		for idx := range a.cells {
			if a.cells[idx].isFree() {
				continue
			}
			cm[idx] = len(newCells)
			c := a.cells[idx]
			for i, L := range c.Nodes {
				c.Nodes[i] = nodeMap[L]
			}
			newCells = append(newCells, c)
		}
		a.cells = newCells
		a.free = nil
		a.adj = make(map[int][]int, len(newCells))
		for idx := range a.cells {
			a.linkAdjacency(idx)
		}
		cellMaps[k] = cm
		stats.CellsAfter[k] = len(newCells)
	}
	return
}
