// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/refmesh/metric"
)

func newTetMesh() (*NodeStore, *CellStore, []int) {
	nodes := NewNodeStore()
	cells := NewCellStore(nodes)
	u := metric.Identity()
	L0 := nodes.Add(0, [3]float64{0, 0, 0}, u, 0)
	L1 := nodes.Add(1, [3]float64{1, 0, 0}, u, 0)
	L2 := nodes.Add(2, [3]float64{0, 1, 0}, u, 0)
	L3 := nodes.Add(3, [3]float64{0, 0, 1}, u, 0)
	cells.Add(Tet, []int{L0, L1, L2, L3}, -1)
	return nodes, cells, []int{L0, L1, L2, L3}
}

func TestCellStoreAddIsIdempotent(tst *testing.T) {
	chk.PrintTitle("CellStoreAddIsIdempotent")
	_, cells, locals := newTetMesh()
	idx0, ok := cells.Lookup(Tet, locals)
	if !ok {
		tst.Fatal("expected tet to exist")
	}
	idx1 := cells.Add(Tet, []int{locals[3], locals[2], locals[1], locals[0]}, -1)
	if idx0 != idx1 {
		tst.Errorf("re-adding same node set under different order should return same idx: %d != %d", idx0, idx1)
	}
	if cells.NumValid(Tet) != 1 {
		tst.Errorf("expected exactly one tet, got %d", cells.NumValid(Tet))
	}
}

func TestCellStoreRemoveFreesSlot(tst *testing.T) {
	chk.PrintTitle("CellStoreRemoveFreesSlot")
	_, cells, locals := newTetMesh()
	idx, _ := cells.Lookup(Tet, locals)
	cells.Remove(Tet, idx)
	if cells.NumValid(Tet) != 0 {
		tst.Errorf("expected zero valid tets after remove")
	}
	if cells.Valid(Tet, idx) {
		tst.Errorf("removed cell should be invalid")
	}
	newLocals := []int{locals[0], locals[1], locals[2], locals[3]}
	idx2 := cells.Add(Tet, newLocals, -1)
	if idx2 != idx {
		tst.Errorf("expected reused free slot %d, got %d", idx, idx2)
	}
}

func TestCellStoreReplaceNodeEverywhere(tst *testing.T) {
	chk.PrintTitle("CellStoreReplaceNodeEverywhere")
	nodes, cells, locals := newTetMesh()
	u := metric.Identity()
	L4 := nodes.Add(4, [3]float64{5, 5, 5}, u, 0)
	touched := cells.ReplaceNodeEverywhere(Tet, locals[0], L4)
	if len(touched) != 1 {
		tst.Errorf("expected 1 touched cell, got %d", len(touched))
	}
	c := cells.Cell(Tet, touched[0])
	found := false
	for _, n := range c.Nodes {
		if n == L4 {
			found = true
		}
		if n == locals[0] {
			tst.Errorf("old node reference should be gone")
		}
	}
	if !found {
		tst.Errorf("new node reference should be present")
	}
}

func TestCellStoreInvariants(tst *testing.T) {
	chk.PrintTitle("CellStoreInvariants")
	nodes, cells, _ := newTetMesh()
	nodes.CheckGlobalLookup()
	cells.CheckNodeRefs()
	cells.CheckUniqueCells()
}

func TestCellStoreEdgeFaceTables(tst *testing.T) {
	chk.PrintTitle("CellStoreEdgeFaceTables")
	_, cells, _ := newTetMesh()
	edges := cells.EdgeTable()
	if len(edges) != 6 {
		tst.Errorf("expected 6 edges for one tet, got %d", len(edges))
	}
	faces := cells.FaceTable()
	if len(faces) != 4 {
		tst.Errorf("expected 4 faces for one tet, got %d", len(faces))
	}
	for _, f := range faces {
		if f.Count != 1 {
			tst.Errorf("single-tet face should have count 1, got %d", f.Count)
		}
	}
}

func TestCompactRemapsReferences(tst *testing.T) {
	chk.PrintTitle("CompactRemapsReferences")
	nodes, cells, locals := newTetMesh()
	// add and then free a fifth node so the node store holds a free slot
	// after the still-live tet's nodes for Compact to squeeze out
	u := metric.Identity()
	L4 := nodes.Add(4, [3]float64{9, 9, 9}, u, 0)
	nodes.Remove(L4)

	nodeMap, cellMaps, stats := Compact(cells)
	if stats.NodesAfter != 4 {
		tst.Errorf("expected 4 live nodes after compact, got %d", stats.NodesAfter)
	}
	for _, old := range locals {
		if nodeMap[old] < 0 {
			tst.Errorf("live node %d should have a remap", old)
		}
	}
	tetIdx, ok := cells.Lookup(Tet, []int{nodeMap[locals[0]], nodeMap[locals[1]], nodeMap[locals[2]], nodeMap[locals[3]]})
	if !ok {
		tst.Errorf("tet should be findable by remapped node set after compact")
	}
	if cellMaps[Tet][tetIdx] < 0 {
		tst.Errorf("live cell should have a remap")
	}
	nodes.CheckGlobalLookup()
	cells.CheckNodeRefs()
}

func TestDegenerateEmptyAdd(tst *testing.T) {
	chk.PrintTitle("DegenerateEmptyAdd")
	defer func() {
		if r := recover(); r == nil {
			tst.Errorf("expected panic on wrong node count")
		}
	}()
	_, cells, _ := newTetMesh()
	cells.Add(Tet, []int{0, 1}, -1)
}
