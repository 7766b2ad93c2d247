// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"fmt"

	"github.com/cpmech/gosl/io"
)

// DumpNode prints a one-line diagnostic for node L; the fatal-error path
// calls this before aborting so the offending record is on the console.
func (o *NodeStore) DumpNode(L int) {
	if !o.Valid(L) {
		io.Pfred("node %d: FREE\n", L)
		return
	}
	n := o.nodes[L]
	io.Pf("node %4d  global=%-6d part=%-3d age=%-3d x=(%.6g, %.6g, %.6g)\n",
		L, n.Global, n.Part, n.Age, n.X[0], n.X[1], n.X[2])
}

// DumpCell prints a one-line diagnostic for cell (k, idx).
func (s *CellStore) DumpCell(k Kind, idx int) {
	if !s.Valid(k, idx) {
		io.Pfred("%v %d: FREE\n", k, idx)
		return
	}
	c := s.Cell(k, idx)
	io.Pf("%-7v %4d  id=%-4d nodes=%v\n", k, idx, c.ID, globalsOf(s.Nodes, c.Nodes))
}

func globalsOf(nodes *NodeStore, locals []int) []int64 {
	out := make([]int64, len(locals))
	for i, L := range locals {
		out[i] = nodes.GlobalOf(L)
	}
	return out
}

// Inspect returns a human-readable summary of the mesh's occupancy (how
// full each arena is); used by the adaptation driver's survey logging.
func (s *CellStore) Inspect() string {
	out := fmt.Sprintf("nodes: %d/%d valid\n", s.Nodes.NumValid(), s.Nodes.Len())
	for k := Kind(0); k < numKinds; k++ {
		out += fmt.Sprintf("%-7v: %d/%d valid\n", k, s.NumValid(k), s.Cap(k))
	}
	return out
}
