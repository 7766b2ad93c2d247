// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp implements the mesh and metric file input/output boundary:
// reading a mesh file must produce a node set with coordinates, metrics,
// globals and parts, a cell set per kind with nodes and CAD ids, and a
// CAD-parameter record set; writing serializes the same back out. The
// operator core never depends on this package, only on what it produces.
package inp

import (
	"encoding/json"

	"github.com/cpmech/gosl/utl"

	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
	"github.com/dpedroso/refmesh/reflog"
)

// Vert holds vertex data
type Vert struct {
	Id   int64     // global id, invariant across partitions
	Part int       // owning partition rank
	C    []float64 // coordinates (size==3)
	M    []float64 // metric upper-triangular entries (size==6): m11,m12,m13,m22,m23,m33
}

// Cel holds cell data
type Cel struct {
	Type  string  // kind: "seg", "tri", "tet", "quad", "prism", "pyramid", "hex"
	Verts []int64 // vertex global ids
	Id    int     // CAD face/edge id for boundary kinds; -1 otherwise
}

// Par holds one CAD-parameter record
type Par struct {
	Vert  int64     // vertex global id
	Type  string    // entity layer: "node", "edge" or "face"
	Id    int       // 1-based CAD entity id
	P     []float64 // t (size==1) or u,v (size==2)
	Jump  float64   // non-zero when an edge parameter threads a periodic face
	Degen float64   // non-zero when a face parameter lies on a degeneracy
}

// Msh holds a mesh for adaptation
type Msh struct {
	Verts []*Vert
	Cells []*Cel
	Pars  []*Par
}

// kindnames maps the file's cell type strings to mesh kinds
var kindnames = map[string]mesh.Kind{
	"seg": mesh.Seg, "tri": mesh.Tri, "tet": mesh.Tet,
	"quad": mesh.Quad, "prism": mesh.Prism, "pyramid": mesh.Pyramid, "hex": mesh.Hex,
}

// entnames maps the file's CAD entity type strings to entity layers
var entnames = map[string]cadgeom.EntityType{
	"node": cadgeom.NodeEntity, "edge": cadgeom.EdgeEntity, "face": cadgeom.FaceEntity,
}

// ReadMsh reads a mesh file
//  Note: returns nil on errors
func ReadMsh(fn string) *Msh {

	// new mesh
	var o Msh

	// read file
	b, err := utl.ReadFile(fn)
	if reflog.LogErr(err, "msh: cannot open mesh file "+fn) {
		return nil
	}

	// decode
	if reflog.LogErr(json.Unmarshal(b, &o), "msh: cannot unmarshal mesh file "+fn) {
		return nil
	}

	// check
	if reflog.LogErrCond(len(o.Verts) < 2, "msh: mesh must have at least 2 vertices and 1 cell") {
		return nil
	}
	if reflog.LogErrCond(len(o.Cells) < 1, "msh: mesh must have at least 2 vertices and 1 cell") {
		return nil
	}
	seen := make(map[int64]bool, len(o.Verts))
	for _, v := range o.Verts {
		if reflog.LogErrCond(seen[v.Id], "msh: duplicate vertex global id %d", v.Id) {
			return nil
		}
		seen[v.Id] = true
		if reflog.LogErrCond(len(v.C) != 3, "msh: vertex %d must have 3 coordinates, not %d", v.Id, len(v.C)) {
			return nil
		}
		if reflog.LogErrCond(len(v.M) != 6, "msh: vertex %d must have 6 metric entries, not %d", v.Id, len(v.M)) {
			return nil
		}
	}
	for i, c := range o.Cells {
		kind, ok := kindnames[c.Type]
		if reflog.LogErrCond(!ok, "msh: cell %d has unknown type %q", i, c.Type) {
			return nil
		}
		np := mesh.DefOf(kind).NodePer
		if reflog.LogErrCond(len(c.Verts) != np, "msh: %s cell %d must have %d vertices, not %d", c.Type, i, np, len(c.Verts)) {
			return nil
		}
		for _, g := range c.Verts {
			if reflog.LogErrCond(!seen[g], "msh: cell %d references unknown vertex %d", i, g) {
				return nil
			}
		}
	}
	for i, p := range o.Pars {
		if _, ok := entnames[p.Type]; reflog.LogErrCond(!ok, "msh: par %d has unknown entity type %q", i, p.Type) {
			return nil
		}
		if reflog.LogErrCond(!seen[p.Vert], "msh: par %d references unknown vertex %d", i, p.Vert) {
			return nil
		}
	}
	return &o
}

// Stores builds the node store, cell store and CAD-parameter record store
// this mesh describes, returning also the first global id above every id
// in the file (the seed for fresh split-created globals).
func (o *Msh) Stores() (nodes *mesh.NodeStore, cells *mesh.CellStore, cad *cadgeom.Store, nextGlobal int64) {
	nodes = mesh.NewNodeStore()
	for _, v := range o.Verts {
		m := metric.Tensor{M11: v.M[0], M12: v.M[1], M13: v.M[2], M22: v.M[3], M23: v.M[4], M33: v.M[5]}
		nodes.Add(v.Id, [3]float64{v.C[0], v.C[1], v.C[2]}, m, v.Part)
		if v.Id >= nextGlobal {
			nextGlobal = v.Id + 1
		}
	}
	nodes.ShiftNewGlobals(0)

	cells = mesh.NewCellStore(nodes)
	for _, c := range o.Cells {
		kind := kindnames[c.Type]
		locals := make([]int, len(c.Verts))
		for i, g := range c.Verts {
			locals[i], _ = nodes.Local(g)
		}
		id := c.Id
		if !mesh.DefOf(kind).HasID {
			id = -1
		}
		cells.Add(kind, locals, id)
	}

	cad = cadgeom.NewStore()
	for _, p := range o.Pars {
		L, _ := nodes.Local(p.Vert)
		rec := cadgeom.Record{Type: entnames[p.Type], ID: p.Id, Jump: p.Jump, Degeneracy: p.Degen}
		copy(rec.Param[:], p.P)
		cad.Add(L, rec)
	}
	return
}

// BuildMsh collects the current mesh state back into a serializable Msh;
// the inverse of Stores up to free-slot compaction (free slots are not
// written).
func BuildMsh(nodes *mesh.NodeStore, cells *mesh.CellStore, cad *cadgeom.Store) *Msh {
	var o Msh
	for L := 0; L < nodes.Len(); L++ {
		if !nodes.Valid(L) {
			continue
		}
		n := nodes.Node(L)
		o.Verts = append(o.Verts, &Vert{
			Id:   n.Global,
			Part: n.Part,
			C:    []float64{n.X[0], n.X[1], n.X[2]},
			M:    []float64{n.M.M11, n.M.M12, n.M.M13, n.M.M22, n.M.M23, n.M.M33},
		})
		for _, rec := range cad.Records(L) {
			p := &Par{Vert: n.Global, Id: rec.ID, Jump: rec.Jump, Degen: rec.Degeneracy}
			switch rec.Type {
			case cadgeom.NodeEntity:
				p.Type = "node"
			case cadgeom.EdgeEntity:
				p.Type = "edge"
				p.P = []float64{rec.Param[0]}
			case cadgeom.FaceEntity:
				p.Type = "face"
				p.P = []float64{rec.Param[0], rec.Param[1]}
			}
			o.Pars = append(o.Pars, p)
		}
	}
	for _, name := range []string{"seg", "tri", "tet", "quad", "prism", "pyramid", "hex"} {
		kind := kindnames[name]
		cells.ForEach(kind, func(_ int, c *mesh.Cell) {
			globals := make([]int64, len(c.Nodes))
			for i, L := range c.Nodes {
				globals[i] = nodes.GlobalOf(L)
			}
			o.Cells = append(o.Cells, &Cel{Type: name, Verts: globals, Id: c.ID})
		})
	}
	return &o
}

// WriteMsh writes a mesh file
//  Note: returns false on errors
func WriteMsh(fn string, o *Msh) (ok bool) {
	b, err := json.MarshalIndent(o, "", "  ")
	if reflog.LogErr(err, "msh: cannot marshal mesh file "+fn) {
		return false
	}
	utl.WriteFileS(fn, string(b))
	return true
}
