// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

// Kind identifies a cell kind. Each kind has a fixed node-per, edge-per,
// face-per and a canonical local numbering stored once per kind, not per
// cell.
type Kind int

const (
	// Seg is a surface segment: 2 nodes + a CAD edge id
	Seg Kind = iota
	// Tri is a surface triangle: 3 nodes + a CAD face id
	Tri
	// Tet is a volume tetrahedron: 4 nodes, no id
	Tet
	// Quad is a peripheral kind: represented; the prism-column split is the
	// only operator that produces quads
	Quad
	// Prism is a peripheral kind; the prism-column split produces new prisms
	Prism
	// Pyramid is a peripheral kind
	Pyramid
	// Hex is a peripheral kind
	Hex
	numKinds
)

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case Seg:
		return "seg"
	case Tri:
		return "tri"
	case Tet:
		return "tet"
	case Quad:
		return "quad"
	case Prism:
		return "prism"
	case Pyramid:
		return "pyramid"
	case Hex:
		return "hex"
	}
	return "unknown"
}

// KindDef is the canonical geometry description of one cell kind: how many
// nodes/edges/faces it has, its canonical local edge numbering (pairs of
// local node indices) and its canonical local face numbering (variable
// arity: none for a seg, the triangle itself for a tri, 3 nodes per tet
// face, 4 per quad/hex face, 3 or 4 for prism and pyramid faces), and
// whether the kind carries a trailing CAD id.
type KindDef struct {
	Kind     Kind
	NodePer  int
	EdgePer  int
	FacePer  int
	Edges    [][2]int // [EdgePer][2] local node indices
	Faces    [][]int  // [FacePer][facenverts] local node indices
	HasID    bool     // boundary kinds carry a CAD face/edge id
	Gdim     int      // geometric dimension (1=seg, 2=tri/quad, 3=tet/prism/pyramid/hex)
}

// kindDefs is the factory of canonical per-kind geometry, built once.
var kindDefs = map[Kind]KindDef{
	Seg: {
		Kind: Seg, NodePer: 2, EdgePer: 1, FacePer: 0,
		Edges: [][2]int{{0, 1}},
		HasID: true, Gdim: 1,
	},
	Tri: {
		Kind: Tri, NodePer: 3, EdgePer: 3, FacePer: 1,
		Edges: [][2]int{{0, 1}, {1, 2}, {2, 0}},
		Faces: [][]int{{0, 1, 2}},
		HasID: true, Gdim: 2,
	},
	Tet: {
		Kind: Tet, NodePer: 4, EdgePer: 6, FacePer: 4,
		Edges: [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}},
		Faces: [][]int{{0, 1, 3}, {1, 2, 3}, {2, 0, 3}, {0, 2, 1}},
		HasID: false, Gdim: 3,
	},
	Quad: {
		Kind: Quad, NodePer: 4, EdgePer: 4, FacePer: 1,
		Edges: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
		Faces: [][]int{{0, 1, 2, 3}},
		HasID: true, Gdim: 2,
	},
	Prism: {
		Kind: Prism, NodePer: 6, EdgePer: 9, FacePer: 5,
		Edges: [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 4}, {4, 5}, {5, 3}, {0, 3}, {1, 4}, {2, 5}},
		Faces: [][]int{{0, 2, 1}, {3, 4, 5}, {0, 1, 4, 3}, {1, 2, 5, 4}, {2, 0, 3, 5}},
		HasID: false, Gdim: 3,
	},
	Pyramid: {
		Kind: Pyramid, NodePer: 5, EdgePer: 8, FacePer: 5,
		Edges: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 4}, {1, 4}, {2, 4}, {3, 4}},
		Faces: [][]int{{0, 3, 2, 1}, {0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4}},
		HasID: false, Gdim: 3,
	},
	Hex: {
		Kind: Hex, NodePer: 8, EdgePer: 12, FacePer: 6,
		Edges: [][2]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4},
			{0, 4}, {1, 5}, {2, 6}, {3, 7},
		},
		Faces: [][]int{
			{0, 3, 2, 1}, {4, 5, 6, 7}, {0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}, {3, 0, 4, 7},
		},
		HasID: false, Gdim: 3,
	},
}

// DefOf returns the canonical geometry for a kind
func DefOf(k Kind) KindDef { return kindDefs[k] }

// IsTet reports whether k is the Tet kind; used by the mixed-kind
// preconditions of split/collapse.
func (k Kind) IsTet() bool { return k == Tet }

// IsSurface reports whether a kind is a boundary (surface) kind
func (k Kind) IsSurface() bool { return DefOf(k).HasID }
