// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"math"

	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/config"
	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
)

// bipyramid builds two regular (quality 1, unit edge) tets sharing
// equilateral face (A,B,C): one apexed at D above the face, one at E below,
// all under the identity metric. Returns the Context and the five local
// node indices in order A,B,C,D,E.
func bipyramid() (*Context, [5]int) {
	nodes := mesh.NewNodeStore()
	cells := mesh.NewCellStore(nodes)
	cad := cadgeom.NewStore()
	u := metric.Identity()

	sqrt3 := math.Sqrt(3)
	A := nodes.Add(0, [3]float64{0, 0, 0}, u, 0)
	B := nodes.Add(1, [3]float64{1, 0, 0}, u, 0)
	C := nodes.Add(2, [3]float64{0.5, sqrt3 / 2, 0}, u, 0)
	h := math.Sqrt(2.0 / 3.0)
	D := nodes.Add(3, [3]float64{0.5, sqrt3 / 6, h}, u, 0)
	E := nodes.Add(4, [3]float64{0.5, sqrt3 / 6, -h}, u, 0)

	cells.Add(mesh.Tet, []int{A, B, C, D}, -1)
	cells.Add(mesh.Tet, []int{A, B, C, E}, -1)
	cells.Add(mesh.Tri, []int{A, B, C}, -1)

	ctx := NewContext(nodes, cells, cad, cadgeom.FreeOracle{}, config.Default(), 100)
	return ctx, [5]int{A, B, C, D, E}
}

// prismColumn builds a single triangular prism extruded from equilateral
// floor (0,1,2) at z=0 to top (3,4,5) at z=1, with both triangular faces
// and one lateral quad (on the (0,1)/(3,4) side) as boundary cells, all
// under the identity metric. Returns the Context and the six local node
// indices bottom-first.
func prismColumn() (*Context, [6]int) {
	nodes := mesh.NewNodeStore()
	cells := mesh.NewCellStore(nodes)
	cad := cadgeom.NewStore()
	u := metric.Identity()

	sqrt3 := math.Sqrt(3)
	var n [6]int
	coords := [6][3]float64{
		{0, 0, 0}, {1, 0, 0}, {0.5, sqrt3 / 2, 0},
		{0, 0, 1}, {1, 0, 1}, {0.5, sqrt3 / 2, 1},
	}
	for i, x := range coords {
		n[i] = nodes.Add(int64(i), x, u, 0)
	}

	cells.Add(mesh.Prism, []int{n[0], n[1], n[2], n[3], n[4], n[5]}, -1)
	cells.Add(mesh.Tri, []int{n[0], n[1], n[2]}, -1)
	cells.Add(mesh.Tri, []int{n[3], n[4], n[5]}, -1)
	cells.Add(mesh.Quad, []int{n[0], n[1], n[4], n[3]}, -1)

	ctx := NewContext(nodes, cells, cad, cadgeom.FreeOracle{}, config.Default(), 100)
	return ctx, n
}

// splitSquare builds the two triangles formed by splitting unit square
// A,B,C,D (in order around the perimeter) along diagonal (A,C); apex B sits
// on one side, apex D on the other. All under the identity metric.
func splitSquare() (ctx *Context, A, B, C, D int) {
	nodes := mesh.NewNodeStore()
	cells := mesh.NewCellStore(nodes)
	cad := cadgeom.NewStore()
	u := metric.Identity()

	A = nodes.Add(0, [3]float64{0, 0, 0}, u, 0)
	B = nodes.Add(1, [3]float64{1, 0, 0}, u, 0)
	C = nodes.Add(2, [3]float64{1, 1, 0}, u, 0)
	D = nodes.Add(3, [3]float64{0, 1, 0}, u, 0)

	cells.Add(mesh.Tri, []int{A, C, B}, -1)
	cells.Add(mesh.Tri, []int{A, C, D}, -1)

	ctx = NewContext(nodes, cells, cad, cadgeom.FreeOracle{}, config.Default(), 100)
	return
}
