// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"math"

	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
)

// cellQuality dispatches to metric.TriangleQuality or metric.TetQuality
// by kind, given the cell's local node list in canonical order.
func cellQuality(c *Context, k mesh.Kind, nodes []int) float64 {
	switch k {
	case mesh.Tri:
		x0, m0 := coordsOf(c, nodes[0]), c.Nodes.Node(nodes[0]).M
		x1, m1 := coordsOf(c, nodes[1]), c.Nodes.Node(nodes[1]).M
		x2, m2 := coordsOf(c, nodes[2]), c.Nodes.Node(nodes[2]).M
		return metric.TriangleQuality(x0, x1, x2, m0, m1, m2)
	case mesh.Tet:
		x0, m0 := coordsOf(c, nodes[0]), c.Nodes.Node(nodes[0]).M
		x1, m1 := coordsOf(c, nodes[1]), c.Nodes.Node(nodes[1]).M
		x2, m2 := coordsOf(c, nodes[2]), c.Nodes.Node(nodes[2]).M
		x3, m3 := coordsOf(c, nodes[3]), c.Nodes.Node(nodes[3]).M
		return metric.TetQuality(x0, x1, x2, x3, m0, m1, m2, m3)
	}
	return 1 // peripheral kinds are not quality-checked by the operators
}

// minQuality returns the minimum cellQuality over a set of (kind, local
// node list) candidates, plus positive infinity if the set is empty.
func minQuality(c *Context, k mesh.Kind, cavity [][]int) float64 {
	m := math.Inf(1)
	for _, nodes := range cavity {
		if q := cellQuality(c, k, nodes); q < m {
			m = q
		}
	}
	return m
}

// edgeRatioOf returns the metric edge ratio between local nodes n0, n1
func edgeRatioOf(c *Context, n0, n1 int) float64 {
	x0, x1 := coordsOf(c, n0), coordsOf(c, n1)
	m0, m1 := c.Nodes.Node(n0).M, c.Nodes.Node(n1).M
	return metric.EdgeRatio(x0, x1, m0, m1)
}
