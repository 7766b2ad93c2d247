// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package operator implements the four local mesh-modification operators:
// split, collapse, swap, smooth. Each is a function over a Context that
// either commits a mutation to the mesh or declines, returning a
// reflog.Status.
package operator

import (
	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/config"
	"github.com/dpedroso/refmesh/mesh"
)

// Context bundles every collaborator an operator needs: the mesh itself,
// the CAD-parameter record store and oracle, and the adaptation
// configuration.
type Context struct {
	Nodes      *mesh.NodeStore
	Cells      *mesh.CellStore
	CAD        *cadgeom.Store
	Oracle     cadgeom.Oracle
	Cfg        *config.Config
	nextGlobal int64
}

// NewContext returns an operator Context seeded with the given
// collaborators; nextGlobal seeds the fresh-global-id counter used by
// Split (must exceed every global id currently in use).
func NewContext(nodes *mesh.NodeStore, cells *mesh.CellStore, cad *cadgeom.Store, oracle cadgeom.Oracle, cfg *config.Config, nextGlobal int64) *Context {
	return &Context{Nodes: nodes, Cells: cells, CAD: cad, Oracle: oracle, Cfg: cfg, nextGlobal: nextGlobal}
}

// freshGlobal returns a new provisional global id, incrementing the
// counter; these are rank-local and must be deduplicated by
// NodeStore.ShiftNewGlobals before the next ghost exchange.
func (c *Context) freshGlobal() int64 {
	g := c.nextGlobal
	c.nextGlobal++
	return g
}

func coordsOf(c *Context, L int) []float64 {
	n := c.Nodes.Node(L)
	return []float64{n.X[0], n.X[1], n.X[2]}
}
