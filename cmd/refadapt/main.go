// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command refadapt runs the adaptation driver to convergence (or a
// maximum pass count) over a mesh and a config file. The mesh comes from
// a mesh file (-msh, with an optional companion metric file -met) or,
// when none is given, from the small built-in fixture below.
package main

import (
	"flag"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/dpedroso/refmesh/adapt"
	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/collective"
	"github.com/dpedroso/refmesh/config"
	"github.com/dpedroso/refmesh/inp"
	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
	"github.com/dpedroso/refmesh/operator"
	"github.com/dpedroso/refmesh/reflog"
)

func main() {
	defer func() {
		if mpi.Rank() == 0 {
			if err := recover(); err != nil {
				io.Pfred("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	if mpi.Rank() == 0 {
		io.PfWhite("\nrefadapt -- anisotropic mesh adaptation\n\n")
		io.Pf("Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n\n")
	}

	cfgPath := flag.String("config", "", "path to a JSON config file overriding the adaptation defaults")
	mshPath := flag.String("msh", "", "path to a mesh file; a built-in fixture mesh is adapted when empty")
	metPath := flag.String("met", "", "path to a companion metric file overriding the mesh file's metrics")
	outPath := flag.String("o", "", "path to write the adapted mesh to")
	maxPasses := flag.Int("maxpasses", 50, "maximum number of adaptation passes to run before giving up")
	verbose := flag.Bool("verbose", true, "print a survey/counters summary after every pass")
	flag.Parse()

	comm := newComm()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Read(*cfgPath)
		if reflog.Stop(comm, err, "reading config "+*cfgPath) {
			return
		}
	}

	var ctx *operator.Context
	if *mshPath != "" {
		msh := inp.ReadMsh(*mshPath)
		if msh == nil {
			return
		}
		nodes, cells, cad, nextGlobal := msh.Stores()
		if *metPath != "" {
			met := inp.ReadMet(*metPath)
			if met == nil {
				return
			}
			inp.Apply(met.Source(), nodes)
		}
		ctx = operator.NewContext(nodes, cells, cad, cadgeom.FreeOracle{}, cfg, nextGlobal)
	} else {
		ctx = fixture(comm.Rank())
		ctx.Cfg = cfg
	}

	for pass := 0; pass < *maxPasses; pass++ {
		if *verbose && comm.Rank() == 0 {
			io.Pfblue2("refadapt: pass %d\n", pass)
		}
		done, counters := adapt.Pass(ctx, comm, comm.Rank(), *verbose)
		if *verbose && comm.Rank() == 0 {
			io.Pf("refadapt: pass %d done=%v collapsed=%d split=%d swapped=%d smoothed=%d\n",
				pass, done, counters.Collapsed, counters.Split, counters.Swapped, counters.Smoothed)
		}
		if done {
			break
		}
	}

	if *outPath != "" && comm.Rank() == 0 {
		if inp.WriteMsh(*outPath, inp.BuildMsh(ctx.Nodes, ctx.Cells, ctx.CAD)) {
			io.Pf("refadapt: wrote %s\n", *outPath)
		}
	}
}

// newComm returns an MPI-backed Comm when running under more than one
// rank, a serial Comm otherwise.
func newComm() collective.Comm {
	if mpi.IsOn() && mpi.Size() > 1 {
		return collective.NewMPIComm()
	}
	return collective.NewSerialComm()
}

// fixture builds a small geometry-free tetrahedral mesh (a single
// octahedron split into four tets around a shared interior edge) so the
// driver has something to adapt when no mesh file is given.
func fixture(myRank int) *operator.Context {
	nodes := mesh.NewNodeStore()
	m := metric.Identity()
	coords := [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0.5, 0.5, 1}, {0.5, 0.5, -1},
	}
	for i, x := range coords {
		nodes.Add(int64(i), x, m, myRank)
	}
	nodes.ShiftNewGlobals(0)

	cells := mesh.NewCellStore(nodes)
	tets := [][4]int{
		{0, 1, 2, 4}, {0, 2, 3, 4},
		{0, 1, 2, 5}, {0, 2, 3, 5},
	}
	for _, t := range tets {
		cells.Add(mesh.Tet, []int{t[0], t[1], t[2], t[3]}, -1)
	}
	tris := [][3]int{
		{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4},
		{0, 1, 5}, {1, 2, 5}, {2, 3, 5}, {3, 0, 5},
	}
	for _, f := range tris {
		cells.Add(mesh.Tri, []int{f[0], f[1], f[2]}, -1)
	}

	cad := cadgeom.NewStore()
	return operator.NewContext(nodes, cells, cad, cadgeom.FreeOracle{}, config.Default(), 1000)
}
