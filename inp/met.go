// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"

	"github.com/cpmech/gosl/utl"

	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
	"github.com/dpedroso/refmesh/reflog"
)

// MetEntry holds the metric of one vertex in a companion metric file
type MetEntry struct {
	Id int64     // vertex global id
	M  []float64 // metric upper-triangular entries (size==6)
}

// Met holds a companion metric table: the per-node field a solver hands
// back between adapt cycles, kept separate from the mesh file so it can be
// refreshed without rewriting connectivity.
type Met struct {
	Verts []*MetEntry
}

// ReadMet reads a companion metric file
//  Note: returns nil on errors
func ReadMet(fn string) *Met {
	var o Met
	b, err := utl.ReadFile(fn)
	if reflog.LogErr(err, "met: cannot open metric file "+fn) {
		return nil
	}
	if reflog.LogErr(json.Unmarshal(b, &o), "met: cannot unmarshal metric file "+fn) {
		return nil
	}
	for _, e := range o.Verts {
		if reflog.LogErrCond(len(e.M) != 6, "met: vertex %d must have 6 metric entries, not %d", e.Id, len(e.M)) {
			return nil
		}
	}
	return &o
}

// Source views the table as a metric.Source
func (o *Met) Source() metric.Source {
	tab := make(metric.TableSource, len(o.Verts))
	for _, e := range o.Verts {
		tab[e.Id] = metric.Tensor{M11: e.M[0], M12: e.M[1], M13: e.M[2], M22: e.M[3], M23: e.M[4], M33: e.M[5]}
	}
	return tab
}

// Apply overwrites every valid node's metric from src; nodes the source
// has no entry for keep their current metric (logged as recoverable, the
// interpolated metric from the last split is an acceptable fallback).
func Apply(src metric.Source, nodes *mesh.NodeStore) {
	for L := 0; L < nodes.Len(); L++ {
		if !nodes.Valid(L) {
			continue
		}
		n := nodes.Node(L)
		m, err := src.MetricAt(n.Global, n.X)
		if err != nil {
			reflog.LogRecoverable("metric refresh", reflog.Recover("keeping interpolated metric for global %d: %v", n.Global, err))
			continue
		}
		n.M = m
	}
}

// WriteMet writes a companion metric file for the current node store
//  Note: returns false on errors
func WriteMet(fn string, nodes *mesh.NodeStore) (ok bool) {
	var o Met
	for L := 0; L < nodes.Len(); L++ {
		if !nodes.Valid(L) {
			continue
		}
		n := nodes.Node(L)
		o.Verts = append(o.Verts, &MetEntry{
			Id: n.Global,
			M:  []float64{n.M.M11, n.M.M12, n.M.M13, n.M.M22, n.M.M23, n.M.M33},
		})
	}
	b, err := json.MarshalIndent(&o, "", "  ")
	if reflog.LogErr(err, "met: cannot marshal metric file "+fn) {
		return false
	}
	utl.WriteFileS(fn, string(b))
	return true
}
