// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import (
	"github.com/cpmech/gosl/fun"

	"github.com/dpedroso/refmesh/reflog"
)

// Source supplies the metric field: given a node's global id and
// coordinates, return its six-component tensor. Supplied once at startup
// and refreshed between adapt cycles; the adaptation core never rebuilds a
// metric itself.
type Source interface {
	MetricAt(global int64, x [3]float64) (Tensor, error)
}

// TableSource is a Source backed by a per-node table keyed by global id,
// the shape a discrete metric file loads into.
type TableSource map[int64]Tensor

// MetricAt looks up the tensor for a global id; unknown ids are
// out-of-range (the table must cover every node it is asked about).
func (o TableSource) MetricAt(global int64, x [3]float64) (Tensor, error) {
	m, ok := o[global]
	if !ok {
		return Tensor{}, reflog.OutOfRangeStatus("metric table has no entry for global %d", global)
	}
	return m, nil
}

// FieldSource is a Source backed by six coordinate expressions, one per
// unique tensor entry, so an analytic metric field can be wired in without
// a table. Each expression is evaluated as f(0, x).
type FieldSource struct {
	M11, M12, M13, M22, M23, M33 fun.Func
}

// MetricAt evaluates the six expressions at x
func (o FieldSource) MetricAt(global int64, x [3]float64) (Tensor, error) {
	p := x[:]
	return Tensor{
		M11: o.M11.F(0, p), M12: o.M12.F(0, p), M13: o.M13.F(0, p),
		M22: o.M22.F(0, p), M23: o.M23.F(0, p), M33: o.M33.F(0, p),
	}, nil
}
