// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cadgeom

import (
	"fmt"
	"math"

	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/num"
)

// AnalyticFace is a CAD face given as three coordinate expressions
// evaluated at (u,v); Fx/Fy/Fz are typically built via
// fun.New("...", fun.Prms{...}) and read as x(u,v) instead of x(t).
type AnalyticFace struct {
	Fx, Fy, Fz             fun.Func
	UMin, UMax, VMin, VMax float64
	EdgeIDs                []int
}

// AnalyticEdge is a CAD edge given as three coordinate expressions
// evaluated at t.
type AnalyticEdge struct {
	Fx, Fy, Fz         fun.Func
	TMin, TMax         float64
	NodeStart, NodeEnd int
}

// AnalyticOracle implements Oracle over a small registry of analytic
// faces/edges, for tests and for demos run without a real CAD kernel
// linked in.
// Evaluate reads fun.Func's (t, x []float64) signature as (u, []float64{v})
// for faces and (t, nil) for edges.
type AnalyticOracle struct {
	Faces map[int]AnalyticFace
	Edges map[int]AnalyticEdge
}

// NewAnalyticOracle returns an oracle with empty face/edge registries.
func NewAnalyticOracle() *AnalyticOracle {
	return &AnalyticOracle{Faces: make(map[int]AnalyticFace), Edges: make(map[int]AnalyticEdge)}
}

func (o *AnalyticOracle) face(id int) (AnalyticFace, error) {
	f, ok := o.Faces[id]
	if !ok {
		return AnalyticFace{}, fmt.Errorf("cadgeom: no analytic face %d registered", id)
	}
	return f, nil
}

func (o *AnalyticOracle) edge(id int) (AnalyticEdge, error) {
	e, ok := o.Edges[id]
	if !ok {
		return AnalyticEdge{}, fmt.Errorf("cadgeom: no analytic edge %d registered", id)
	}
	return e, nil
}

func (o *AnalyticOracle) Evaluate(t EntityType, id int, param [2]float64) (EvalResult, error) {
	switch t {
	case FaceEntity:
		f, err := o.face(id)
		if err != nil {
			return EvalResult{}, err
		}
		u, v := param[0], param[1]
		return EvalResult{XYZ: [3]float64{f.Fx.F(u, []float64{v}), f.Fy.F(u, []float64{v}), f.Fz.F(u, []float64{v})}}, nil
	case EdgeEntity:
		e, err := o.edge(id)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{XYZ: [3]float64{e.Fx.F(param[0], nil), e.Fy.F(param[0], nil), e.Fz.F(param[0], nil)}}, nil
	}
	return EvalResult{}, fmt.Errorf("cadgeom: analytic oracle has no NODE evaluation")
}

// InverseEvaluate minimizes the squared distance to xyz by gradient descent
// in parameter space, using num.DerivCen for the partials (the same
// central-difference idiom EstimateNormal uses), starting from guess (or
// the midpoint of the entity's range if guess is nil).
func (o *AnalyticOracle) InverseEvaluate(t EntityType, id int, xyz [3]float64, guess *[2]float64) (InverseResult, error) {
	topoLo, topoHi, err := o.paramRange(t, id)
	if err != nil {
		return InverseResult{}, err
	}
	p := [2]float64{0.5 * (topoLo[0] + topoHi[0]), 0.5 * (topoLo[1] + topoHi[1])}
	if guess != nil {
		p = *guess
	}

	sqDist := func(u, v float64) float64 {
		ev, err := o.Evaluate(t, id, [2]float64{u, v})
		if err != nil {
			return math.Inf(1)
		}
		var s float64
		for i := 0; i < 3; i++ {
			d := ev.XYZ[i] - xyz[i]
			s += d * d
		}
		return s
	}

	const maxIter = 50
	step := 0.1 * math.Max(topoHi[0]-topoLo[0], topoHi[1]-topoLo[1])
	for iter := 0; iter < maxIter && step > 1e-12; iter++ {
		fu := func(x float64, args ...interface{}) float64 { return sqDist(x, p[1]) }
		fv := func(x float64, args ...interface{}) float64 { return sqDist(p[0], x) }
		gu := num.DerivCen(fu, p[0])
		gv := num.DerivCen(fv, p[1])
		glen := math.Sqrt(gu*gu + gv*gv)
		if glen < 1e-14 {
			break
		}
		trial := [2]float64{p[0] - step*gu/glen, p[1] - step*gv/glen}
		if sqDist(trial[0], trial[1]) < sqDist(p[0], p[1]) {
			p = trial
		} else {
			step *= 0.5
		}
	}

	inRange := p[0] >= topoLo[0] && p[0] <= topoHi[0] && p[1] >= topoLo[1] && p[1] <= topoHi[1]
	p[0] = math.Max(topoLo[0], math.Min(topoHi[0], p[0]))
	p[1] = math.Max(topoLo[1], math.Min(topoHi[1], p[1]))
	return InverseResult{Param: p, InRange: inRange, Converged: true}, nil
}

func (o *AnalyticOracle) paramRange(t EntityType, id int) (lo, hi [2]float64, err error) {
	switch t {
	case FaceEntity:
		f, e := o.face(id)
		if e != nil {
			return lo, hi, e
		}
		return [2]float64{f.UMin, f.VMin}, [2]float64{f.UMax, f.VMax}, nil
	case EdgeEntity:
		e, err2 := o.edge(id)
		if err2 != nil {
			return lo, hi, err2
		}
		return [2]float64{e.TMin, 0}, [2]float64{e.TMax, 0}, nil
	}
	return lo, hi, fmt.Errorf("cadgeom: analytic oracle has no NODE range")
}

// Curvature does not compute principal curvatures: for a FaceEntity it
// returns K1=K2=0 with Dir1 set to the unit surface normal from
// EstimateNormal and Dir2 zero; for any other entity type it returns a
// zero Curvature.
func (o *AnalyticOracle) Curvature(t EntityType, id int, param [2]float64) (Curvature, error) {
	if t != FaceEntity {
		return Curvature{}, nil
	}
	n, err := EstimateNormal(o, id, param[0], param[1])
	if err != nil {
		return Curvature{}, err
	}
	return Curvature{Dir1: n}, nil
}

func (o *AnalyticOracle) EdgeTopology(id int) (EdgeTopology, error) {
	e, err := o.edge(id)
	if err != nil {
		return EdgeTopology{}, err
	}
	return EdgeTopology{TMin: e.TMin, TMax: e.TMax, NodeStart: e.NodeStart, NodeEnd: e.NodeEnd}, nil
}

func (o *AnalyticOracle) FaceTopology(id int) (FaceTopology, error) {
	f, err := o.face(id)
	if err != nil {
		return FaceTopology{}, err
	}
	return FaceTopology{UMin: f.UMin, UMax: f.UMax, VMin: f.VMin, VMax: f.VMax, EdgeIDs: f.EdgeIDs}, nil
}

func (o *AnalyticOracle) BoundingBox(t EntityType, id int) (lo, hi [3]float64, err error) {
	lo = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	const samples = 9
	sampleAt := func(u, v float64) {
		ev, e := o.Evaluate(t, id, [2]float64{u, v})
		if e != nil {
			err = e
			return
		}
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], ev.XYZ[i])
			hi[i] = math.Max(hi[i], ev.XYZ[i])
		}
	}
	plo, phi, rangeErr := o.paramRange(t, id)
	if rangeErr != nil {
		return [3]float64{}, [3]float64{}, rangeErr
	}
	for i := 0; i < samples; i++ {
		s := float64(i) / (samples - 1)
		u := plo[0] + s*(phi[0]-plo[0])
		v := plo[1] + s*(phi[1]-plo[1])
		sampleAt(u, v)
	}
	return lo, hi, err
}

func (o *AnalyticOracle) Tolerance(t EntityType, id int) float64 { return 1e-7 }
