// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cadgeom

import (
	"math"

	"github.com/cpmech/gosl/num"
)

// EvalResult is the result of Oracle.Evaluate: position plus optional
// parameter derivatives.
type EvalResult struct {
	XYZ  [3]float64
	Du   [3]float64 // ∂(x,y,z)/∂u (or ∂/∂t for an EDGE)
	Dv   [3]float64 // ∂(x,y,z)/∂v (FACE only; zero for EDGE)
	Duu  [3]float64
	Duv  [3]float64
	Dvv  [3]float64
	HaveDerivs bool
}

// InverseResult is the result of Oracle.InverseEvaluate: params on the
// entity plus whether they fall inside its valid range.
type InverseResult struct {
	Param    [2]float64
	InRange  bool
	Converged bool
}

// Curvature is the result of Oracle.Curvature: principal curvatures and
// their directions in the local tangent plane.
type Curvature struct {
	K1, K2   float64
	Dir1     [3]float64
	Dir2     [3]float64
}

// EdgeTopology is the topology-inspection result for a CAD edge.
type EdgeTopology struct {
	TMin, TMax   float64
	NodeStart    int // CAD node id at t=TMin
	NodeEnd      int // CAD node id at t=TMax
	Periodic     bool
}

// FaceTopology is the topology-inspection result for a CAD face: its
// (u,v)-range and incident edges.
type FaceTopology struct {
	UMin, UMax float64
	VMin, VMax float64
	EdgeIDs    []int
}

// Oracle is the CAD geometry collaborator, consulted read-only by the
// split and smooth operators to project mesh points onto CAD entities: a
// fixed small interface, implemented once per concrete entity
// representation, looked up by id.
type Oracle interface {
	// Evaluate returns the (x,y,z) (and optionally derivatives) of entity
	// (t EntityType, id) at the given parameter.
	Evaluate(t EntityType, id int, param [2]float64) (EvalResult, error)

	// InverseEvaluate returns the parameter at which entity (t, id) comes
	// closest to xyz, starting the local search from guess (if non-nil).
	InverseEvaluate(t EntityType, id int, xyz [3]float64, guess *[2]float64) (InverseResult, error)

	// Curvature returns the principal curvatures of FACE entity id at param.
	Curvature(t EntityType, id int, param [2]float64) (Curvature, error)

	// EdgeTopology returns the t-range and endpoints of CAD edge id.
	EdgeTopology(id int) (EdgeTopology, error)

	// FaceTopology returns the (u,v)-range and incident edges of CAD face id.
	FaceTopology(id int) (FaceTopology, error)

	// BoundingBox returns the axis-aligned bounding box of entity (t, id).
	BoundingBox(t EntityType, id int) (lo, hi [3]float64, err error)

	// Tolerance returns the entity's intrinsic geometric tolerance, used by
	// split/smooth to decide whether a projected point is acceptably close.
	Tolerance(t EntityType, id int) float64
}

// FreeOracle is a no-op Oracle for geometry-free adaptation (a mesh with
// no CAD association, or interior-only passes): Evaluate returns a zero
// EvalResult, InverseEvaluate returns the guess (zero parameters when guess
// is nil) as in range and converged, curvature is flat, the bounding box is
// all zero, and topology queries report the unit range (t in [0,1], (u,v)
// in [0,1]x[0,1]). Used by tests and by the driver when no CAD model is
// supplied.
type FreeOracle struct{}

func (FreeOracle) Evaluate(t EntityType, id int, param [2]float64) (EvalResult, error) {
	return EvalResult{}, nil
}

func (FreeOracle) InverseEvaluate(t EntityType, id int, xyz [3]float64, guess *[2]float64) (InverseResult, error) {
	p := [2]float64{}
	if guess != nil {
		p = *guess
	}
	return InverseResult{Param: p, InRange: true, Converged: true}, nil
}

func (FreeOracle) Curvature(t EntityType, id int, param [2]float64) (Curvature, error) {
	return Curvature{}, nil
}

func (FreeOracle) EdgeTopology(id int) (EdgeTopology, error) {
	return EdgeTopology{TMin: 0, TMax: 1}, nil
}

func (FreeOracle) FaceTopology(id int) (FaceTopology, error) {
	return FaceTopology{UMin: 0, UMax: 1, VMin: 0, VMax: 1}, nil
}

func (FreeOracle) BoundingBox(t EntityType, id int) (lo, hi [3]float64, err error) {
	return
}

func (FreeOracle) Tolerance(t EntityType, id int) float64 { return 1e-9 }

// EstimateNormal numerically estimates the unit surface normal of FACE
// entity id at (u,v) via central differences on Evaluate, for oracle
// implementations whose EvalResult does not set HaveDerivs.
func EstimateNormal(o Oracle, id int, u, v float64) ([3]float64, error) {
	comp := func(axis int, fixedV bool) func(x float64, args ...interface{}) float64 {
		return func(x float64, args ...interface{}) float64 {
			var param [2]float64
			if fixedV {
				param = [2]float64{x, v}
			} else {
				param = [2]float64{u, x}
			}
			r, _ := o.Evaluate(FaceEntity, id, param)
			return r.XYZ[axis]
		}
	}
	du := [3]float64{
		num.DerivCen(comp(0, true), u),
		num.DerivCen(comp(1, true), u),
		num.DerivCen(comp(2, true), u),
	}
	dv := [3]float64{
		num.DerivCen(comp(0, false), v),
		num.DerivCen(comp(1, false), v),
		num.DerivCen(comp(2, false), v),
	}
	n := cross3(du, dv)
	ln := norm3v(n)
	if ln < 1e-300 {
		return [3]float64{}, nil
	}
	return [3]float64{n[0] / ln, n[1] / ln, n[2] / ln}, nil
}

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm3v(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
