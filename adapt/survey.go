// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package adapt implements the adaptation driver: one pass is a survey,
// followed by collapse, split, surface-swap and smooth sub-passes, a
// ghost exchange after each, and a termination check.
package adapt

import (
	"math"

	"github.com/dpedroso/refmesh/cadgeom"
	"github.com/dpedroso/refmesh/collective"
	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
	"github.com/dpedroso/refmesh/operator"
)

// Survey is the per-pass parameter snapshot the driver derives its
// thresholds from: every quantity here is already globally reduced and
// identical on every rank when Compute returns.
type Survey struct {
	MinQuality float64
	MinVolume  float64
	MaxVolume  float64
	Complexity float64
	NodeCount  int
	MaxAge     int
	MaxDegree  int
	MinNormDev float64
	MinRatio   float64
	MaxRatio   float64
}

// Compute runs the local scan over every tet (quality, volume, complexity),
// every node (age, degree), every surface triangle with a CAD face
// association (normal deviation), and every tet edge (ratio), then
// globally reduces each quantity across comm so every rank returns the
// same Survey.
func Compute(ctx *operator.Context, comm collective.Comm, myRank int) Survey {
	minQ := math.Inf(1)
	minVol := math.Inf(1)
	maxVol := math.Inf(-1)
	var complexity float64

	ctx.Cells.ForEach(mesh.Tet, func(_ int, c *mesh.Cell) {
		if !ownedLocally(ctx.Nodes, c.Nodes, myRank) {
			return
		}
		p := coords4(ctx, c.Nodes)
		m := metrics4(ctx, c.Nodes)
		q := metric.TetQuality(p[0], p[1], p[2], p[3], m[0], m[1], m[2], m[3])
		if q < minQ {
			minQ = q
		}
		vol := tetVolume(p)
		if vol < minVol {
			minVol = vol
		}
		if vol > maxVol {
			maxVol = vol
		}
		complexity += metric.TetComplexity(p[0], p[1], p[2], p[3], m[0], m[1], m[2], m[3])
	})
	const nodePerTet = 4
	complexity /= nodePerTet

	maxAge := 0
	maxDegree := 0
	nodeCount := 0
	for L := 0; L < ctx.Nodes.Len(); L++ {
		if !ctx.Nodes.Valid(L) || !ctx.Nodes.IsOwned(L, myRank) {
			continue
		}
		nodeCount++
		n := ctx.Nodes.Node(L)
		if n.Age > maxAge {
			maxAge = n.Age
		}
		if d := len(ctx.Cells.CellsAt(mesh.Tet, L)); d > maxDegree {
			maxDegree = d
		}
	}

	minNormDev := math.Inf(1)
	ctx.Cells.ForEach(mesh.Tri, func(idx int, c *mesh.Cell) {
		if !ownedLocally(ctx.Nodes, c.Nodes, myRank) {
			return
		}
		if c.ID <= 0 {
			return
		}
		dev, ok := surfaceNormalDeviation(ctx, c)
		if ok && dev < minNormDev {
			minNormDev = dev
		}
	})

	minRatio := math.Inf(1)
	maxRatio := math.Inf(-1)
	for _, e := range ctx.Cells.EdgeTable() {
		if !ctx.Nodes.IsOwned(e.N0, myRank) && !ctx.Nodes.IsOwned(e.N1, myRank) {
			continue
		}
		r := edgeRatio(ctx, e.N0, e.N1)
		if r < minRatio {
			minRatio = r
		}
		if r > maxRatio {
			maxRatio = r
		}
	}

	return Survey{
		MinQuality: comm.MinFloat(orInf(minQ, 1)),
		MinVolume:  comm.MinFloat(orInf(minVol, 1)),
		MaxVolume:  comm.MaxFloat(orInf(maxVol, -1)),
		Complexity: comm.SumFloat(complexity),
		NodeCount:  comm.SumInt(nodeCount),
		MaxAge:     comm.MaxInt(maxAge),
		MaxDegree:  comm.MaxInt(maxDegree),
		MinNormDev: comm.MinFloat(orInf(minNormDev, 1)),
		MinRatio:   comm.MinFloat(orInf(minRatio, 1)),
		MaxRatio:   comm.MaxFloat(orInf(maxRatio, -1)),
	}
}

// orInf substitutes neutral when v is still the +-Inf sentinel (this rank
// owns none of the relevant kind), so an empty local scan never wins or
// loses a min/max reduction against a rank that has real data.
func orInf(v, neutral float64) float64 {
	if math.IsInf(v, 1) || math.IsInf(v, -1) {
		return neutral
	}
	return v
}

func ownedLocally(nodes *mesh.NodeStore, ns []int, myRank int) bool {
	for _, L := range ns {
		if !nodes.IsOwned(L, myRank) {
			return false
		}
	}
	return true
}

func coords4(ctx *operator.Context, ns []int) [4][]float64 {
	var out [4][]float64
	for i, L := range ns {
		n := ctx.Nodes.Node(L)
		out[i] = []float64{n.X[0], n.X[1], n.X[2]}
	}
	return out
}

func metrics4(ctx *operator.Context, ns []int) [4]metric.Tensor {
	var out [4]metric.Tensor
	for i, L := range ns {
		out[i] = ctx.Nodes.Node(L).M
	}
	return out
}

func tetVolume(p [4][]float64) float64 {
	var a, b, c [3]float64
	for i := 0; i < 3; i++ {
		a[i] = p[1][i] - p[0][i]
		b[i] = p[2][i] - p[0][i]
		c[i] = p[3][i] - p[0][i]
	}
	cx := [3]float64{b[1]*c[2] - b[2]*c[1], b[2]*c[0] - b[0]*c[2], b[0]*c[1] - b[1]*c[0]}
	return math.Abs(a[0]*cx[0]+a[1]*cx[1]+a[2]*cx[2]) / 6
}

func edgeRatio(ctx *operator.Context, n0, n1 int) float64 {
	a := ctx.Nodes.Node(n0)
	b := ctx.Nodes.Node(n1)
	return metric.EdgeRatio([]float64{a.X[0], a.X[1], a.X[2]}, []float64{b.X[0], b.X[1], b.X[2]}, a.M, b.M)
}

// surfaceNormalDeviation estimates the normal deviation of triangle c
// against the CAD oracle's surface normal at its centroid's (u,v), reading
// (u,v) off whichever of the triangle's three nodes carries a FACE record
// for c.ID; ok is false when none do (the triangle is not actually
// CAD-face-associated, just tagged with a stale id).
func surfaceNormalDeviation(ctx *operator.Context, c *mesh.Cell) (dev float64, ok bool) {
	var us, vs []float64
	for _, L := range c.Nodes {
		if u, v, has := ctx.CAD.FaceParam(L, c.ID); has {
			us = append(us, u)
			vs = append(vs, v)
		}
	}
	if len(us) == 0 {
		return 0, false
	}
	var u, v float64
	for i := range us {
		u += us[i]
		v += vs[i]
	}
	u /= float64(len(us))
	v /= float64(len(us))

	cadNormal, err := cadgeom.EstimateNormal(ctx.Oracle, c.ID, u, v)
	if err != nil {
		return 0, false
	}
	p := coords4(ctx, c.Nodes)
	meshNormal := metric.TriangleNormal(p[0], p[1], p[2])
	return metric.NormalDeviation(meshNormal, cadNormal, 1), true
}
