// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/gm"
)

// SpatialIndex answers coordinate-proximity queries over a node store's
// currently-valid nodes, backed by a gm.Bins spatial hash. Used by the
// ghost-exchange protocol to detect when two ranks independently split the
// same boundary edge and produced two distinct new nodes at (numerically)
// the same position, which must be merged rather than kept as duplicates.
type SpatialIndex struct {
	bins gm.Bins
}

// BuildSpatialIndex bins every valid node in s into a uniform grid spanning
// [lo,hi] with ndiv divisions along the longest axis, for later FindNear
// queries. The caller supplies the bounding box and division count
// (typically derived from the mesh's own extent plus a safety margin) since
// NodeStore has no notion of a model-wide bounding box on its own.
func BuildSpatialIndex(s *NodeStore, lo, hi [3]float64, ndiv int) *SpatialIndex {
	idx := &SpatialIndex{}
	idx.bins.Init(lo[:], hi[:], ndiv)
	for L := range s.nodes {
		if s.nodes[L].isFree() {
			continue
		}
		x := s.nodes[L].X
		if err := idx.bins.Append(x[:], L); err != nil {
			chk.Panic("mesh: node %d at %v falls outside the spatial index bounding box: %v", L, x, err)
		}
	}
	return idx
}

// FindNear returns the local index of a valid node within the index whose
// bin contains x, and whether one was found; ties among nodes sharing a bin
// are broken by gm.Bins.Find's own nearest-point rule. Callers must still
// check the returned node's actual distance to x against their own
// tolerance, since a bin match is not itself a tolerance guarantee.
func (idx *SpatialIndex) FindNear(x [3]float64) (L int, ok bool) {
	L = idx.bins.Find(x[:])
	return L, L >= 0
}
