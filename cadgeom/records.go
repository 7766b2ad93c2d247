// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cadgeom implements the CAD-parameter record store (which mesh
// nodes lie on which CAD entities, and at what parameters) and the CAD
// oracle contract the operators evaluate geometry through.
package cadgeom

import "github.com/cpmech/gosl/chk"

// EntityType identifies which CAD entity layer a parameter record targets
//.
type EntityType int

const (
	NodeEntity EntityType = iota
	EdgeEntity
	FaceEntity
)

func (t EntityType) String() string {
	switch t {
	case NodeEntity:
		return "NODE"
	case EdgeEntity:
		return "EDGE"
	case FaceEntity:
		return "FACE"
	}
	return "unknown"
}

// Record is one CAD-parameter association: a mesh node's position on a
// single CAD entity. Param holds t for an EDGE record (Param[0] used,
// Param[1] ignored) or (u,v) for a FACE record; unused for NODE records.
// Jump is non-zero when an EDGE parameter discontinuity threads a
// periodic FACE; Degeneracy is non-zero when a FACE parameter lies on a
// collapsed-edge singularity.
type Record struct {
	Type       EntityType
	ID         int // 1-based CAD entity id
	Param      [2]float64
	Jump       float64
	Degeneracy float64
}

// Store is the per-node arena of zero or more CAD-parameter records,
// keyed by mesh node local index.
type Store struct {
	byNode map[int][]Record
}

// NewStore returns an empty CAD-parameter record store
func NewStore() *Store { return &Store{byNode: make(map[int][]Record)} }

// Records returns the records attached to node L (nil if none); callers
// must not mutate the returned slice in place.
func (s *Store) Records(L int) []Record { return s.byNode[L] }

// Add appends a record to node L's record set
func (s *Store) Add(L int, r Record) { s.byNode[L] = append(s.byNode[L], r) }

// Remove deletes every record attached to node L.
func (s *Store) Remove(L int) { delete(s.byNode, L) }

// HasType reports whether node L has at least one record of the given
// entity type, used to check the NODE-layer invariant.
func (s *Store) HasType(L int, t EntityType) bool {
	for _, r := range s.byNode[L] {
		if r.Type == t {
			return true
		}
	}
	return false
}

// EdgeParam returns the t parameter of node L on CAD edge id, and whether
// such a record exists.
func (s *Store) EdgeParam(L, id int) (t float64, ok bool) {
	for _, r := range s.byNode[L] {
		if r.Type == EdgeEntity && r.ID == id {
			return r.Param[0], true
		}
	}
	return 0, false
}

// FaceParam returns the (u,v) parameter of node L on CAD face id, and
// whether such a record exists.
func (s *Store) FaceParam(L, id int) (u, v float64, ok bool) {
	for _, r := range s.byNode[L] {
		if r.Type == FaceEntity && r.ID == id {
			return r.Param[0], r.Param[1], true
		}
	}
	return 0, 0, false
}

// SetEdgeParam updates the t parameter of node L's existing record on CAD
// edge id in place; it is a no-op if no such record exists (smoothing
// along a CAD edge rewrites only the parameter, never the record set).
func (s *Store) SetEdgeParam(L, id int, t float64) {
	for i, r := range s.byNode[L] {
		if r.Type == EdgeEntity && r.ID == id {
			s.byNode[L][i].Param[0] = t
			return
		}
	}
}

// SetFaceParam updates the (u,v) parameter of node L's existing record on
// CAD face id in place; a no-op if no such record exists.
func (s *Store) SetFaceParam(L, id int, u, v float64) {
	for i, r := range s.byNode[L] {
		if r.Type == FaceEntity && r.ID == id {
			s.byNode[L][i].Param = [2]float64{u, v}
			return
		}
	}
}

// InterpolateEdge returns the new record produced when a split inserts a
// node at parameter s ∈ (0,1) between two existing EDGE records on the
// same CAD edge id, by linear interpolation in parameter space. The Jump field of whichever endpoint
// is non-zero propagates, since a periodic-edge discontinuity is a
// property of the edge, not the specific parameter value.
func InterpolateEdge(a, b Record, s float64) Record {
	if a.Type != EdgeEntity || b.Type != EdgeEntity || a.ID != b.ID {
		chk.Panic("cadgeom: InterpolateEdge requires two EDGE records on the same id, got %v(id=%d) %v(id=%d)",
			a.Type, a.ID, b.Type, b.ID)
	}
	jump := a.Jump
	if jump == 0 {
		jump = b.Jump
	}
	return Record{
		Type:  EdgeEntity,
		ID:    a.ID,
		Param: [2]float64{a.Param[0] + s*(b.Param[0]-a.Param[0]), 0},
		Jump:  jump,
	}
}

// InterpolateFace returns the new record produced when a split or smooth
// moves a node to barycentric position (per bary, summing to 1) among
// existing FACE records on the same CAD face id.
func InterpolateFace(recs []Record, bary []float64) Record {
	if len(recs) != len(bary) {
		chk.Panic("cadgeom: InterpolateFace: %d records, %d weights", len(recs), len(bary))
	}
	id := recs[0].ID
	var u, v, deg float64
	for i, r := range recs {
		if r.Type != FaceEntity || r.ID != id {
			chk.Panic("cadgeom: InterpolateFace requires FACE records on the same id")
		}
		u += bary[i] * r.Param[0]
		v += bary[i] * r.Param[1]
		if r.Degeneracy != 0 {
			deg = r.Degeneracy
		}
	}
	return Record{Type: FaceEntity, ID: id, Param: [2]float64{u, v}, Degeneracy: deg}
}
