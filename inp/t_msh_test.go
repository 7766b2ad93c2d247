// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso/refmesh/mesh"
	"github.com/dpedroso/refmesh/metric"
)

func sampleMsh() *Msh {
	u := []float64{1, 0, 0, 1, 0, 1}
	return &Msh{
		Verts: []*Vert{
			{Id: 0, Part: 0, C: []float64{0, 0, 0}, M: u},
			{Id: 1, Part: 0, C: []float64{1, 0, 0}, M: u},
			{Id: 2, Part: 0, C: []float64{0, 1, 0}, M: u},
			{Id: 3, Part: 1, C: []float64{0, 0, 1}, M: u},
		},
		Cells: []*Cel{
			{Type: "tet", Verts: []int64{0, 1, 2, 3}, Id: -1},
			{Type: "tri", Verts: []int64{0, 1, 2}, Id: 7},
		},
		Pars: []*Par{
			{Vert: 0, Type: "face", Id: 7, P: []float64{0.25, 0.75}},
			{Vert: 1, Type: "edge", Id: 2, P: []float64{0.5}, Jump: 1},
		},
	}
}

func TestMshRoundTrip(tst *testing.T) {
	chk.PrintTitle("MshRoundTrip")
	dir := tst.TempDir()
	fn := filepath.Join(dir, "sample.msh")
	if !WriteMsh(fn, sampleMsh()) {
		tst.Fatal("WriteMsh failed")
	}
	o := ReadMsh(fn)
	if o == nil {
		tst.Fatal("ReadMsh returned nil")
	}
	nodes, cells, cad, nextGlobal := o.Stores()
	if nodes.NumValid() != 4 {
		tst.Errorf("expected 4 nodes, got %d", nodes.NumValid())
	}
	if cells.NumValid(mesh.Tet) != 1 || cells.NumValid(mesh.Tri) != 1 {
		tst.Errorf("expected 1 tet and 1 tri, got %d and %d", cells.NumValid(mesh.Tet), cells.NumValid(mesh.Tri))
	}
	if nextGlobal != 4 {
		tst.Errorf("expected nextGlobal 4, got %d", nextGlobal)
	}
	L3, ok := nodes.Local(3)
	if !ok {
		tst.Fatal("global 3 not found")
	}
	if nodes.Node(L3).Part != 1 {
		tst.Errorf("expected part 1 on global 3, got %d", nodes.Node(L3).Part)
	}
	L0, _ := nodes.Local(0)
	u, v, ok := cad.FaceParam(L0, 7)
	if !ok {
		tst.Fatal("face record on global 0 not found")
	}
	chk.Scalar(tst, "u", 1e-15, u, 0.25)
	chk.Scalar(tst, "v", 1e-15, v, 0.75)
	L1, _ := nodes.Local(1)
	t, ok := cad.EdgeParam(L1, 2)
	if !ok {
		tst.Fatal("edge record on global 1 not found")
	}
	chk.Scalar(tst, "t", 1e-15, t, 0.5)

	// serialize back; the rebuilt file must round-trip to identical stores
	back := BuildMsh(nodes, cells, cad)
	if len(back.Verts) != 4 || len(back.Cells) != 2 || len(back.Pars) != 2 {
		tst.Fatalf("BuildMsh: got %d verts, %d cells, %d pars", len(back.Verts), len(back.Cells), len(back.Pars))
	}
	fn2 := filepath.Join(dir, "sample2.msh")
	if !WriteMsh(fn2, back) {
		tst.Fatal("WriteMsh (rebuilt) failed")
	}
	o2 := ReadMsh(fn2)
	if o2 == nil {
		tst.Fatal("ReadMsh (rebuilt) returned nil")
	}
	nodes2, cells2, _, _ := o2.Stores()
	if nodes2.NumValid() != 4 || cells2.NumValid(mesh.Tet) != 1 {
		tst.Error("rebuilt mesh does not match")
	}
}

func TestMshRejectsBadInput(tst *testing.T) {
	chk.PrintTitle("MshRejectsBadInput")
	dir := tst.TempDir()
	writeRaw := func(name, content string) string {
		fn := filepath.Join(dir, name)
		if err := os.WriteFile(fn, []byte(content), 0644); err != nil {
			tst.Fatal(err)
		}
		return fn
	}
	if ReadMsh(filepath.Join(dir, "missing.msh")) != nil {
		tst.Error("expected nil for missing file")
	}
	if ReadMsh(writeRaw("garbage.msh", "{not json")) != nil {
		tst.Error("expected nil for malformed JSON")
	}
	if ReadMsh(writeRaw("badkind.msh", `{"Verts":[{"Id":0,"C":[0,0,0],"M":[1,0,0,1,0,1]},{"Id":1,"C":[1,0,0],"M":[1,0,0,1,0,1]}],"Cells":[{"Type":"spline","Verts":[0,1]}]}`)) != nil {
		tst.Error("expected nil for unknown cell type")
	}
	if ReadMsh(writeRaw("badarity.msh", `{"Verts":[{"Id":0,"C":[0,0,0],"M":[1,0,0,1,0,1]},{"Id":1,"C":[1,0,0],"M":[1,0,0,1,0,1]}],"Cells":[{"Type":"tet","Verts":[0,1]}]}`)) != nil {
		tst.Error("expected nil for wrong vertex count")
	}
}

func TestMetApplyAndRoundTrip(tst *testing.T) {
	chk.PrintTitle("MetApplyAndRoundTrip")
	nodes, _, _, _ := sampleMsh().Stores()
	src := metric.TableSource{
		0: {M11: 4, M22: 4, M33: 4},
		1: {M11: 9, M22: 9, M33: 9},
		2: {M11: 1, M22: 1, M33: 1},
		3: {M11: 16, M22: 16, M33: 16},
	}
	Apply(src, nodes)
	L1, _ := nodes.Local(1)
	chk.Scalar(tst, "m11 after apply", 1e-15, nodes.Node(L1).M.M11, 9)

	dir := tst.TempDir()
	fn := filepath.Join(dir, "sample.met")
	if !WriteMet(fn, nodes) {
		tst.Fatal("WriteMet failed")
	}
	met := ReadMet(fn)
	if met == nil {
		tst.Fatal("ReadMet returned nil")
	}
	m, err := met.Source().MetricAt(3, [3]float64{})
	if err != nil {
		tst.Fatal(err)
	}
	chk.Scalar(tst, "m33 round-trip", 1e-15, m.M33, 16)

	// a source missing an entry keeps the node's current metric
	Apply(metric.TableSource{}, nodes)
	chk.Scalar(tst, "m11 unchanged", 1e-15, nodes.Node(L1).M.M11, 9)
}
