// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collective

import (
	"github.com/cpmech/gosl/mpi"
)

// MPIComm backs Comm with github.com/cpmech/gosl/mpi.
type MPIComm struct {
	rank, size int
	wspc       []float64 // scratch for AllReduceSum/Min/Max, sized 1
	wspcI      []int     // scratch for IntAllReduceMax/Sum, sized 1
}

// NewMPIComm assumes mpi.Start has already been called by the caller
// (the command's mpi.Start/defer mpi.Stop bracket)
func NewMPIComm() *MPIComm {
	o := &MPIComm{}
	o.rank = mpi.Rank()
	o.size = mpi.Size()
	o.wspc = make([]float64, 1)
	o.wspcI = make([]int, 1)
	return o
}

func (o *MPIComm) Rank() int           { return o.rank }
func (o *MPIComm) Size() int           { return o.size }
func (o *MPIComm) IsDistributed() bool { return o.size > 1 }

func (o *MPIComm) MinFloat(v float64) float64 {
	dest := []float64{v}
	mpi.AllReduceMin(dest, o.wspc)
	return dest[0]
}

func (o *MPIComm) MaxFloat(v float64) float64 {
	dest := []float64{v}
	mpi.AllReduceMax(dest, o.wspc)
	return dest[0]
}

func (o *MPIComm) SumFloat(v float64) float64 {
	dest := []float64{v}
	mpi.AllReduceSum(dest, o.wspc)
	return dest[0]
}

func (o *MPIComm) MaxInt(v int) int {
	dest := []int{v}
	mpi.IntAllReduceMax(dest, o.wspcI)
	return dest[0]
}

func (o *MPIComm) SumInt(v int) int {
	dest := []int{v}
	mpi.IntAllReduceSum(dest, o.wspcI)
	return dest[0]
}

func (o *MPIComm) BcastBool(v bool) bool {
	flag := 0
	if o.rank == 0 && v {
		flag = 1
	}
	buf := []int{flag}
	mpi.BcastFromRoot(buf)
	return buf[0] == 1
}

func (o *MPIComm) AllToAllCounts(sendCounts []int) (recvCounts []int) {
	recvCounts = make([]int, o.size)
	mpi.AllToAll(recvCounts, sendCounts)
	return
}

func (o *MPIComm) AllToAllFloatV(sendCounts []int, sendBuf []float64) (recvBuf []float64, recvCounts, recvDispls []int) {
	recvCounts = o.AllToAllCounts(sendCounts)
	sendDispls := Prefix(sendCounts)
	recvDispls = Prefix(recvCounts)
	recvBuf = make([]float64, recvDispls[o.size])
	mpi.AllToAllV(recvBuf, recvCounts, recvDispls, sendBuf, sendCounts, sendDispls)
	return
}

func (o *MPIComm) AllToAllIntV(sendCounts []int, sendBuf []int) (recvBuf []int, recvCounts, recvDispls []int) {
	recvCounts = o.AllToAllCounts(sendCounts)
	sendDispls := Prefix(sendCounts)
	recvDispls = Prefix(recvCounts)
	recvBuf = make([]int, recvDispls[o.size])
	mpi.IntAllToAllV(recvBuf, recvCounts, recvDispls, sendBuf, sendCounts, sendDispls)
	return
}
