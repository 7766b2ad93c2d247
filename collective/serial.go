// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collective

// SerialComm is the single-rank Comm: every reduction is the identity and
// every all-to-all loops back to the caller. Used for geometry-free or
// single-process adaptation runs.
type SerialComm struct{}

// NewSerialComm returns a single-rank Comm
func NewSerialComm() *SerialComm { return &SerialComm{} }

func (o *SerialComm) Rank() int            { return 0 }
func (o *SerialComm) Size() int            { return 1 }
func (o *SerialComm) IsDistributed() bool  { return false }
func (o *SerialComm) MinFloat(v float64) float64 { return v }
func (o *SerialComm) MaxFloat(v float64) float64 { return v }
func (o *SerialComm) SumFloat(v float64) float64 { return v }
func (o *SerialComm) MaxInt(v int) int     { return v }
func (o *SerialComm) SumInt(v int) int     { return v }
func (o *SerialComm) BcastBool(v bool) bool { return v }

func (o *SerialComm) AllToAllCounts(sendCounts []int) (recvCounts []int) {
	recvCounts = make([]int, len(sendCounts))
	copy(recvCounts, sendCounts)
	return
}

func (o *SerialComm) AllToAllFloatV(sendCounts []int, sendBuf []float64) (recvBuf []float64, recvCounts, recvDispls []int) {
	recvCounts = o.AllToAllCounts(sendCounts)
	recvDispls = Prefix(recvCounts)
	recvBuf = make([]float64, len(sendBuf))
	copy(recvBuf, sendBuf)
	return
}

func (o *SerialComm) AllToAllIntV(sendCounts []int, sendBuf []int) (recvBuf []int, recvCounts, recvDispls []int) {
	recvCounts = o.AllToAllCounts(sendCounts)
	recvDispls = Prefix(recvCounts)
	recvBuf = make([]int, len(sendBuf))
	copy(recvBuf, sendBuf)
	return
}
