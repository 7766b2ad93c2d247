// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package collective wraps the collective-communication operations the
// adaptation driver and ghost-exchange protocol need: MIN, MAX,
// SUM reductions, broadcast, and two-phase all-to-all exchange of fixed and
// variable-length payloads. Only the explicit calls below are suspension
// points; everything else in refmesh runs straight-line between
// them.
package collective

// Comm is the collective-communication contract. SerialComm satisfies it
// for single-rank runs; MPIComm backs it with github.com/cpmech/gosl/mpi
// for distributed runs.
type Comm interface {
	// Rank returns this process's rank
	Rank() int
	// Size returns the number of ranks
	Size() int
	// IsDistributed returns whether Size() > 1
	IsDistributed() bool

	// MinFloat reduces a local scalar to the global minimum on every rank
	MinFloat(local float64) float64
	// MaxFloat reduces a local scalar to the global maximum on every rank
	MaxFloat(local float64) float64
	// SumFloat reduces a local scalar to the global sum on every rank
	SumFloat(local float64) float64
	// MaxInt reduces a local integer to the global maximum on every rank
	MaxInt(local int) int
	// SumInt reduces a local integer to the global sum on every rank
	SumInt(local int) int

	// BcastBool broadcasts a bool from rank 0 to every rank
	BcastBool(v bool) bool

	// AllToAllCounts exchanges a [Size()]int "how many items am I sending
	// you" table and returns the complementary "how many items will I
	// receive from you" table
	AllToAllCounts(sendCounts []int) (recvCounts []int)

	// AllToAllFloatV exchanges variable-length float64 payloads given per-rank
	// send counts (already agreed via AllToAllCounts) and returns the
	// concatenated receive buffer along with per-rank receive offsets
	AllToAllFloatV(sendCounts []int, sendBuf []float64) (recvBuf []float64, recvCounts, recvDispls []int)

	// AllToAllIntV is AllToAllFloatV for integer payloads (globals, ids)
	AllToAllIntV(sendCounts []int, sendBuf []int) (recvBuf []int, recvCounts, recvDispls []int)
}

// Prefix returns the exclusive prefix-sum offsets of counts, i.e.
// offsets[i] = sum(counts[:i]); offsets has len(counts)+1 entries with the
// last entry equal to the total. Used by the AllToAllFloatV/AllToAllIntV
// implementations to locate each rank's slice of the send and receive
// buffers.
func Prefix(counts []int) (offsets []int) {
	offsets = make([]int, len(counts)+1)
	for i, c := range counts {
		offsets[i+1] = offsets[i] + c
	}
	return
}
