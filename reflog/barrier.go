// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reflog

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/dpedroso/refmesh/collective"
)

// Stop decides whether a serial or distributed run has to be stopped:
// any rank wanting to stop makes every rank stop.
func Stop(comm collective.Comm, err error, msg string) bool {
	if !comm.IsDistributed() {
		if err != nil {
			io.Pf("\n")
			io.PfMag("adaptation failed on %s with %v\n", msg, err)
			return true
		}
		return false
	}
	wantStop := 0
	if err != nil {
		io.PfMag("rank %d failed on %s with %v\n", comm.Rank(), msg, err)
		wantStop = 1
	}
	return comm.MaxInt(wantStop) > 0
}

// PanicOrNot decides to panic if any rank wants to panic.
func PanicOrNot(comm collective.Comm, dopanic bool, msg string, prm ...interface{}) {
	if !comm.IsDistributed() {
		if dopanic {
			chk.Panic(msg, prm...)
		}
		return
	}
	want := 0
	if dopanic {
		want = 1
	}
	if comm.MaxInt(want) > 0 {
		chk.Panic(msg, prm...)
	}
}
