// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package adapt

import (
	"math"

	"github.com/cpmech/gosl/io"

	"github.com/dpedroso/refmesh/collective"
	"github.com/dpedroso/refmesh/config"
	"github.com/dpedroso/refmesh/ghost"
	"github.com/dpedroso/refmesh/operator"
	"github.com/dpedroso/refmesh/reflog"
)

// Counters tallies one pass's outcomes, for the summary line printed after
// each Pass call and for driver-loop termination diagnostics.
type Counters struct {
	Collapsed, Split, Swapped, Smoothed int
	Declined, Recovered, Fatal          int
}

func (c *Counters) log(what string, s reflog.Status) {
	switch s.Kind {
	case reflog.Declined:
		c.Declined++
		reflog.LogDeclined(what, s)
	case reflog.Recoverable:
		c.Recovered++
		reflog.LogRecoverable(what, s)
	case reflog.Fatal, reflog.OutOfRange:
		c.Fatal++
		io.Pfred("fatal %s: %s\n", what, s.Reason)
	}
}

// Pass runs one full adaptation pass: survey, collapse sub-pass, split
// sub-pass, surface-swap sub-passes, smooth sub-pass, surface-swap again,
// with a ghost sync and coincident-split reconciliation after every
// sub-pass that can touch the mesh's node/cell topology. done reports
// whether the driver judges the mesh converged (a ratio-drift plus
// max-age test, agreed across every rank via BcastBool so the loop
// terminates in lockstep).
func Pass(ctx *operator.Context, comm collective.Comm, myRank int, verbose bool) (done bool, counters Counters) {
	survey := Compute(ctx, comm, myRank)
	deriveThresholds(ctx.Cfg, survey)

	if verbose {
		io.Pfblue2("adapt: survey minQ=%.4g nodes=%d maxAge=%d complexity=%.4g ratio=[%.4g,%.4g]\n",
			survey.MinQuality, survey.NodeCount, survey.MaxAge, survey.Complexity, survey.MinRatio, survey.MaxRatio)
	}

	collapsePass(ctx, comm, myRank, &counters)
	syncAfterTopologyChange(ctx, comm, myRank)

	splitPass(ctx, comm, myRank, &counters)
	syncAfterTopologyChange(ctx, comm, myRank)

	swapPass(ctx, comm, myRank, &counters)
	ghost.Sync(comm, ctx.Nodes, ctx.CAD, myRank)

	smoothPass(ctx, comm, myRank, &counters)
	ghost.Sync(comm, ctx.Nodes, ctx.CAD, myRank)

	swapPass(ctx, comm, myRank, &counters)
	ghost.Sync(comm, ctx.Nodes, ctx.CAD, myRank)

	// all ranks abort together if any of them hit a broken invariant
	reflog.PanicOrNot(comm, counters.Fatal > 0, "adaptation pass hit %d fatal inconsistencies", counters.Fatal)

	final := Compute(ctx, comm, myRank)
	localDone := converged(ctx.Cfg, survey, final)
	done = comm.BcastBool(localDone)

	if verbose {
		io.Pfgrey("adapt: collapsed=%d split=%d swapped=%d smoothed=%d declined=%d recovered=%d\n",
			counters.Collapsed, counters.Split, counters.Swapped, counters.Smoothed, counters.Declined, counters.Recovered)
		io.Pfgrey("%s", ctx.Cells.Inspect())
		if done {
			io.Pfgreen("adapt: converged\n")
		}
	}
	return done, counters
}

// deriveThresholds recomputes cfg's driver-derived fields from survey: the
// post-pass normal-deviation and quality floors clamp at [1e-3, 0.1], and
// the post-pass ratio band spans both the currently-observed band and the
// collapse/split thresholds; when its upper end exceeds 4 while its lower
// end is above 0.4, the lower end is scaled by 4/upper end.
func deriveThresholds(cfg *config.Config, s Survey) {
	postMinNormDev := math.Min(0.1, s.MinNormDev)
	if postMinNormDev < 1e-3 {
		postMinNormDev = 1e-3
	}
	cfg.PostMinNormDev = postMinNormDev

	collapseAbs := math.Min(0.1, s.MinQuality)
	if collapseAbs < 1e-3 {
		collapseAbs = 1e-3
	}
	cfg.CollapseQualityAbsolute = collapseAbs
	cfg.SmoothMinQuality = collapseAbs

	postMinRatio := math.Min(s.MinRatio, cfg.CollapseRatio)
	postMaxRatio := math.Max(s.MaxRatio, cfg.SplitRatio)
	if postMaxRatio > 4 && postMinRatio > 0.4 {
		postMinRatio = (4 / postMaxRatio) * postMinRatio
	}
	cfg.PostMinRatio = postMinRatio
	cfg.PostMaxRatio = postMaxRatio
}

// converged reports whether the post-pass ratio band drifted by less than
// cfg.ConvergenceRelTol relative to the previous pass's band, and the mesh
// has no node stale enough to still be under consideration.
func converged(cfg *config.Config, before, after Survey) bool {
	minDrift := relDrift(before.MinRatio, after.MinRatio)
	maxDrift := relDrift(before.MaxRatio, after.MaxRatio)
	return minDrift < cfg.ConvergenceRelTol && maxDrift < cfg.ConvergenceRelTol && after.MaxAge < cfg.MaxNodeAge
}

func relDrift(before, after float64) float64 {
	if before == 0 {
		if after == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(after-before) / math.Abs(before)
}
