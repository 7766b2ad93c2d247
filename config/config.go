// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the adaptation configuration: every threshold the
// operators and driver consult, surfaced as a named field instead of
// hardcoded at a call site.
package config

import (
	"encoding/json"

	"github.com/cpmech/gosl/utl"
)

// constants
const (
	// DefaultSplitRatio is the edge-ratio threshold above which an edge is
	// marked for split: √2·1.1
	DefaultSplitRatio = 1.41421356237309515 * 1.1
	// DefaultCollapseRatio is the edge-ratio threshold below which an edge
	// is marked for collapse: 1/(√2·1.1)
	DefaultCollapseRatio = 1.0 / DefaultSplitRatio
	// DefaultMaxNodeAge is the "too stale to continue" bound
	DefaultMaxNodeAge = 50
	// DefaultSmoothMaxHalvings bounds the smooth operator's backtracking
	// line search
	DefaultSmoothMaxHalvings = 8
	// DefaultSwapMargin is the minimum quality improvement swap requires
	DefaultSwapMargin = 1e-12
)

// Config carries every adaptation threshold. Read overrides the defaults
// from a JSON file.
type Config struct {
	// edge ratio thresholds
	SplitRatio    float64 `json:"splitRatio"`
	CollapseRatio float64 `json:"collapseRatio"`

	// split post-quality guard
	SplitQualityAbsolute float64 `json:"splitQualityAbsolute"`
	SplitQualityRelative float64 `json:"splitQualityRelative"`

	// collapse post-quality / normal-deviation guards
	CollapseQualityAbsolute float64 `json:"collapseQualityAbsolute"`
	ChordHeightFactor       float64 `json:"chordHeightFactor"`
	PostMinNormDev          float64 `json:"postMinNormDev"`

	// smooth operator
	SmoothMinQuality  float64 `json:"smoothMinQuality"`
	SmoothMaxHalvings int     `json:"smoothMaxHalvings"`
	// PRClampNegative, when true, clamps the Polak-Ribiere coefficient to
	// zero instead of letting it go negative
	PRClampNegative bool `json:"prClampNegative"`

	// swap operator
	SwapMargin float64 `json:"swapMargin"`

	// nonsmooth/active-set smoothing: incident tets within
	// ActiveSetTieTol of the cavity minimum quality join the active set of
	// the projected-gradient step
	ActiveSetTieTol float64 `json:"activeSetTieTol"`

	// driver-derived thresholds, recomputed every pass by the survey
	// but seeded here with sane initial values
	PostMinRatio float64 `json:"postMinRatio"`
	PostMaxRatio float64 `json:"postMaxRatio"`

	// termination
	MaxNodeAge         int     `json:"maxNodeAge"`
	ConvergenceRelTol  float64 `json:"convergenceRelTol"`

	// tolerance for CAD inverse-projection acceptance
	CadParamTol float64 `json:"cadParamTol"`
}

// Default returns a Config with every threshold set to its standard value
func Default() *Config {
	return &Config{
		SplitRatio:              DefaultSplitRatio,
		CollapseRatio:           DefaultCollapseRatio,
		SplitQualityAbsolute:    1e-3,
		SplitQualityRelative:    0.1,
		CollapseQualityAbsolute: 1e-3,
		ChordHeightFactor:       0.1,
		PostMinNormDev:          1e-3,
		SmoothMinQuality:        1e-3,
		SmoothMaxHalvings:       DefaultSmoothMaxHalvings,
		PRClampNegative:         true,
		SwapMargin:              DefaultSwapMargin,
		ActiveSetTieTol:         1e-12,
		PostMinRatio:            DefaultCollapseRatio,
		PostMaxRatio:            DefaultSplitRatio,
		MaxNodeAge:              DefaultMaxNodeAge,
		ConvergenceRelTol:       0.01,
		CadParamTol:             1e-7,
	}
}

// Read loads a Config from a JSON file, starting from Default() so an
// input file only needs to override the fields it cares about.
func Read(fn string) (cfg *Config, err error) {
	cfg = Default()
	b, err := utl.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(b, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
