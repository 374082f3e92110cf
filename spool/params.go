// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spool

import "github.com/emer/emergent/v2/erand"

// InitParams control the initial random permanences.
type InitParams struct {

	// probability that a column has a potential synapse onto any given input bit
	PotentialRatio float32 `def:"0.5" min:"0" max:"1"`

	// permanence at or above which a synapse counts as connected -- initial permanences are centered here
	Connected float32 `def:"0.5" min:"0" max:"1"`

	// initial permanences are uniform in Connected +/- Jitter
	Jitter float32 `def:"0.1" min:"0"`

	// random seed for initialization -- negative means seeded from the clock
	Seed int64 `def:"-1"`

	// permanence distribution, set from Connected and Jitter in Update
	Perm erand.RndParams `view:"-"`
}

func (ip *InitParams) Defaults() {
	ip.PotentialRatio = 0.5
	ip.Connected = 0.5
	ip.Jitter = 0.1
	ip.Seed = -1
	ip.Update()
}

func (ip *InitParams) Update() {
	ip.Perm.Dist = erand.Uniform
	ip.Perm.Mean = float64(ip.Connected)
	ip.Perm.Var = float64(ip.Jitter)
}

// InhibParams determine the global k-winners-take-all competition.
// There is no neighborhood: every column competes with every other.
type InhibParams struct {

	// maximum number of active columns in the output
	NActive int `def:"10" min:"0"`

	// a column needs overlap strictly above this to be eligible
	StimThr float32 `def:"5"`
}

func (ip *InhibParams) Defaults() {
	ip.NActive = 10
	ip.StimThr = 5
}

func (ip *InhibParams) Update() {
	if ip.NActive < 0 {
		ip.NActive = 0
	}
}

// LearnParams are the Hebbian permanence learning parameters.
type LearnParams struct {

	// enable permanence learning -- Process still needs learn = true
	On bool `def:"true"`

	// increment for synapses onto active input bits of a winning column
	ActiveInc float32 `def:"0.01" min:"0"`

	// decrement for synapses onto inactive input bits of a winning column
	InactiveDec float32 `def:"0.005" min:"0"`
}

func (lp *LearnParams) Defaults() {
	lp.On = true
	lp.ActiveInc = 0.01
	lp.InactiveDec = 0.005
}

func (lp *LearnParams) Update() {
}

// BoostParams parameterize the homeostatic boost strategy.
type BoostParams struct {

	// strength of boosting, passed to the Booster -- unused by NoBoost
	Strength float32 `def:"1"`
}

func (bp *BoostParams) Defaults() {
	bp.Strength = 1
}

func (bp *BoostParams) Update() {
}
