// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spool implements a competitive spatial pooler.

A bank of columns each holds a permanence for every input bit. The
overlap of a column is the dot product of its permanence row with the
0/1 input, scaled by its boost factor. Columns whose overlap exceeds the
stimulus threshold compete globally and the top NActive win, lower
column index first among equal overlaps. When learning, each winner's
permanences move up for active input bits and down for inactive ones.

Overlap uses the raw permanence values, not a connected mask.
*/
package spool

import (
	"fmt"
	"sync"
	"time"

	"github.com/NQevxvEtg/dao/sdr"
	"github.com/emer/emergent/v2/erand"
	"github.com/emer/emergent/v2/params"
	"github.com/emer/etable/v2/etensor"
	"github.com/emer/etable/v2/minmax"
	"github.com/goki/mat32"
)

// Pooler is a competitive spatial pooler over a fixed-width input.
type Pooler struct {

	// name of the pooler, used for #name params selectors
	Nm string

	// space-separated class names for .class params selectors
	Cls string

	// index of this pooler within a stack of layers
	LayerIdx int

	// width of the input code
	InputWidth int

	// number of columns = width of the output code
	NColumns int

	// initial permanence parameters
	Init InitParams `view:"inline"`

	// k-winners-take-all parameters
	Inhib InhibParams `view:"inline"`

	// permanence learning parameters
	Learn LearnParams `view:"inline"`

	// boosting parameters
	Boost BoostParams `view:"inline"`

	// homeostasis strategy called after each learning step -- NoBoost by default
	Booster Booster `view:"-"`

	// number of goroutines for the overlap pass -- 0 or 1 computes it serially
	NThreads int

	// permanences, shape [NColumns, InputWidth]
	Perms *etensor.Float32 `view:"no-inline"`

	// per-column multiplier on overlap, all 1 at construction
	BoostFactors []float32

	// per-column active duty cycle, maintained for the Booster
	ActDutyCycle []float32

	// per-column overlap duty cycle, maintained for the Booster
	OvlpDutyCycle []float32

	// overlaps from the last Process call
	Overlaps []float32 `view:"-"`

	// statistics of Overlaps from the last Process call
	OverlapStats minmax.AvgMax32 `view:"inline"`
}

// NewPooler returns a pooler with default parameters, initialized with
// random permanences. Parameters can be modified and the permanences
// redrawn with InitPerms before use.
func NewPooler(inputWidth, nColumns int) *Pooler {
	sp := &Pooler{InputWidth: inputWidth, NColumns: nColumns}
	sp.Defaults()
	sp.Build()
	sp.InitPerms()
	return sp
}

func (sp *Pooler) Defaults() {
	sp.Init.Defaults()
	sp.Inhib.Defaults()
	sp.Learn.Defaults()
	sp.Boost.Defaults()
	sp.Booster = NoBoost{}
}

// Update updates all params given any changes that might have been made to individual values
func (sp *Pooler) Update() {
	sp.Init.Update()
	sp.Inhib.Update()
	sp.Learn.Update()
	sp.Boost.Update()
	if sp.Booster == nil {
		sp.Booster = NoBoost{}
	}
}

// Build allocates all state for the current InputWidth and NColumns.
// Permanences are all zero until InitPerms is called.
func (sp *Pooler) Build() {
	sp.Perms = etensor.NewFloat32([]int{sp.NColumns, sp.InputWidth}, nil, []string{"Column", "Input"})
	sp.BoostFactors = make([]float32, sp.NColumns)
	sp.ActDutyCycle = make([]float32, sp.NColumns)
	sp.OvlpDutyCycle = make([]float32, sp.NColumns)
	sp.Overlaps = make([]float32, sp.NColumns)
	for ci := range sp.BoostFactors {
		sp.BoostFactors[ci] = 1
	}
}

// InitPerms draws the initial permanences: each column / input pair
// gets a potential synapse with probability Init.PotentialRatio, with
// permanence uniform in Init.Connected +/- Init.Jitter, else 0.
// Boost factors are reset to 1 and duty cycles to 0.
func (sp *Pooler) InitPerms() {
	seed := sp.Init.Seed
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	rnd := erand.NewSysRand(seed)
	sp.Init.Update()
	for i := range sp.Perms.Values {
		if erand.BoolP32(sp.Init.PotentialRatio, -1, rnd) {
			sp.Perms.Values[i] = clip01(float32(sp.Init.Perm.Gen(-1, rnd)))
		} else {
			sp.Perms.Values[i] = 0
		}
	}
	for ci := 0; ci < sp.NColumns; ci++ {
		sp.BoostFactors[ci] = 1
		sp.ActDutyCycle[ci] = 0
		sp.OvlpDutyCycle[ci] = 0
	}
}

// Perm returns the permanence of column ci onto input bit ii.
func (sp *Pooler) Perm(ci, ii int) float32 {
	return sp.Perms.Values[ci*sp.InputWidth+ii]
}

// SetPerm sets the permanence of column ci onto input bit ii, clipped to [0, 1].
func (sp *Pooler) SetPerm(ci, ii int, val float32) {
	sp.Perms.Values[ci*sp.InputWidth+ii] = clip01(val)
}

// EnablePlasticity turns learning on with the given increment and decrement.
func (sp *Pooler) EnablePlasticity(activeInc, inactiveDec float32) {
	sp.Learn.On = true
	sp.Learn.ActiveInc = activeInc
	sp.Learn.InactiveDec = inactiveDec
}

// DisablePlasticity turns learning off; Process never changes permanences.
func (sp *Pooler) DisablePlasticity() {
	sp.Learn.On = false
}

// Process computes the output code for in. If learn is true and
// learning is on, the winning columns' permanences are updated and the
// Booster is called, after the output has been determined.
func (sp *Pooler) Process(in sdr.SDR, learn bool) (sdr.SDR, error) {
	if err := sdr.CheckWidth("pooler input", in, sp.InputWidth); err != nil {
		return nil, err
	}
	sp.CalcOverlaps(in)
	act := sp.ActiveColumns(sp.Overlaps)
	if learn {
		if sp.Learn.On {
			sp.LearnPerms(in, act)
		}
		sp.Booster.Boost(sp, act)
	}
	return sdr.FromIndexes(sp.NColumns, act), nil
}

// CalcOverlaps computes boosted overlaps for every column into Overlaps,
// and updates OverlapStats. Columns are split across NThreads goroutines.
func (sp *Pooler) CalcOverlaps(in sdr.SDR) {
	inIdx := in.Indexes()
	nt := sp.NThreads
	if nt <= 1 || sp.NColumns < nt {
		sp.overlapRange(inIdx, 0, sp.NColumns)
	} else {
		var wg sync.WaitGroup
		per := (sp.NColumns + nt - 1) / nt
		for st := 0; st < sp.NColumns; st += per {
			ed := st + per
			if ed > sp.NColumns {
				ed = sp.NColumns
			}
			wg.Add(1)
			go func(st, ed int) {
				sp.overlapRange(inIdx, st, ed)
				wg.Done()
			}(st, ed)
		}
		wg.Wait()
	}
	sp.OverlapStats.Init()
	for ci, ov := range sp.Overlaps {
		sp.OverlapStats.UpdateVal(ov, int32(ci))
	}
	sp.OverlapStats.CalcAvg()
}

// overlapRange sums each column row over the active input bits, in
// increasing input order so the result is independent of threading.
func (sp *Pooler) overlapRange(inIdx []int, st, ed int) {
	for ci := st; ci < ed; ci++ {
		row := sp.Perms.Values[ci*sp.InputWidth : (ci+1)*sp.InputWidth]
		sum := float32(0)
		for _, ii := range inIdx {
			sum += row[ii]
		}
		sp.Overlaps[ci] = sum * sp.BoostFactors[ci]
	}
}

// ActiveColumns returns the winning columns for the given overlaps:
// those strictly above Inhib.StimThr, highest first, at most Inhib.NActive.
func (sp *Pooler) ActiveColumns(ovs []float32) []int {
	var cand []int
	var cvals []float32
	for ci, ov := range ovs {
		if ov > sp.Inhib.StimThr {
			cand = append(cand, ci)
			cvals = append(cvals, ov)
		}
	}
	top := sdr.LargestK(cvals, sp.Inhib.NActive)
	act := make([]int, len(top))
	for i, ti := range top {
		act[i] = cand[ti]
	}
	return act
}

// LearnPerms applies the Hebbian update to the given columns only.
func (sp *Pooler) LearnPerms(in sdr.SDR, act []int) {
	inc := sp.Learn.ActiveInc
	dec := sp.Learn.InactiveDec
	for _, ci := range act {
		row := sp.Perms.Values[ci*sp.InputWidth : (ci+1)*sp.InputWidth]
		for ii := range row {
			if in[ii] != 0 {
				row[ii] = mat32.Min(1, row[ii]+inc)
			} else {
				row[ii] = mat32.Max(0, row[ii]-dec)
			}
		}
	}
}

// MemBytes returns the approximate memory used by the pooler state.
func (sp *Pooler) MemBytes() int {
	return 4 * (len(sp.Perms.Values) + len(sp.BoostFactors) + len(sp.ActDutyCycle) + len(sp.OvlpDutyCycle) + len(sp.Overlaps))
}

func (sp *Pooler) TypeName() string { return "Pooler" }
func (sp *Pooler) Class() string    { return sp.Cls }
func (sp *Pooler) Name() string     { return sp.Nm }

// LayerIndex returns the index of this pooler within a stack of layers.
func (sp *Pooler) LayerIndex() int { return sp.LayerIdx }

// ApplyParams applies given parameter style Sheet to this pooler.
// Calls Update if anything set.
func (sp *Pooler) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(sp, setMsg)
	if app {
		sp.Update()
	}
	return app, err
}

// String returns a short description of the pooler configuration.
func (sp *Pooler) String() string {
	return fmt.Sprintf("Pooler %s: %d -> %d columns, %d active, thr %g", sp.Nm, sp.InputWidth, sp.NColumns, sp.Inhib.NActive, sp.Inhib.StimThr)
}

func clip01(v float32) float32 {
	return mat32.Max(0, mat32.Min(1, v))
}
