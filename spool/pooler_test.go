// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spool

import (
	"errors"
	"reflect"
	"testing"

	"github.com/NQevxvEtg/dao/sdr"
	"github.com/emer/emergent/v2/erand"
	"github.com/emer/emergent/v2/params"
	"github.com/goki/mat32"
	"github.com/unixpickle/serializer"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-6)

func testPooler(in, cols int) *Pooler {
	sp := &Pooler{InputWidth: in, NColumns: cols}
	sp.Defaults()
	sp.Init.Seed = 17
	sp.Build()
	sp.InitPerms()
	return sp
}

func testInput(n int, idxs ...int) sdr.SDR {
	return sdr.FromIndexes(n, idxs)
}

func TestZeroInput(t *testing.T) {
	sp := testPooler(16, 8)
	sp.Inhib.NActive = 2
	sp.Inhib.StimThr = 0
	out, err := sp.Process(sdr.New(16), true)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 8 || out.Count() != 0 {
		t.Errorf("zero input: width %d, count %d", out.Len(), out.Count())
	}
}

func TestInitPerms(t *testing.T) {
	sp := testPooler(200, 50)
	npot := 0
	for i, p := range sp.Perms.Values {
		if p == 0 {
			continue
		}
		npot++
		if p < 0.4-difTol || p > 0.6+difTol {
			t.Errorf("init perm out of range: idx: %d, val: %g", i, p)
		}
	}
	frac := float32(npot) / float32(len(sp.Perms.Values))
	if mat32.Abs(frac-0.5) > 0.05 {
		t.Errorf("potential fraction: %g, expected near 0.5", frac)
	}
	for ci := 0; ci < sp.NColumns; ci++ {
		if sp.BoostFactors[ci] != 1 || sp.ActDutyCycle[ci] != 0 || sp.OvlpDutyCycle[ci] != 0 {
			t.Errorf("column %d: boost / duty not neutral", ci)
		}
	}
	other := testPooler(200, 50)
	if !reflect.DeepEqual(sp.Perms.Values, other.Perms.Values) {
		t.Errorf("same seed gave different permanences")
	}
	if sp.Init.Perm.Dist != erand.Uniform || sp.Init.Perm.Mean != float64(sp.Init.Connected) || sp.Init.Perm.Var != float64(sp.Init.Jitter) {
		t.Errorf("perm dist not set from Connected / Jitter: %+v", sp.Init.Perm)
	}
	other.Init.Seed = 18
	other.InitPerms()
	if reflect.DeepEqual(sp.Perms.Values, other.Perms.Values) {
		t.Errorf("different seeds gave identical permanences")
	}
}

func TestInitPermsNoJitter(t *testing.T) {
	sp := &Pooler{InputWidth: 40, NColumns: 10}
	sp.Defaults()
	sp.Init.Seed = 3
	sp.Init.Connected = 0.3
	sp.Init.Jitter = 0
	sp.Init.PotentialRatio = 1
	sp.Build()
	sp.InitPerms()
	for i, p := range sp.Perms.Values {
		if mat32.Abs(p-0.3) > difTol {
			t.Errorf("init perm err: idx: %d, got: %g, expected: %g", i, p, 0.3)
		}
	}
}

func TestActiveColumns(t *testing.T) {
	sp := &Pooler{InputWidth: 4, NColumns: 6}
	sp.Defaults()
	sp.Build()
	sp.Inhib.NActive = 3
	sp.Inhib.StimThr = 0.5
	// overlaps for input {0,1}: 1.2, 0.5, 2, 1.2, 0.9, 1.2
	rows := [][]float32{
		{0.6, 0.6, 0, 0},
		{0.25, 0.25, 1, 1},
		{1, 1, 0, 0},
		{0.6, 0.6, 0, 0},
		{0.45, 0.45, 0, 0},
		{0.6, 0.6, 0, 0},
	}
	for ci, row := range rows {
		for ii, p := range row {
			sp.SetPerm(ci, ii, p)
		}
	}
	out, err := sp.Process(testInput(4, 0, 1), false)
	if err != nil {
		t.Fatal(err)
	}
	// column 2 first, then the tie at 1.2 goes to columns 0 and 3
	if out.String() != "101100" {
		t.Errorf("active columns: %s", out)
	}
	if mat32.Abs(sp.OverlapStats.Max-2) > difTol {
		t.Errorf("overlap max: %g", sp.OverlapStats.Max)
	}
	if sp.OverlapStats.MaxIdx != 2 {
		t.Errorf("overlap max idx: %d, expected: 2", sp.OverlapStats.MaxIdx)
	}
	avg := float32(1.2+0.5+2+1.2+0.9+1.2) / 6
	if mat32.Abs(sp.OverlapStats.Avg-avg) > 1.0e-5 {
		t.Errorf("overlap avg err: got: %g, expected: %g", sp.OverlapStats.Avg, avg)
	}
	sp.Inhib.NActive = 10
	out, _ = sp.Process(testInput(4, 0, 1), false)
	// column 1 at exactly the threshold is excluded
	if out.String() != "101111" {
		t.Errorf("threshold: %s", out)
	}
	sp.BoostFactors[1] = 4
	out, _ = sp.Process(testInput(4, 0, 1), false)
	if out.Count() != 6 {
		t.Errorf("boost factor not applied: %s", out)
	}
}

func TestNoLearn(t *testing.T) {
	sp := testPooler(64, 32)
	sp.Inhib.StimThr = 1
	in := testInput(64, 1, 5, 9, 13, 17, 21, 25, 29, 33, 37, 41, 45)
	before := append([]float32(nil), sp.Perms.Values...)
	first, _ := sp.Process(in, false)
	for i := 0; i < 5; i++ {
		out, _ := sp.Process(in, false)
		if !out.Equal(first) {
			t.Errorf("iter %d: output changed without learning", i)
		}
	}
	if !reflect.DeepEqual(before, sp.Perms.Values) {
		t.Errorf("permanences changed without learning")
	}
	if first.Count() > sp.Inhib.NActive {
		t.Errorf("active count %d > %d", first.Count(), sp.Inhib.NActive)
	}
	sp.DisablePlasticity()
	sp.Process(in, true)
	if !reflect.DeepEqual(before, sp.Perms.Values) {
		t.Errorf("permanences changed with plasticity disabled")
	}
}

func TestLearn(t *testing.T) {
	sp := testPooler(64, 32)
	sp.Inhib.StimThr = 1
	sp.EnablePlasticity(0.3, 0.2)
	in := testInput(64, 0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22)
	before := append([]float32(nil), sp.Perms.Values...)
	out, err := sp.Process(in, true)
	if err != nil {
		t.Fatal(err)
	}
	if out.Count() == 0 {
		t.Fatal("no active columns to learn on")
	}
	for ci := 0; ci < sp.NColumns; ci++ {
		for ii := 0; ii < sp.InputWidth; ii++ {
			pi := ci*sp.InputWidth + ii
			old, cur := before[pi], sp.Perms.Values[pi]
			if cur < 0 || cur > 1 {
				t.Errorf("perm out of [0,1]: col: %d in: %d val: %g", ci, ii, cur)
			}
			switch {
			case out[ci] == 0:
				if cur != old {
					t.Errorf("inactive column changed: col: %d in: %d", ci, ii)
				}
			case in[ii] != 0:
				if cur < old || mat32.Abs(cur-mat32.Min(1, old+0.3)) > difTol {
					t.Errorf("active bit err: col: %d in: %d, old: %g, new: %g", ci, ii, old, cur)
				}
			default:
				if cur > old || mat32.Abs(cur-mat32.Max(0, old-0.2)) > difTol {
					t.Errorf("inactive bit err: col: %d in: %d, old: %g, new: %g", ci, ii, old, cur)
				}
			}
		}
	}
}

func TestWidthError(t *testing.T) {
	sp := testPooler(16, 8)
	before := append([]float32(nil), sp.Perms.Values...)
	_, err := sp.Process(sdr.New(15), true)
	if !errors.Is(err, sdr.ErrWidth) {
		t.Errorf("expected ErrWidth, got: %v", err)
	}
	if !reflect.DeepEqual(before, sp.Perms.Values) {
		t.Errorf("rejected input mutated permanences")
	}
}

func TestThreads(t *testing.T) {
	in := testInput(128, 3, 7, 11, 19, 23, 31, 43, 47, 59, 61, 67, 71, 79, 83, 97, 101)
	ser := testPooler(128, 97)
	ser.Inhib.StimThr = 1
	par := testPooler(128, 97)
	par.Inhib.StimThr = 1
	par.NThreads = 4
	for i := 0; i < 3; i++ {
		so, _ := ser.Process(in, true)
		po, _ := par.Process(in, true)
		if !so.Equal(po) {
			t.Errorf("iter %d: threaded output differs", i)
		}
		if !reflect.DeepEqual(ser.Overlaps, par.Overlaps) {
			t.Errorf("iter %d: threaded overlaps differ", i)
		}
	}
}

type countBoost struct {
	calls int
	last  []int
}

func (cb *countBoost) Boost(sp *Pooler, act []int) {
	cb.calls++
	cb.last = act
}

func TestBooster(t *testing.T) {
	sp := testPooler(64, 32)
	sp.Inhib.StimThr = 1
	cb := &countBoost{}
	sp.Booster = cb
	in := testInput(64, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
	sp.Process(in, false)
	if cb.calls != 0 {
		t.Errorf("booster called without learning")
	}
	out, _ := sp.Process(in, true)
	if cb.calls != 1 || len(cb.last) != out.Count() {
		t.Errorf("booster calls: %d, act: %v", cb.calls, cb.last)
	}

	nb := testPooler(64, 32)
	nb.Inhib.StimThr = 1
	nb.Process(in, true)
	for ci := range nb.BoostFactors {
		if nb.BoostFactors[ci] != 1 || nb.ActDutyCycle[ci] != 0 {
			t.Errorf("NoBoost changed column %d", ci)
		}
	}
}

func TestApplyParams(t *testing.T) {
	sp := testPooler(16, 8)
	sheet := params.Sheet{
		{Sel: "Pooler", Desc: "faster learning",
			Params: params.Params{
				"Pooler.Learn.ActiveInc": "0.02",
				"Pooler.Inhib.NActive":   "3",
			}},
		{Sel: "#other", Desc: "not this pooler",
			Params: params.Params{
				"Pooler.Inhib.StimThr": "100",
			}},
	}
	app, err := sp.ApplyParams(&sheet, false)
	if err != nil {
		t.Error(err)
	}
	if !app {
		t.Errorf("params not applied")
	}
	if mat32.Abs(sp.Learn.ActiveInc-0.02) > difTol || sp.Inhib.NActive != 3 {
		t.Errorf("params err: inc: %g, nactive: %d", sp.Learn.ActiveInc, sp.Inhib.NActive)
	}
	if sp.Inhib.StimThr != 5 {
		t.Errorf("name selector applied to wrong pooler: %g", sp.Inhib.StimThr)
	}
}

func TestLayerIndex(t *testing.T) {
	sp := NewPooler(8, 4)
	if sp.LayerIndex() != 0 {
		t.Errorf("layer index: %d, expected: 0", sp.LayerIndex())
	}
	sp.LayerIdx = 3
	if sp.LayerIndex() != 3 {
		t.Errorf("layer index: %d, expected: 3", sp.LayerIndex())
	}
}

func TestSerialize(t *testing.T) {
	sp := testPooler(32, 16)
	sp.LayerIdx = 2
	sp.DisablePlasticity()
	sp.BoostFactors[3] = 1.5
	data, err := serializer.SerializeWithType(sp)
	if err != nil {
		t.Fatal(err)
	}
	obj, err := serializer.DeserializeWithType(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sp, obj) {
		t.Errorf("expected %v but got %v", sp, obj)
	}
}
