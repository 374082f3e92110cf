// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdse

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/NQevxvEtg/dao/sdr"
	"github.com/unixpickle/serializer"
)

func TestEncodeActiveCount(t *testing.T) {
	sizes := []struct{ n, w int }{{1, 1}, {16, 4}, {16, 16}, {100, 7}, {2048, 40}}
	vals := []float64{-3, 0, 0.1, 0.5, 9.9, 1e6}
	for _, sz := range sizes {
		ec, err := NewEncoder(sz.n, sz.w, 10, 3)
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range vals {
			cd := ec.Encode(v)
			if cd.Len() != sz.n {
				t.Errorf("width err: n: %d, got: %d", sz.n, cd.Len())
			}
			if cd.Count() != sz.w {
				t.Errorf("active err: n: %d w: %d val: %g, got: %d", sz.n, sz.w, v, cd.Count())
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	a, _ := NewEncoder(16, 4, 10, 42)
	b, _ := NewEncoder(16, 4, 10, 42)
	if !reflect.DeepEqual(a.Prototypes, b.Prototypes) {
		t.Errorf("same seed gave different prototypes")
	}
	c1 := a.Encode(0.1)
	c2 := a.Encode(0.1)
	if !c1.Equal(c2) {
		t.Errorf("repeat encode differs: %s vs %s", c1, c2)
	}
	if !c1.Equal(b.Encode(0.1)) {
		t.Errorf("same seed encoders disagree")
	}
	self, _ := sdr.Overlap(c1, c1)
	if self != 4 {
		t.Errorf("self overlap: %d != 4", self)
	}
}

func TestPrototypeRange(t *testing.T) {
	a, _ := NewEncoder(500, 10, 3.5, 7)
	lo, hi := a.Prototypes[0], a.Prototypes[0]
	for i, p := range a.Prototypes {
		if p < 0 || p >= 3.5 {
			t.Errorf("prototype out of range: idx: %d, val: %g", i, p)
		}
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	if lo > 0.5 || hi < 3 {
		t.Errorf("prototypes do not span the resolution: min: %g, max: %g", lo, hi)
	}
	b, _ := NewEncoder(500, 10, 3.5, 8)
	if reflect.DeepEqual(a.Prototypes, b.Prototypes) {
		t.Errorf("different seeds gave identical prototypes")
	}
}

func TestSeparation(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		ec, _ := NewEncoder(16, 4, 10, seed)
		ov, _ := sdr.Overlap(ec.Encode(0.1), ec.Encode(9.9))
		if ov > 1 {
			t.Errorf("seed %d: distant values overlap: %d", seed, ov)
		}
	}
}

func TestNearestPrototypes(t *testing.T) {
	ec := &Encoder{Params: Params{N: 6, W: 2, Resolution: 1}, Prototypes: []float64{0.875, 0.125, 0.5, 0.375, 0.0625, 0.375}}
	cd := ec.Encode(0.25)
	// three prototypes at distance 0.125; index 5 loses the tie
	if cd.String() != "010100" {
		t.Errorf("nearest: %s", cd)
	}
}

func TestParams(t *testing.T) {
	bad := []Params{
		{N: 4, W: 5, Resolution: 1},
		{N: 4, W: 0, Resolution: 1},
		{N: 0, W: 0, Resolution: 1},
		{N: 4, W: 2, Resolution: 0},
	}
	for i, pr := range bad {
		if _, err := New(pr); !errors.Is(err, ErrParams) {
			t.Errorf("params %d: expected ErrParams, got: %v", i, err)
		}
	}
	var pr Params
	pr.Defaults()
	if err := pr.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestSerialize(t *testing.T) {
	ec, _ := NewEncoder(32, 5, 7.5, 9)
	data, err := serializer.SerializeWithType(ec)
	if err != nil {
		t.Fatal(err)
	}
	obj, err := serializer.DeserializeWithType(data)
	if err != nil {
		t.Fatal(err)
	}
	dc, ok := obj.(*Encoder)
	if !ok {
		t.Fatalf("bad type: %T", obj)
	}
	if !reflect.DeepEqual(ec, dc) {
		t.Errorf("expected %v but got %v", ec, dc)
	}
}
