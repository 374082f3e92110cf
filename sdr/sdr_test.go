// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdr

import (
	"errors"
	"testing"
)

func TestOverlap(t *testing.T) {
	a := FromIndexes(8, []int{0, 2, 4, 6})
	b := FromIndexes(8, []int{2, 3, 4, 5})
	ov, err := Overlap(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if ov != 2 {
		t.Errorf("overlap: %d != 2", ov)
	}
	ovr, _ := Overlap(b, a)
	if ovr != ov {
		t.Errorf("overlap not symmetric: %d != %d", ovr, ov)
	}
	self, _ := Overlap(a, a)
	if self != a.Count() {
		t.Errorf("self overlap: %d != %d", self, a.Count())
	}
	_, err = Overlap(a, New(7))
	if !errors.Is(err, ErrWidth) {
		t.Errorf("expected ErrWidth, got: %v", err)
	}
}

func TestOrConcat(t *testing.T) {
	a := FromIndexes(6, []int{0, 1})
	b := FromIndexes(6, []int{1, 5})
	if err := Or(a, b); err != nil {
		t.Fatal(err)
	}
	if a.String() != "110001" {
		t.Errorf("or: %s", a)
	}
	if err := Or(a, New(3)); !errors.Is(err, ErrWidth) {
		t.Errorf("expected ErrWidth, got: %v", err)
	}
	c := Concat(FromIndexes(2, []int{1}), FromIndexes(3, []int{0}))
	if c.String() != "01100" {
		t.Errorf("concat: %s", c)
	}
	cl := c.Clone()
	cl[0] = 1
	if c[0] != 0 {
		t.Errorf("clone aliases original")
	}
	if !c.Equal(FromIndexes(5, []int{1, 2})) {
		t.Errorf("equal failed: %s", c)
	}
	if c.Equal(New(4)) {
		t.Errorf("codes of different widths reported equal")
	}
	idx := c.Indexes()
	if len(idx) != 2 || idx[0] != 1 || idx[1] != 2 {
		t.Errorf("indexes: %v", idx)
	}
}

func TestTopK(t *testing.T) {
	vals := []float64{3, 1, 2, 1, 0.5, 3}
	sm := SmallestK(vals, 3)
	exp := []int{4, 1, 3}
	for i := range exp {
		if sm[i] != exp[i] {
			t.Errorf("smallest err: idx: %d, got: %d, expected: %d", i, sm[i], exp[i])
		}
	}
	lg := LargestK(vals, 2)
	if lg[0] != 0 || lg[1] != 5 {
		t.Errorf("largest tie order: %v", lg)
	}
	if len(LargestK(vals, 10)) != len(vals) {
		t.Errorf("k not clipped")
	}
	if LargestK(vals, 0) != nil {
		t.Errorf("k=0 should select nothing")
	}
	ivals := []int{2, 2, 2}
	li := LargestK(ivals, 2)
	if li[0] != 0 || li[1] != 1 {
		t.Errorf("equal ints should keep index order: %v", li)
	}
}
