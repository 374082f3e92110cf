// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sdr provides the sparse distributed representation (SDR) type
shared by all the encoders, the pooler and the consensus computation,
along with the basic set operations on it.

An SDR is a fixed-width vector of 0/1 values, normally with a small,
fixed number of active (1) bits.
*/
package sdr

import (
	"errors"
	"fmt"
)

// ErrWidth is returned (wrapped) whenever two codes, or a code and a
// configured component width, do not match.
var ErrWidth = errors.New("sdr: width mismatch")

// SDR is a sparse binary code: one byte per bit, each 0 or 1.
type SDR []byte

// New returns an all-zero code of width n.
func New(n int) SDR {
	return make(SDR, n)
}

// FromIndexes returns a code of width n with the given bits set.
// Out-of-range indexes are ignored.
func FromIndexes(n int, idxs []int) SDR {
	sd := New(n)
	for _, i := range idxs {
		if i >= 0 && i < n {
			sd[i] = 1
		}
	}
	return sd
}

// Len returns the width of the code.
func (sd SDR) Len() int { return len(sd) }

// Count returns the number of active bits.
func (sd SDR) Count() int {
	n := 0
	for _, b := range sd {
		if b != 0 {
			n++
		}
	}
	return n
}

// Indexes returns the active bit indexes in increasing order.
func (sd SDR) Indexes() []int {
	idxs := make([]int, 0, sd.Count())
	for i, b := range sd {
		if b != 0 {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// Clone returns an independent copy.
func (sd SDR) Clone() SDR {
	cp := make(SDR, len(sd))
	copy(cp, sd)
	return cp
}

// Equal reports whether both codes have the same width and bits.
func (sd SDR) Equal(oc SDR) bool {
	if len(sd) != len(oc) {
		return false
	}
	for i := range sd {
		if (sd[i] != 0) != (oc[i] != 0) {
			return false
		}
	}
	return true
}

// Float32s returns the code as a 0/1 float32 vector.
func (sd SDR) Float32s() []float32 {
	vals := make([]float32, len(sd))
	for i, b := range sd {
		if b != 0 {
			vals[i] = 1
		}
	}
	return vals
}

// Zero clears all bits in place.
func (sd SDR) Zero() {
	for i := range sd {
		sd[i] = 0
	}
}

// String renders the code as a string of 0 and 1 characters.
func (sd SDR) String() string {
	bs := make([]byte, len(sd))
	for i, b := range sd {
		if b != 0 {
			bs[i] = '1'
		} else {
			bs[i] = '0'
		}
	}
	return string(bs)
}

// CheckWidth returns a wrapped ErrWidth if the code is not n bits wide.
// what names the caller's input in the message.
func CheckWidth(what string, sd SDR, n int) error {
	if len(sd) != n {
		return fmt.Errorf("%s: width %d, expected %d: %w", what, len(sd), n, ErrWidth)
	}
	return nil
}

// Overlap returns the number of bits active in both codes (their dot product).
func Overlap(a, b SDR) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("overlap of widths %d and %d: %w", len(a), len(b), ErrWidth)
	}
	ov := 0
	for i := range a {
		if a[i] != 0 && b[i] != 0 {
			ov++
		}
	}
	return ov, nil
}

// Or sets in dst every bit that is active in src.
func Or(dst, src SDR) error {
	if len(dst) != len(src) {
		return fmt.Errorf("or of widths %d and %d: %w", len(dst), len(src), ErrWidth)
	}
	for i, b := range src {
		if b != 0 {
			dst[i] = 1
		}
	}
	return nil
}

// Concat returns the codes laid end to end, first code lowest.
func Concat(codes ...SDR) SDR {
	n := 0
	for _, c := range codes {
		n += len(c)
	}
	sd := make(SDR, 0, n)
	for _, c := range codes {
		sd = append(sd, c...)
	}
	return sd
}
