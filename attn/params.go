// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package attn

import (
	"github.com/NQevxvEtg/dao/sdr"
	"github.com/goki/ki/kit"
)

// Modes are the forms of consensus output.
type Modes int32

var KiT_Modes = kit.Enums.AddEnum(ModesN, kit.NotBitFlag, nil)

func (ev Modes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Modes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// BinaryMode computes the resonance and dissonance codes.
	BinaryMode Modes = iota

	// ContinuousMode computes the resonance vector.
	ContinuousMode

	ModesN
)

// Params select how consensus is computed over a history.
type Params struct {

	// which output to compute
	Mode Modes `def:"ContinuousMode"`

	// number of nearest neighbors that vote
	K int `def:"5" min:"0"`
}

func (ap *Params) Defaults() {
	ap.Mode = ContinuousMode
	ap.K = 5
}

// Result holds the consensus for the most recent history entry.
// Only the fields for the computed Mode are set.
type Result struct {
	Resonance  sdr.SDR
	Dissonance sdr.SDR
	Vector     []float32
}

// Apply computes the consensus for the last entry of hist.
func (ap *Params) Apply(hist []sdr.SDR) (*Result, error) {
	rs := &Result{}
	var err error
	switch ap.Mode {
	case BinaryMode:
		rs.Resonance, rs.Dissonance, err = SparseAttentionLast(hist, ap.K)
	default:
		rs.Vector, err = ResonanceVector(hist, ap.K)
	}
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// History is a bounded, append-only buffer of codes, oldest first.
// When full, pushing drops the oldest entry.
type History struct {

	// maximum number of entries -- 0 means unbounded
	Max int

	codes []sdr.SDR
}

// Push appends a copy of sd.
func (hs *History) Push(sd sdr.SDR) {
	hs.codes = append(hs.codes, sd.Clone())
	if hs.Max > 0 && len(hs.codes) > hs.Max {
		hs.codes = hs.codes[len(hs.codes)-hs.Max:]
	}
}

// Codes returns the buffered codes, oldest first. Callers must not modify them.
func (hs *History) Codes() []sdr.SDR { return hs.codes }

func (hs *History) Len() int { return len(hs.codes) }

// Reset empties the buffer.
func (hs *History) Reset() { hs.codes = nil }
