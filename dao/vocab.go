// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dao

import (
	"fmt"
	"math/rand"

	"github.com/NQevxvEtg/dao/sdr"
	"github.com/NQevxvEtg/dao/text"
	"github.com/goki/ki/ints"
	"github.com/goki/mat32"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
)

// Vocab reads token logits out of a recurrent state.
type Vocab struct {

	// number of tokens
	Size int

	// width of the recurrent state
	NCells int

	// weights, row-major [Size, NCells]
	Weights *anydiff.Var
}

// NewVocab returns a readout with weights drawn from N(0, std^2).
func NewVocab(size, nCells int, std float64, rnd *rand.Rand) *Vocab {
	c := anyvec32.CurrentCreator()
	vc := &Vocab{Size: size, NCells: nCells, Weights: anydiff.NewVar(c.MakeVector(size * nCells))}
	anyvec.Rand(vc.Weights.Vector, anyvec.Normal, rnd)
	vc.Weights.Vector.Scale(c.MakeNumeric(std))
	return vc
}

// Apply returns the differentiable logits for a state of length NCells.
func (vc *Vocab) Apply(st anydiff.Res) anydiff.Res {
	wm := &anydiff.Matrix{Data: vc.Weights, Rows: vc.Size, Cols: vc.NCells}
	return anydiff.MatMul(false, true, &anydiff.Matrix{Data: st, Rows: 1, Cols: vc.NCells}, wm).Data
}

// Logits returns the raw logits for a state.
func (vc *Vocab) Logits(act []float32) ([]float32, error) {
	if len(act) != vc.NCells {
		return nil, fmt.Errorf("vocab state: width %d, expected %d: %w", len(act), vc.NCells, sdr.ErrWidth)
	}
	st := make([]float32, len(act))
	copy(st, act)
	return vc.Apply(anydiff.NewConst(anyvec32.MakeVectorData(st))).Output().Data().([]float32), nil
}

// Argmax returns the index of the largest logit, lowest index on ties.
func Argmax(logits []float32) int {
	mi := 0
	for i, l := range logits {
		if l > logits[mi] {
			mi = i
		}
	}
	return mi
}

// Sampling holds the decoding parameters for generation.
type Sampling struct {

	// softmax temperature -- zero or less means greedy
	Temp float32 `def:"0.7"`

	// keep only the TopK largest logits -- zero means all
	TopK int `def:"40"`

	// logits are clamped to +/- Clamp before anything else
	Clamp float32 `def:"15"`

	// repetition penalty over recent tokens -- 1 is off
	RepPenalty float32 `def:"1"`

	// number of most recent tokens the repetition penalty looks at
	RepLookback int `def:"30"`
}

func (sp *Sampling) Defaults() {
	sp.Temp = 0.7
	sp.TopK = 40
	sp.Clamp = 15
	sp.RepPenalty = 1
	sp.RepLookback = 30
}

func (sp *Sampling) Update() {
	if sp.RepPenalty <= 0 {
		sp.RepPenalty = 1
	}
}

// Probs returns the sampling distribution over logits: clamped,
// penalized for recent tokens, with banned ids and everything below
// the k-th largest value removed, then temperature scaled and normalized. If
// nothing survives the result is all NaN.
func (sp *Sampling) Probs(logits []float32, banned, recent []int) []float32 {
	n := len(logits)
	lg := make([]float32, n)
	for i, l := range logits {
		lg[i] = mat32.Max(-sp.Clamp, mat32.Min(sp.Clamp, l))
	}
	if sp.RepPenalty != 1 && sp.RepLookback > 0 {
		st := ints.MaxInt(0, len(recent)-sp.RepLookback)
		seen := map[int]bool{}
		for _, id := range recent[st:] {
			if id < 0 || id >= n || seen[id] {
				continue
			}
			seen[id] = true
			if lg[id] > 0 {
				lg[id] /= sp.RepPenalty
			} else {
				lg[id] *= sp.RepPenalty
			}
		}
	}
	for _, id := range banned {
		if id >= 0 && id < n {
			lg[id] = -mat32.Infinity
		}
	}
	if sp.TopK > 0 && sp.TopK < n {
		// values tied with the k-th largest are all kept
		kth := mat32.Infinity
		for _, i := range sdr.LargestK(lg, sp.TopK) {
			kth = mat32.Min(kth, lg[i])
		}
		for i := range lg {
			if lg[i] < kth {
				lg[i] = -mat32.Infinity
			}
		}
	}
	probs := make([]float32, n)
	if n == 0 {
		return probs
	}
	mi := Argmax(lg)
	mx := lg[mi]
	if mat32.IsInf(mx, -1) {
		for i := range probs {
			probs[i] = mat32.NaN()
		}
		return probs
	}
	if sp.Temp <= 0 {
		probs[mi] = 1
		return probs
	}
	sum := float32(0)
	for i, l := range lg {
		if mat32.IsInf(l, -1) {
			continue
		}
		probs[i] = mat32.Exp((l - mx) / sp.Temp)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Sample draws an index from probs, returning the unknown id if probs
// contains NaN or has no mass.
func Sample(probs []float32, rnd *rand.Rand) int {
	sum := float32(0)
	for _, p := range probs {
		if mat32.IsNaN(p) {
			return text.UnkID
		}
		sum += p
	}
	if sum <= 0 {
		return text.UnkID
	}
	var r float32
	if rnd != nil {
		r = rnd.Float32() * sum
	} else {
		r = rand.Float32() * sum
	}
	last := text.UnkID
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		last = i
		if r < p {
			return i
		}
		r -= p
	}
	return last
}

// Decode samples the next token from a state.
func (sp *Sampling) Decode(vc *Vocab, act []float32, banned, recent []int, rnd *rand.Rand) (int, error) {
	lg, err := vc.Logits(act)
	if err != nil {
		return text.UnkID, err
	}
	return Sample(sp.Probs(lg, banned, recent), rnd), nil
}
