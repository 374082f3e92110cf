// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package attn computes a consensus signal over a history of sparse codes.

For a target code, the k other history entries with the largest
overlap are its neighbors (earlier entries first among equal overlaps),
and neighbors with no overlap at all are dropped. The neighbors then
vote bit by bit:

  - Resonance: bits set in more than ConsensusThr neighbors.
  - Dissonance: bits set in some neighbor but not in the resonance code.
  - Resonance vector: fraction of neighbors voting for each bit.

All functions are pure and never modify the history.
*/
package attn

import (
	"errors"
	"fmt"

	"github.com/NQevxvEtg/dao/sdr"
	"github.com/goki/ki/ints"
)

// ConsensusThr is the vote count a bit must exceed to enter the resonance code.
const ConsensusThr = 1

// ErrIndex is returned (wrapped) for a target index outside the history.
var ErrIndex = errors.New("attn: target index out of range")

// checkHist returns the common width of the history codes.
func checkHist(hist []sdr.SDR) (int, error) {
	if len(hist) == 0 {
		return 0, nil
	}
	n := hist[0].Len()
	for i, h := range hist {
		if err := sdr.CheckWidth(fmt.Sprintf("history entry %d", i), h, n); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// Neighbors returns the indexes of up to k history entries most similar
// to hist[idx], excluding idx itself and entries with zero overlap,
// ordered by decreasing overlap and then increasing index.
func Neighbors(idx int, hist []sdr.SDR, k int) ([]int, error) {
	if _, err := checkHist(hist); err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(hist) {
		return nil, fmt.Errorf("index %d, history length %d: %w", idx, len(hist), ErrIndex)
	}
	k = ints.MinInt(k, len(hist)-1)
	if k <= 0 {
		return nil, nil
	}
	cand := make([]int, 0, len(hist)-1)
	ovs := make([]int, 0, len(hist)-1)
	for i, h := range hist {
		if i == idx {
			continue
		}
		ov, _ := sdr.Overlap(hist[idx], h)
		cand = append(cand, i)
		ovs = append(ovs, ov)
	}
	var nbrs []int
	for _, ci := range sdr.LargestK(ovs, k) {
		if ovs[ci] > 0 {
			nbrs = append(nbrs, cand[ci])
		}
	}
	return nbrs, nil
}

// votes returns the per-bit count of neighbors with the bit set.
func votes(hist []sdr.SDR, nbrs []int, n int) []int {
	cnt := make([]int, n)
	for _, ni := range nbrs {
		for b, v := range hist[ni] {
			if v != 0 {
				cnt[b]++
			}
		}
	}
	return cnt
}

// SparseAttention returns the resonance and dissonance codes for
// hist[idx] over its k nearest neighbors. Both are all-zero, with the
// history width, when the resonance code would be empty: with fewer
// than 2 neighbors, k <= 0, or no bit agreed on by enough neighbors.
func SparseAttention(idx int, hist []sdr.SDR, k int) (res, dis sdr.SDR, err error) {
	n, err := checkHist(hist)
	if err != nil {
		return nil, nil, err
	}
	res = sdr.New(n)
	dis = sdr.New(n)
	if len(hist) <= 1 {
		return res, dis, nil
	}
	nbrs, err := Neighbors(idx, hist, k)
	if err != nil {
		return nil, nil, err
	}
	if len(nbrs) <= ConsensusThr {
		return res, dis, nil
	}
	cnt := votes(hist, nbrs, n)
	nres := 0
	for b, c := range cnt {
		if c > ConsensusThr {
			res[b] = 1
			nres++
		}
	}
	if nres == 0 {
		return res, dis, nil
	}
	for b, c := range cnt {
		if c > 0 && res[b] == 0 {
			dis[b] = 1
		}
	}
	return res, dis, nil
}

// SparseAttentionLast is SparseAttention for the most recent entry.
func SparseAttentionLast(hist []sdr.SDR, k int) (res, dis sdr.SDR, err error) {
	if len(hist) == 0 {
		return sdr.SDR{}, sdr.SDR{}, nil
	}
	return SparseAttention(len(hist)-1, hist, k)
}

// ResonanceVector returns, for the most recent entry, the fraction of
// its neighbors that have each bit set. It is all-zero when there are
// no neighbors.
func ResonanceVector(hist []sdr.SDR, k int) ([]float32, error) {
	n, err := checkHist(hist)
	if err != nil {
		return nil, err
	}
	vec := make([]float32, n)
	if len(hist) <= 1 {
		return vec, nil
	}
	nbrs, err := Neighbors(len(hist)-1, hist, k)
	if err != nil || len(nbrs) == 0 {
		return vec, err
	}
	nv := float32(len(nbrs))
	for b, c := range votes(hist, nbrs, n) {
		vec[b] = float32(c) / nv
	}
	return vec, nil
}
