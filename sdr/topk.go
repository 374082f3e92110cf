// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdr

import (
	"cmp"
	"sort"

	"github.com/goki/ki/ints"
)

// SmallestK returns the indexes of the k smallest values, ordered by
// increasing value. Equal values keep increasing index order, so the
// lowest index wins a tie at the cutoff. k is clipped to [0, len(vals)].
func SmallestK[T cmp.Ordered](vals []T, k int) []int {
	return topK(vals, k, func(a, b T) bool { return a < b })
}

// LargestK returns the indexes of the k largest values, ordered by
// decreasing value, lowest index first among equals.
func LargestK[T cmp.Ordered](vals []T, k int) []int {
	return topK(vals, k, func(a, b T) bool { return a > b })
}

func topK[T cmp.Ordered](vals []T, k int, before func(a, b T) bool) []int {
	k = ints.MinInt(k, len(vals))
	if k <= 0 {
		return nil
	}
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return before(vals[order[i]], vals[order[j]])
	})
	return order[:k]
}
