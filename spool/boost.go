// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spool

// Booster is a homeostasis strategy, called after every learning step
// with the winning columns. It may update the pooler's BoostFactors and
// duty cycles, which affect overlaps from the next Process call on.
type Booster interface {
	Boost(sp *Pooler, act []int)
}

// NoBoost leaves boost factors and duty cycles untouched.
type NoBoost struct{}

func (nb NoBoost) Boost(sp *Pooler, act []int) {}
