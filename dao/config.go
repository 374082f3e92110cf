// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dao

// GridModule configures one module of the position encoder.
type GridModule struct {
	Resolution float64
	Seed       int64
}

// Config holds the sizes and initialization of a Model.
type Config struct {

	// width of token codes
	TokenBits int `def:"2048"`

	// active bits in token codes
	TokenActive int `def:"40"`

	// width of position codes
	PosBits int `def:"2048"`

	// active-bit budget of the position encoder
	PosActive int `def:"40"`

	// position encoder modules
	PosModules []GridModule

	// number of pooler columns = basis code width
	Columns int `def:"4096"`

	// width of the resonance representation
	RDRWidth int `def:"4096"`

	// number of recurrent cells
	Cells int `def:"4096"`

	// standard deviation of initial dense weights
	InitStd float64 `def:"0.01"`

	// seed for all random initialization -- negative means seeded from the clock
	Seed int64 `def:"-1"`
}

func (cf *Config) Defaults() {
	cf.TokenBits = 2048
	cf.TokenActive = 40
	cf.PosBits = 2048
	cf.PosActive = 40
	cf.PosModules = []GridModule{{Resolution: 50, Seed: 101}}
	cf.Columns = 4096
	cf.RDRWidth = 4096
	cf.Cells = 4096
	cf.InitStd = 0.01
	cf.Seed = -1
}

// InputWidth is the width of the pooler input: token bits then position bits.
func (cf *Config) InputWidth() int {
	return cf.TokenBits + cf.PosBits
}
