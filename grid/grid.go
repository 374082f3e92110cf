// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package grid provides a multi-module positional encoder in the style of
entorhinal grid cells.

Each module is a pair of scalar encoders, one per axis, sharing a
resolution but with distinct seeds. A 2D position is encoded by every
module and the module codes are OR-combined into one code of width N.
Modules at different resolutions give multi-scale discrimination: fine
modules separate nearby points while coarse ones disambiguate repeats of
the same relative offset.
*/
package grid

import (
	"errors"
	"fmt"
	"time"

	"github.com/NQevxvEtg/dao/rdse"
	"github.com/NQevxvEtg/dao/sdr"
	"github.com/goki/mat32"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// ErrCoords is returned (wrapped) when Encode is not given exactly 2 coordinates.
var ErrCoords = errors.New("grid: expected 2 coordinates")

func init() {
	var ec Encoder
	serializer.RegisterTypedDeserializer(ec.SerializerType(), DeserializeEncoder)
}

// Module is one x / y pair of scalar encoders.
type Module struct {
	Resolution float64
	Seed       int64
	X          *rdse.Encoder
	Y          *rdse.Encoder
}

// Encoder combines any number of modules into one positional code.
type Encoder struct {

	// width of the combined code
	N int

	// total active-bit budget; each axis encoder of each module gets W/2
	W int

	// modules in insertion order
	Modules []*Module
}

// NewEncoder returns an encoder with no modules. It encodes every
// position as the all-zero code until AddModule is called.
func NewEncoder(n, w int) *Encoder {
	return &Encoder{N: n, W: w}
}

// AddModule appends a module at the given resolution. The x axis uses
// seed and the y axis seed+1; a negative seed is first replaced by one
// from the clock.
func (ec *Encoder) AddModule(resolution float64, seed int64) error {
	half := ec.W / 2
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	ySeed := seed + 1
	x, err := rdse.NewEncoder(ec.N, half, resolution, seed)
	if err != nil {
		return fmt.Errorf("grid module x: %w", err)
	}
	y, err := rdse.NewEncoder(ec.N, half, resolution, ySeed)
	if err != nil {
		return fmt.Errorf("grid module y: %w", err)
	}
	ec.Modules = append(ec.Modules, &Module{Resolution: resolution, Seed: seed, X: x, Y: y})
	return nil
}

// Encode returns the OR of all module codes for coords = [x, y].
func (ec *Encoder) Encode(coords []float64) (sdr.SDR, error) {
	if len(coords) != 2 {
		return nil, fmt.Errorf("got %d: %w", len(coords), ErrCoords)
	}
	out := sdr.New(ec.N)
	for _, md := range ec.Modules {
		sdr.Or(out, md.X.Encode(coords[0]))
		sdr.Or(out, md.Y.Encode(coords[1]))
	}
	return out, nil
}

// EncodeVec2 encodes a position given as a vector.
func (ec *Encoder) EncodeVec2(pos mat32.Vec2) sdr.SDR {
	out, _ := ec.Encode([]float64{float64(pos.X), float64(pos.Y)})
	return out
}

// SerializerType returns the unique ID used to serialize
// an Encoder with the serializer package.
func (ec *Encoder) SerializerType() string {
	return "github.com/NQevxvEtg/dao/grid.Encoder"
}

// Serialize serializes the widths and every module's prototype tables.
func (ec *Encoder) Serialize() ([]byte, error) {
	parts := []serializer.Serializer{serializer.Int(ec.N), serializer.Int(ec.W)}
	for _, md := range ec.Modules {
		parts = append(parts, serializer.Int(md.Seed), md.X, md.Y)
	}
	return serializer.SerializeSlice(parts)
}

// DeserializeEncoder deserializes an Encoder.
func DeserializeEncoder(d []byte) (*Encoder, error) {
	parts, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize grid.Encoder", err)
	}
	if len(parts) < 2 || (len(parts)-2)%3 != 0 {
		return nil, errors.New("deserialize grid.Encoder: bad part count")
	}
	n, ok1 := asInt(parts[0])
	w, ok2 := asInt(parts[1])
	if !ok1 || !ok2 {
		return nil, errors.New("deserialize grid.Encoder: bad widths")
	}
	ec := NewEncoder(n, w)
	for i := 2; i < len(parts); i += 3 {
		seed, ok := asInt(parts[i])
		x, okx := parts[i+1].(*rdse.Encoder)
		y, oky := parts[i+2].(*rdse.Encoder)
		if !ok || !okx || !oky {
			return nil, fmt.Errorf("deserialize grid.Encoder: bad module %d", (i-2)/3)
		}
		ec.Modules = append(ec.Modules, &Module{Resolution: x.Resolution, Seed: int64(seed), X: x, Y: y})
	}
	return ec, nil
}

func asInt(x interface{}) (int, bool) {
	switch v := x.(type) {
	case serializer.Int:
		return int(v), true
	case *serializer.Int:
		return int(*v), true
	}
	return 0, false
}
