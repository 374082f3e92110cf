// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package rdse implements a random distributed scalar encoder.

Each of the N output bits owns a prototype value drawn uniformly from
[0, Resolution) at construction. A value is encoded by activating the W
bits whose prototypes lie closest to it, so nearby values share most of
their active bits and distant values share few or none.
*/
package rdse

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/NQevxvEtg/dao/sdr"
	"github.com/emer/emergent/v2/erand"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// ErrParams is returned (wrapped) for invalid encoder parameters.
var ErrParams = errors.New("rdse: invalid parameters")

func init() {
	var ec Encoder
	serializer.RegisterTypedDeserializer(ec.SerializerType(), DeserializeEncoder)
}

// Params are the encoder's construction parameters.
type Params struct {

	// total number of bits in the code
	N int `def:"2048" min:"1"`

	// number of active bits in every code, 0 < W <= N
	W int `def:"40" min:"1"`

	// prototypes are drawn uniformly from [0, Resolution)
	Resolution float64 `def:"1"`

	// random seed for the prototype table -- negative means seeded from the clock
	Seed int64 `def:"-1"`
}

func (pr *Params) Defaults() {
	pr.N = 2048
	pr.W = 40
	pr.Resolution = 1
	pr.Seed = -1
}

// Validate returns a wrapped ErrParams describing the first problem found.
func (pr *Params) Validate() error {
	switch {
	case pr.N <= 0:
		return fmt.Errorf("width N = %d must be positive: %w", pr.N, ErrParams)
	case pr.W <= 0:
		return fmt.Errorf("active bits W = %d must be positive: %w", pr.W, ErrParams)
	case pr.W > pr.N:
		return fmt.Errorf("active bits W = %d exceeds width N = %d: %w", pr.W, pr.N, ErrParams)
	case !(pr.Resolution > 0):
		return fmt.Errorf("resolution %g must be positive: %w", pr.Resolution, ErrParams)
	}
	return nil
}

// Encoder is a random distributed scalar encoder. The prototype table
// is fixed at construction and Encode is a pure function of it.
type Encoder struct {
	Params

	// prototype value for each bit, len N
	Prototypes []float64
}

// New returns an encoder for the given params, drawing its prototypes.
func New(pr Params) (*Encoder, error) {
	if err := pr.Validate(); err != nil {
		return nil, err
	}
	seed := pr.Seed
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	rnd := erand.NewSysRand(seed)
	ec := &Encoder{Params: pr, Prototypes: make([]float64, pr.N)}
	for i := range ec.Prototypes {
		ec.Prototypes[i] = erand.UniformMinMax(0, pr.Resolution, -1, rnd)
	}
	return ec, nil
}

// NewEncoder is a convenience for New with positional arguments.
func NewEncoder(n, w int, resolution float64, seed int64) (*Encoder, error) {
	return New(Params{N: n, W: w, Resolution: resolution, Seed: seed})
}

// Encode returns the code for val: exactly W of N bits set, those whose
// prototypes are nearest to val, lowest index first among equal distances.
func (ec *Encoder) Encode(val float64) sdr.SDR {
	dist := make([]float64, len(ec.Prototypes))
	for i, p := range ec.Prototypes {
		dist[i] = math.Abs(p - val)
	}
	return sdr.FromIndexes(ec.N, sdr.SmallestK(dist, ec.W))
}

// SerializerType returns the unique ID used to serialize
// an Encoder with the serializer package.
func (ec *Encoder) SerializerType() string {
	return "github.com/NQevxvEtg/dao/rdse.Encoder"
}

// Serialize serializes the parameters and the prototype table.
func (ec *Encoder) Serialize() ([]byte, error) {
	protos := make([]float64, len(ec.Prototypes))
	copy(protos, ec.Prototypes)
	return serializer.SerializeAny(
		serializer.Int(ec.N),
		serializer.Int(ec.W),
		serializer.Float64(ec.Resolution),
		serializer.Int(ec.Seed),
		&anyvecsave.S{Vector: anyvec64.MakeVectorData(protos)},
	)
}

// DeserializeEncoder deserializes an Encoder.
func DeserializeEncoder(d []byte) (*Encoder, error) {
	var n, w, seed serializer.Int
	var res serializer.Float64
	var protos *anyvecsave.S
	if err := serializer.DeserializeAny(d, &n, &w, &res, &seed, &protos); err != nil {
		return nil, essentials.AddCtx("deserialize rdse.Encoder", err)
	}
	ec := &Encoder{Params: Params{N: int(n), W: int(w), Resolution: float64(res), Seed: int64(seed)}}
	if err := ec.Validate(); err != nil {
		return nil, essentials.AddCtx("deserialize rdse.Encoder", err)
	}
	vals, ok := protos.Vector.Data().([]float64)
	if !ok || len(vals) != ec.N {
		return nil, errors.New("deserialize rdse.Encoder: invalid prototype table")
	}
	ec.Prototypes = vals
	return ec, nil
}
