// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package reson implements the resonance projection: a trainable linear
map from a sparse basis code to a dense resonance distributed
representation (RDR).

	rdr = Weights * basis

There is no bias and no nonlinearity. The weights are an
anydiff.Var so that an external optimizer can read, write and
accumulate gradients into them.
*/
package reson

import (
	"errors"
	"math/rand"

	"github.com/NQevxvEtg/dao/sdr"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var ly Layer
	serializer.RegisterTypedDeserializer(ly.SerializerType(), DeserializeLayer)
}

// InitStd is the standard deviation of the initial weights.
const InitStd = 0.01

// Layer is the resonance projection.
type Layer struct {

	// width of the basis code
	BasisWidth int

	// width of the dense output
	RDRWidth int

	// weights, row-major [RDRWidth, BasisWidth]
	Weights *anydiff.Var
}

// NewLayer returns a layer with weights drawn from N(0, std^2).
// rnd may be nil to use the global source.
func NewLayer(basisWidth, rdrWidth int, std float64, rnd *rand.Rand) *Layer {
	c := anyvec32.CurrentCreator()
	ly := &Layer{
		BasisWidth: basisWidth,
		RDRWidth:   rdrWidth,
		Weights:    anydiff.NewVar(c.MakeVector(basisWidth * rdrWidth)),
	}
	anyvec.Rand(ly.Weights.Vector, anyvec.Normal, rnd)
	ly.Weights.Vector.Scale(c.MakeNumeric(std))
	return ly
}

// Apply projects a dense basis vector of length BasisWidth.
func (ly *Layer) Apply(basis anydiff.Res) anydiff.Res {
	weightMat := &anydiff.Matrix{Data: ly.Weights, Rows: ly.RDRWidth, Cols: ly.BasisWidth}
	inMat := &anydiff.Matrix{Data: basis, Rows: 1, Cols: ly.BasisWidth}
	return anydiff.MatMul(false, true, inMat, weightMat).Data
}

// Process projects a basis code, returning the RDR.
func (ly *Layer) Process(basis sdr.SDR) ([]float32, error) {
	if err := sdr.CheckWidth("resonance basis", basis, ly.BasisWidth); err != nil {
		return nil, err
	}
	in := anydiff.NewConst(anyvec32.MakeVectorData(basis.Float32s()))
	return ly.Apply(in).Output().Data().([]float32), nil
}

// Parameters returns the weights.
func (ly *Layer) Parameters() []*anydiff.Var {
	return []*anydiff.Var{ly.Weights}
}

// SerializerType returns the unique ID used to serialize
// a Layer with the serializer package.
func (ly *Layer) SerializerType() string {
	return "github.com/NQevxvEtg/dao/reson.Layer"
}

// Serialize serializes the layer.
func (ly *Layer) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		serializer.Int(ly.BasisWidth),
		serializer.Int(ly.RDRWidth),
		&anyvecsave.S{Vector: ly.Weights.Vector},
	)
}

// DeserializeLayer deserializes a Layer.
func DeserializeLayer(d []byte) (*Layer, error) {
	var basis, rdr serializer.Int
	var weights *anyvecsave.S
	if err := serializer.DeserializeAny(d, &basis, &rdr, &weights); err != nil {
		return nil, essentials.AddCtx("deserialize reson.Layer", err)
	}
	if int(basis)*int(rdr) != weights.Vector.Len() {
		return nil, errors.New("deserialize reson.Layer: invalid matrix dimensions")
	}
	return &Layer{
		BasisWidth: int(basis),
		RDRWidth:   int(rdr),
		Weights:    anydiff.NewVar(weights.Vector),
	}, nil
}
