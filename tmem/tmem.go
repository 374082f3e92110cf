// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package tmem implements the recurrent predictive memory.

A layer of NCells units is updated from the resonance representation
(RDR) and its own previous activation:

	state' = tanh(InputWeights * rdr + RecurrentWeights * state + Bias)

The update is available as a pure function of (state, rdr) through Step,
and as a differentiable graph through Apply. Memory also keeps a current
State for the common single-stream case, with Process, ResetStates and
PredictiveState operating on it.
*/
package tmem

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/NQevxvEtg/dao/sdr"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var tm Memory
	serializer.RegisterTypedDeserializer(tm.SerializerType(), DeserializeMemory)
}

// InitStd is the standard deviation of the initial weights and biases.
const InitStd = 0.01

// State is the activation of every cell at one point in a sequence.
type State struct {
	Act []float32
}

// Clone returns an independent copy of the state.
func (st *State) Clone() *State {
	act := make([]float32, len(st.Act))
	copy(act, st.Act)
	return &State{Act: act}
}

// Memory is the recurrent predictor.
type Memory struct {

	// width of the RDR input
	InCount int

	// number of cells = width of the state
	NCells int

	// input weights, row-major [NCells, InCount]
	InputWeights *anydiff.Var

	// recurrent weights, row-major [NCells, NCells]
	RecurrentWeights *anydiff.Var

	// bias, [NCells]
	Bias *anydiff.Var

	state *State
}

// NewMemory returns a memory with all parameters drawn from N(0, std^2)
// and a zero current state. rnd may be nil to use the global source.
func NewMemory(inCount, nCells int, std float64, rnd *rand.Rand) *Memory {
	c := anyvec32.CurrentCreator()
	tm := &Memory{
		InCount:          inCount,
		NCells:           nCells,
		InputWeights:     anydiff.NewVar(c.MakeVector(nCells * inCount)),
		RecurrentWeights: anydiff.NewVar(c.MakeVector(nCells * nCells)),
		Bias:             anydiff.NewVar(c.MakeVector(nCells)),
	}
	for _, p := range tm.Parameters() {
		anyvec.Rand(p.Vector, anyvec.Normal, rnd)
		p.Vector.Scale(c.MakeNumeric(std))
	}
	tm.ResetStates()
	return tm
}

// Start returns the all-zero state at the start of a sequence.
func (tm *Memory) Start() *State {
	return &State{Act: make([]float32, tm.NCells)}
}

// Apply returns the differentiable update for a previous state of
// length NCells and an rdr of length InCount.
func (tm *Memory) Apply(prev, rdr anydiff.Res) anydiff.Res {
	inMat := &anydiff.Matrix{Data: tm.InputWeights, Rows: tm.NCells, Cols: tm.InCount}
	recMat := &anydiff.Matrix{Data: tm.RecurrentWeights, Rows: tm.NCells, Cols: tm.NCells}
	weighted := anydiff.Add(
		anydiff.MatMul(false, true, &anydiff.Matrix{Data: rdr, Rows: 1, Cols: tm.InCount}, inMat).Data,
		anydiff.MatMul(false, true, &anydiff.Matrix{Data: prev, Rows: 1, Cols: tm.NCells}, recMat).Data,
	)
	return anynet.Tanh.Apply(anydiff.Add(weighted, tm.Bias), 1)
}

// Step returns the state following prev given rdr. It does not modify
// prev or the Memory. A nil prev is the start state.
func (tm *Memory) Step(prev *State, rdr []float32) (*State, error) {
	if len(rdr) != tm.InCount {
		return nil, fmt.Errorf("memory rdr: width %d, expected %d: %w", len(rdr), tm.InCount, sdr.ErrWidth)
	}
	if prev == nil {
		prev = tm.Start()
	} else if len(prev.Act) != tm.NCells {
		return nil, fmt.Errorf("memory state: width %d, expected %d: %w", len(prev.Act), tm.NCells, sdr.ErrWidth)
	}
	pv := prev.Clone()
	rv := make([]float32, len(rdr))
	copy(rv, rdr)
	out := tm.Apply(anydiff.NewConst(anyvec32.MakeVectorData(pv.Act)), anydiff.NewConst(anyvec32.MakeVectorData(rv)))
	return &State{Act: out.Output().Data().([]float32)}, nil
}

// Process advances the current state by one step.
func (tm *Memory) Process(rdr []float32) error {
	st, err := tm.Step(tm.state, rdr)
	if err != nil {
		return err
	}
	tm.state = st
	return nil
}

// ResetStates zeros the current state. Parameters are not affected.
func (tm *Memory) ResetStates() {
	tm.state = tm.Start()
}

// PredictiveState returns a copy of the current activations.
func (tm *Memory) PredictiveState() []float32 {
	return tm.state.Clone().Act
}

// CurState returns a copy of the current state, e.g. as a checkpoint.
func (tm *Memory) CurState() *State {
	return tm.state.Clone()
}

// SetState replaces the current state with a copy of st.
func (tm *Memory) SetState(st *State) error {
	if len(st.Act) != tm.NCells {
		return fmt.Errorf("memory state: width %d, expected %d: %w", len(st.Act), tm.NCells, sdr.ErrWidth)
	}
	tm.state = st.Clone()
	return nil
}

// Parameters returns the input weights, recurrent weights and bias,
// in that order.
func (tm *Memory) Parameters() []*anydiff.Var {
	return []*anydiff.Var{tm.InputWeights, tm.RecurrentWeights, tm.Bias}
}

// SerializerType returns the unique ID used to serialize
// a Memory with the serializer package.
func (tm *Memory) SerializerType() string {
	return "github.com/NQevxvEtg/dao/tmem.Memory"
}

// Serialize serializes the parameters. The current state is not saved.
func (tm *Memory) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		&anyvecsave.S{Vector: tm.InputWeights.Vector},
		&anyvecsave.S{Vector: tm.RecurrentWeights.Vector},
		&anyvecsave.S{Vector: tm.Bias.Vector},
	)
}

// DeserializeMemory deserializes a Memory, with a zero current state.
func DeserializeMemory(d []byte) (*Memory, error) {
	var inW, recW, bias *anyvecsave.S
	if err := serializer.DeserializeAny(d, &inW, &recW, &bias); err != nil {
		return nil, essentials.AddCtx("deserialize tmem.Memory", err)
	}
	nCells := bias.Vector.Len()
	if nCells == 0 || recW.Vector.Len() != nCells*nCells || inW.Vector.Len()%nCells != 0 {
		return nil, errors.New("deserialize tmem.Memory: invalid matrix dimensions")
	}
	tm := &Memory{
		InCount:          inW.Vector.Len() / nCells,
		NCells:           nCells,
		InputWeights:     anydiff.NewVar(inW.Vector),
		RecurrentWeights: anydiff.NewVar(recW.Vector),
		Bias:             anydiff.NewVar(bias.Vector),
	}
	tm.ResetStates()
	return tm, nil
}
