// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dao

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/NQevxvEtg/dao/grid"
	"github.com/NQevxvEtg/dao/rdse"
	"github.com/NQevxvEtg/dao/reson"
	"github.com/NQevxvEtg/dao/sdr"
	"github.com/NQevxvEtg/dao/spool"
	"github.com/NQevxvEtg/dao/text"
	"github.com/NQevxvEtg/dao/tmem"
	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/v2/params"
	"github.com/emer/emergent/v2/timer"
	"github.com/goki/mat32"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
)

var _ anynet.Parameterizer = (*Model)(nil)

// Model is the full sequence pipeline: token and position encoders,
// pooler, resonance projection, recurrent memory and vocabulary readout.
type Model struct {

	// name of the model, used in weights file names
	Nm string

	// sizes and initialization
	Config Config

	// token encoder, resolution = vocabulary size
	Tokens *rdse.Encoder

	// position encoder
	Pos *grid.Encoder

	// pooler over token ++ position codes
	Pooler *spool.Pooler

	// basis code -> resonance representation
	Reson *reson.Layer

	// recurrent predictor
	Mem *tmem.Memory

	// predictive state -> token logits
	Vocab *Vocab

	// timers for each major function (step of processing)
	FunTimes map[string]*timer.Time `view:"-"`
}

// NewModel builds a model for a vocabulary of the given size.
func NewModel(cfg Config, vocabSize int) (*Model, error) {
	m := &Model{Nm: "Dao", Config: cfg}
	seed := cfg.Seed
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	var err error
	m.Tokens, err = rdse.NewEncoder(cfg.TokenBits, cfg.TokenActive, float64(vocabSize), text.TokenSeed)
	if err != nil {
		return nil, fmt.Errorf("token encoder: %w", err)
	}
	m.Pos = grid.NewEncoder(cfg.PosBits, cfg.PosActive)
	for _, md := range cfg.PosModules {
		if err := m.Pos.AddModule(md.Resolution, md.Seed); err != nil {
			return nil, err
		}
	}
	m.Pooler = &spool.Pooler{Nm: "Pooler", InputWidth: cfg.InputWidth(), NColumns: cfg.Columns}
	m.Pooler.Defaults()
	m.Pooler.Init.Seed = seed
	m.Pooler.Build()
	m.Pooler.InitPerms()
	m.Reson = reson.NewLayer(cfg.Columns, cfg.RDRWidth, cfg.InitStd, rand.New(rand.NewSource(seed+1)))
	m.Mem = tmem.NewMemory(cfg.RDRWidth, cfg.Cells, cfg.InitStd, rand.New(rand.NewSource(seed+2)))
	m.Vocab = NewVocab(vocabSize, cfg.Cells, cfg.InitStd, rand.New(rand.NewSource(seed+3)))
	m.FunTimes = make(map[string]*timer.Time)
	return m, nil
}

// VocabSize returns the number of tokens the model reads out.
func (m *Model) VocabSize() int { return m.Vocab.Size }

// Encode returns the pooler input for a token at a position:
// the token code followed by the position code.
func (m *Model) Encode(token int, pos mat32.Vec2) sdr.SDR {
	return sdr.Concat(m.Tokens.Encode(float64(token)), m.Pos.EncodeVec2(pos))
}

// Basis returns the pooler output for a token at a position, without learning.
func (m *Model) Basis(token int, pos mat32.Vec2) (sdr.SDR, error) {
	m.FunTimerStart("Pooler")
	defer m.FunTimerStop("Pooler")
	return m.Pooler.Process(m.Encode(token, pos), false)
}

// Step returns the recurrent state following st after reading token at
// pos, along with the basis code. The memory's current state is not used
// or changed.
func (m *Model) Step(st *tmem.State, token int, pos mat32.Vec2) (*tmem.State, sdr.SDR, error) {
	basis, rdr, err := m.project(token, pos)
	if err != nil {
		return nil, nil, err
	}
	m.FunTimerStart("Mem")
	nst, err := m.Mem.Step(st, rdr)
	m.FunTimerStop("Mem")
	return nst, basis, err
}

// Process advances the memory's current state by one token, returning
// the basis code.
func (m *Model) Process(token int, pos mat32.Vec2) (sdr.SDR, error) {
	basis, rdr, err := m.project(token, pos)
	if err != nil {
		return nil, err
	}
	m.FunTimerStart("Mem")
	defer m.FunTimerStop("Mem")
	return basis, m.Mem.Process(rdr)
}

func (m *Model) project(token int, pos mat32.Vec2) (sdr.SDR, []float32, error) {
	basis, err := m.Basis(token, pos)
	if err != nil {
		return nil, nil, err
	}
	m.FunTimerStart("Reson")
	defer m.FunTimerStop("Reson")
	rdr, err := m.Reson.Process(basis)
	return basis, rdr, err
}

// Parameters returns all differentiable parameters in a fixed order:
// resonance weights, memory input weights, recurrent weights, bias,
// and vocabulary weights.
func (m *Model) Parameters() []*anydiff.Var {
	var ps []*anydiff.Var
	ps = append(ps, m.Reson.Parameters()...)
	ps = append(ps, m.Mem.Parameters()...)
	return append(ps, m.Vocab.Weights)
}

// ApplyParams applies given parameter style Sheet to the model's pooler.
func (m *Model) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	return m.Pooler.ApplyParams(pars, setMsg)
}

// SizeReport returns a string reporting the size of each component
// and the total memory used.
func (m *Model) SizeReport() string {
	var b strings.Builder
	type part struct {
		name  string
		nvals int
		mem   int
	}
	posVals := 0
	for _, md := range m.Pos.Modules {
		posVals += len(md.X.Prototypes) + len(md.Y.Prototypes)
	}
	parts := []part{
		{"Tokens", len(m.Tokens.Prototypes), 8 * len(m.Tokens.Prototypes)},
		{"Pos", posVals, 8 * posVals},
		{"Pooler", len(m.Pooler.Perms.Values), m.Pooler.MemBytes()},
		{"Reson", m.Reson.Weights.Vector.Len(), 4 * m.Reson.Weights.Vector.Len()},
		{"Mem", 0, 0},
		{"Vocab", m.Vocab.Weights.Vector.Len(), 4 * m.Vocab.Weights.Vector.Len()},
	}
	for _, p := range m.Mem.Parameters() {
		parts[4].nvals += p.Vector.Len()
	}
	parts[4].mem = 4 * (parts[4].nvals + m.Mem.NCells)
	tvals, tmem := 0, 0
	for _, p := range parts {
		tvals += p.nvals
		tmem += p.mem
		fmt.Fprintf(&b, "%14s:\t Vals: %d\t Mem: %v\n", p.name, p.nvals, (datasize.ByteSize)(p.mem).HumanReadable())
	}
	fmt.Fprintf(&b, "\n%14s:\t Vals: %d\t Mem: %v\n", m.Nm, tvals, (datasize.ByteSize)(tmem).HumanReadable())
	return b.String()
}

//////////////////////////////////////////////////////////////////////////////////////
//  Timing reports

// TimerReport reports the amount of time spent in each function.
func (m *Model) TimerReport() {
	fmt.Printf("TimerReport: %v, NThreads: %v\n", m.Nm, m.Pooler.NThreads)
	fmt.Printf("\t%13s \t%7s\t%7s\n", "Function Name", "Secs", "Pct")
	fnms := make([]string, 0, len(m.FunTimes))
	for k := range m.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	secs := make([]float64, len(fnms))
	tot := 0.0
	for i, fn := range fnms {
		secs[i] = m.FunTimes[fn].TotalSecs()
		tot += secs[i]
	}
	for i, fn := range fnms {
		pct := 0.0
		if tot > 0 {
			pct = 100 * secs[i] / tot
		}
		fmt.Printf("\t%13s \t%7.3f\t%7.1f\n", fn, secs[i], pct)
	}
	fmt.Printf("\t%13s \t%7.3f\n", "Total", tot)
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (m *Model) FunTimerStart(fun string) {
	if m.FunTimes == nil {
		m.FunTimes = make(map[string]*timer.Time)
	}
	ft, ok := m.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		m.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (m *Model) FunTimerStop(fun string) {
	ft := m.FunTimes[fun]
	ft.Stop()
}

// ResetTimers resets all function timers.
func (m *Model) ResetTimers() {
	for _, ft := range m.FunTimes {
		ft.Reset()
	}
}
