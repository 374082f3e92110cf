// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dao

import (
	"math/rand"
	"time"

	"github.com/NQevxvEtg/dao/attn"
	"github.com/NQevxvEtg/dao/text"
	"github.com/emer/emergent/v2/params"
	"github.com/goki/mat32"
)

// Generator runs a conversation through a Model: it feeds prompt tokens
// at advancing positions and samples a response from the predictive state.
type Generator struct {

	// name, for params selectors
	Nm string

	// the model being run
	Model *Model

	// tokenizer for prompts and responses
	Tok text.Tokenizer

	// decoding parameters
	Sampling Sampling `view:"inline"`

	// consensus over the recent basis codes
	Consensus attn.Params `view:"inline"`

	// recent basis codes
	History attn.History

	// current position, advanced by (1,1) per token
	Coords mat32.Vec2

	// tokens fed or generated in this conversation
	Recent []int

	// random source for sampling
	Rand *rand.Rand `view:"-"`
}

// NewGenerator returns a generator for the model with default
// parameters, sampling from a source seeded with seed
// (negative means seeded from the clock).
func NewGenerator(m *Model, tok text.Tokenizer, seed int64) *Generator {
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	gn := &Generator{Nm: "Generator", Model: m, Tok: tok, Rand: rand.New(rand.NewSource(seed))}
	gn.Defaults()
	gn.StartNewConversation()
	return gn
}

func (gn *Generator) Defaults() {
	gn.Sampling.Defaults()
	gn.Consensus.Defaults()
	gn.History.Max = 64
}

func (gn *Generator) Update() {
	gn.Sampling.Update()
}

func (gn *Generator) TypeName() string { return "Generator" }
func (gn *Generator) Class() string    { return "" }
func (gn *Generator) Name() string     { return gn.Nm }

// ApplyParams applies given parameter style Sheet to the generator
// and the model. Calls Update if anything set.
func (gn *Generator) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(gn, setMsg)
	if app {
		gn.Update()
	}
	mapp, merr := gn.Model.ApplyParams(pars, setMsg)
	if err == nil {
		err = merr
	}
	return app || mapp, err
}

// StartNewConversation resets the recurrent state, position and history.
func (gn *Generator) StartNewConversation() {
	gn.Model.Mem.ResetStates()
	gn.Coords = mat32.Vec2{}
	gn.History.Reset()
	gn.Recent = nil
}

// FeedInput advances the position and runs one token through the model.
func (gn *Generator) FeedInput(id int) error {
	gn.Coords.X++
	gn.Coords.Y++
	basis, err := gn.Model.Process(id, gn.Coords)
	if err != nil {
		return err
	}
	gn.History.Push(basis)
	gn.Recent = append(gn.Recent, id)
	return nil
}

// Prediction returns the predictive state after the last token fed.
func (gn *Generator) Prediction() []float32 {
	return gn.Model.Mem.PredictiveState()
}

// DecodePrediction samples the next token from the current prediction,
// never choosing a banned id.
func (gn *Generator) DecodePrediction(banned ...int) (int, error) {
	return gn.Sampling.Decode(gn.Model.Vocab, gn.Prediction(), banned, gn.Recent, gn.Rand)
}

// RespondTo feeds the prompt and generates up to maxNew tokens,
// returning the decoded response. The first token cannot be unknown,
// end or padding. Generation stops at the unknown or end id, or an id
// outside the vocabulary. The conversation state carries over to the
// next call.
func (gn *Generator) RespondTo(prompt string, maxNew int) (string, error) {
	for _, id := range gn.Tok.Tokenize(prompt) {
		if err := gn.FeedInput(id); err != nil {
			return "", err
		}
	}
	var out []int
	for i := 0; i < maxNew; i++ {
		var banned []int
		if i == 0 {
			banned = []int{gn.Tok.UnkID(), text.EosID, text.PadID}
		}
		id, err := gn.DecodePrediction(banned...)
		if err != nil {
			return "", err
		}
		if id == gn.Tok.UnkID() || id == text.EosID || id >= gn.Tok.VocabSize() {
			break
		}
		out = append(out, id)
		if err := gn.FeedInput(id); err != nil {
			return "", err
		}
	}
	return text.CleanPieces(gn.Tok.Decode(out)), nil
}

// ConsensusResult returns the consensus for the most recent basis code.
func (gn *Generator) ConsensusResult() (*attn.Result, error) {
	return gn.Consensus.Apply(gn.History.Codes())
}
