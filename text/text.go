// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package text connects a tokenizer to the scalar encoder: each token id
is encoded as an SDR by an RDSE whose resolution is the vocabulary size.
*/
package text

import (
	"strings"

	"github.com/NQevxvEtg/dao/rdse"
	"github.com/NQevxvEtg/dao/sdr"
)

// TokenSeed is the fixed seed of the token encoder, so that token codes
// are the same in every run.
const TokenSeed = 42

// WordBoundary is the subword marker for the start of a word.
const WordBoundary = "▁"

// Reserved token ids.
const (
	UnkID = 0
	BosID = 1
	EosID = 2
	PadID = 3
)

// Tokenizer converts between text and token ids.
type Tokenizer interface {
	Tokenize(text string) []int
	Decode(ids []int) string
	VocabSize() int
	UnkID() int
}

// Encoder encodes tokens as SDRs.
type Encoder struct {
	Tok  Tokenizer
	RDSE *rdse.Encoder
}

// NewEncoder returns an encoder producing codes of width n with w active bits.
func NewEncoder(tok Tokenizer, n, w int) (*Encoder, error) {
	ec, err := rdse.NewEncoder(n, w, float64(tok.VocabSize()), TokenSeed)
	if err != nil {
		return nil, err
	}
	return &Encoder{Tok: tok, RDSE: ec}, nil
}

// EncodeToken returns the code for one token id.
func (te *Encoder) EncodeToken(id int) sdr.SDR {
	return te.RDSE.Encode(float64(id))
}

// Encode tokenizes text and encodes every token.
func (te *Encoder) Encode(text string) []sdr.SDR {
	ids := te.Tok.Tokenize(text)
	codes := make([]sdr.SDR, len(ids))
	for i, id := range ids {
		codes[i] = te.EncodeToken(id)
	}
	return codes
}

func (te *Encoder) Tokenize(text string) []int { return te.Tok.Tokenize(text) }
func (te *Encoder) Decode(ids []int) string    { return te.Tok.Decode(ids) }
func (te *Encoder) VocabSize() int             { return te.Tok.VocabSize() }
func (te *Encoder) UnkID() int                 { return te.Tok.UnkID() }

// CleanPieces turns word boundary markers into spaces and drops a
// single leading space.
func CleanPieces(s string) string {
	s = strings.ReplaceAll(s, WordBoundary, " ")
	return strings.TrimPrefix(s, " ")
}
