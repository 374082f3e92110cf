// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package text

import (
	"strings"
)

// WordTokenizer is a whitespace tokenizer over a fixed word list.
// Ids 0-3 are reserved (see UnkID etc) and words follow in list order.
// Every word piece starts with WordBoundary, as subword pieces do.
type WordTokenizer struct {
	Pieces []string
	ids    map[string]int
}

// NewWordTokenizer returns a tokenizer for the given words.
// Repeated words keep their first id.
func NewWordTokenizer(words []string) *WordTokenizer {
	wt := &WordTokenizer{Pieces: []string{"<unk>", "<s>", "</s>", "<pad>"}, ids: map[string]int{}}
	for _, w := range words {
		if _, has := wt.ids[w]; has || w == "" {
			continue
		}
		wt.ids[w] = len(wt.Pieces)
		wt.Pieces = append(wt.Pieces, WordBoundary+w)
	}
	return wt
}

func (wt *WordTokenizer) Tokenize(text string) []int {
	flds := strings.Fields(text)
	ids := make([]int, len(flds))
	for i, f := range flds {
		id, has := wt.ids[f]
		if !has {
			id = UnkID
		}
		ids[i] = id
	}
	return ids
}

// Decode concatenates the pieces for ids, skipping the control ids
// and unknown ids out of range.
func (wt *WordTokenizer) Decode(ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		switch {
		case id == BosID || id == EosID || id == PadID:
		case id < 0 || id >= len(wt.Pieces):
		case id == UnkID:
			b.WriteString(WordBoundary + " ⁇ ")
		default:
			b.WriteString(wt.Pieces[id])
		}
	}
	return b.String()
}

func (wt *WordTokenizer) VocabSize() int { return len(wt.Pieces) }
func (wt *WordTokenizer) UnkID() int     { return UnkID }

// IDToPiece returns the piece string for id, or "" if out of range.
func (wt *WordTokenizer) IDToPiece(id int) string {
	if id < 0 || id >= len(wt.Pieces) {
		return ""
	}
	return wt.Pieces[id]
}
