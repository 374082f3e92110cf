// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package text

import (
	"testing"
)

func TestWordTokenizer(t *testing.T) {
	wt := NewWordTokenizer([]string{"hello", "world", "hello", "again"})
	if wt.VocabSize() != 7 {
		t.Errorf("vocab size: %d != 7", wt.VocabSize())
	}
	ids := wt.Tokenize("  hello there world ")
	exp := []int{4, UnkID, 5}
	if len(ids) != len(exp) {
		t.Fatalf("ids: %v", ids)
	}
	for i := range exp {
		if ids[i] != exp[i] {
			t.Errorf("tokenize err: idx: %d, got: %d, expected: %d", i, ids[i], exp[i])
		}
	}
	dec := wt.Decode([]int{BosID, 4, 6, EosID, 99})
	if dec != "▁hello▁again" {
		t.Errorf("decode: %q", dec)
	}
	if CleanPieces(dec) != "hello again" {
		t.Errorf("clean: %q", CleanPieces(dec))
	}
	if wt.IDToPiece(5) != "▁world" || wt.IDToPiece(-1) != "" {
		t.Errorf("pieces: %q %q", wt.IDToPiece(5), wt.IDToPiece(-1))
	}
}

func TestCleanPieces(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"▁a▁b":          "a b",
		"ab":            "ab",
		"  x":           " x",
		"▁▁double":      " double",
		"mid▁word▁end▁": "mid word end ",
	}
	for in, exp := range tests {
		if got := CleanPieces(in); got != exp {
			t.Errorf("clean %q: got %q, expected %q", in, got, exp)
		}
	}
}

func TestEncoder(t *testing.T) {
	wt := NewWordTokenizer([]string{"a", "b", "c"})
	te, err := NewEncoder(wt, 128, 6)
	if err != nil {
		t.Fatal(err)
	}
	if te.RDSE.Resolution != float64(wt.VocabSize()) || te.RDSE.Seed != TokenSeed {
		t.Errorf("token rdse params: %+v", te.RDSE.Params)
	}
	codes := te.Encode("a b zz c")
	if len(codes) != 4 {
		t.Fatalf("codes: %d", len(codes))
	}
	for i, cd := range codes {
		if cd.Len() != 128 || cd.Count() != 6 {
			t.Errorf("code %d: width %d count %d", i, cd.Len(), cd.Count())
		}
	}
	if !codes[2].Equal(te.EncodeToken(UnkID)) {
		t.Errorf("unknown word not encoded as unk")
	}
	other, _ := NewEncoder(wt, 128, 6)
	if !other.EncodeToken(5).Equal(te.EncodeToken(5)) {
		t.Errorf("token codes differ between encoders")
	}
	if _, err := NewEncoder(wt, 4, 6); err == nil {
		t.Errorf("expected error for w > n")
	}
}
