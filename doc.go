// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package dao is the overall repository for a sequence model built on sparse
distributed representations (SDRs), implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* sdr: the binary SparseCode type with overlap, union and top-k selection helpers.

* rdse: the random distributed scalar encoder, mapping a number to a code whose
overlap with other codes falls off with distance.

* grid: the grid cell position encoder, combining x / y scalar encoders over any
number of modules of different resolutions.

* spool: the competitive pooler (spatial pooler), learning permanences from input
codes and selecting the most-overlapping columns, with a Booster extension point.

* reson: the resonance projection from a basis code to a dense representation.

* tmem: the recurrent predictive memory, with its state exposed as an explicit
value so it can be stepped, checkpointed and restored.

* attn: history consensus (sparse attention) over recent codes, by nearest
neighbor voting.

* text: the tokenizer interface and token encoder.

* dao: the Model container, vocabulary decoding, conversation Generator,
evaluation and weights files.

* examples: these actually compile into runnable programs. examples/bench runs
a model over a synthetic vocabulary and reports timing and sizes.
*/
package dao
