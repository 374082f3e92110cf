// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spool

import (
	"errors"

	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var sp Pooler
	serializer.RegisterTypedDeserializer(sp.SerializerType(), DeserializePooler)
}

// SerializerType returns the unique ID used to serialize
// a Pooler with the serializer package.
func (sp *Pooler) SerializerType() string {
	return "github.com/NQevxvEtg/dao/spool.Pooler"
}

// Serialize serializes the parameters, permanences, boost factors and
// duty cycles. The Booster strategy is not saved.
func (sp *Pooler) Serialize() ([]byte, error) {
	learnOn := serializer.Int(0)
	if sp.Learn.On {
		learnOn = 1
	}
	return serializer.SerializeAny(
		serializer.Int(sp.InputWidth),
		serializer.Int(sp.NColumns),
		serializer.Int(sp.LayerIdx),
		serializer.Float64(sp.Init.PotentialRatio),
		serializer.Float64(sp.Init.Connected),
		serializer.Float64(sp.Init.Jitter),
		serializer.Int(sp.Init.Seed),
		serializer.Int(sp.Inhib.NActive),
		serializer.Float64(sp.Inhib.StimThr),
		learnOn,
		serializer.Float64(sp.Learn.ActiveInc),
		serializer.Float64(sp.Learn.InactiveDec),
		serializer.Float64(sp.Boost.Strength),
		saveVec(sp.Perms.Values),
		saveVec(sp.BoostFactors),
		saveVec(sp.ActDutyCycle),
		saveVec(sp.OvlpDutyCycle),
	)
}

// DeserializePooler deserializes a Pooler. The Booster is NoBoost.
func DeserializePooler(d []byte) (*Pooler, error) {
	var inW, nCol, layIdx, seed, nAct, learnOn serializer.Int
	var potRatio, conn, jitter, thr, inc, dec, strength serializer.Float64
	var perms, boost, actDc, ovlpDc *anyvecsave.S
	err := serializer.DeserializeAny(d, &inW, &nCol, &layIdx, &potRatio, &conn, &jitter, &seed,
		&nAct, &thr, &learnOn, &inc, &dec, &strength, &perms, &boost, &actDc, &ovlpDc)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Pooler", err)
	}
	sp := &Pooler{InputWidth: int(inW), NColumns: int(nCol), LayerIdx: int(layIdx)}
	sp.Defaults()
	sp.Init.PotentialRatio = float32(potRatio)
	sp.Init.Connected = float32(conn)
	sp.Init.Jitter = float32(jitter)
	sp.Init.Seed = int64(seed)
	sp.Init.Update()
	sp.Inhib.NActive = int(nAct)
	sp.Inhib.StimThr = float32(thr)
	sp.Learn.On = learnOn == 1
	sp.Learn.ActiveInc = float32(inc)
	sp.Learn.InactiveDec = float32(dec)
	sp.Boost.Strength = float32(strength)
	sp.Build()
	dst := [][]float32{sp.Perms.Values, sp.BoostFactors, sp.ActDutyCycle, sp.OvlpDutyCycle}
	for i, src := range []*anyvecsave.S{perms, boost, actDc, ovlpDc} {
		vals, ok := src.Vector.Data().([]float32)
		if !ok || len(vals) != len(dst[i]) {
			return nil, errors.New("deserialize Pooler: invalid state dimensions")
		}
		copy(dst[i], vals)
	}
	return sp, nil
}

func saveVec(vals []float32) *anyvecsave.S {
	cp := make([]float32, len(vals))
	copy(cp, vals)
	return &anyvecsave.S{Vector: anyvec32.MakeVectorData(cp)}
}
