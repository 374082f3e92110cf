// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dao

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/NQevxvEtg/dao/grid"
	"github.com/NQevxvEtg/dao/rdse"
	"github.com/NQevxvEtg/dao/reson"
	"github.com/NQevxvEtg/dao/spool"
	"github.com/NQevxvEtg/dao/tmem"
	"github.com/emer/emergent/v2/timer"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var m Model
	serializer.RegisterTypedDeserializer(m.SerializerType(), DeserializeModel)
}

// SerializerType returns the unique ID used to serialize
// a Model with the serializer package.
func (m *Model) SerializerType() string {
	return "github.com/NQevxvEtg/dao.Model"
}

// Serialize serializes every component. The recurrent state and
// timers are not saved.
func (m *Model) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		m.Tokens,
		m.Pos,
		m.Pooler,
		m.Reson,
		m.Mem,
		serializer.Int(m.Vocab.Size),
		&anyvecsave.S{Vector: m.Vocab.Weights.Vector},
		serializer.Float64(m.Config.InitStd),
		serializer.Int(m.Config.Seed),
	)
}

// DeserializeModel deserializes a Model, with a zero recurrent state.
func DeserializeModel(d []byte) (*Model, error) {
	var tok *rdse.Encoder
	var pos *grid.Encoder
	var pool *spool.Pooler
	var rs *reson.Layer
	var mem *tmem.Memory
	var size serializer.Int
	var vw *anyvecsave.S
	var std serializer.Float64
	var seed serializer.Int
	err := serializer.DeserializeAny(d, &tok, &pos, &pool, &rs, &mem, &size, &vw, &std, &seed)
	if err != nil {
		return nil, essentials.AddCtx("deserialize dao.Model", err)
	}
	if int(size) <= 0 || vw.Vector.Len() != int(size)*mem.NCells {
		return nil, errors.New("deserialize dao.Model: invalid vocab dimensions")
	}
	m := &Model{Nm: "Dao", Tokens: tok, Pos: pos, Pooler: pool, Reson: rs, Mem: mem}
	m.Vocab = &Vocab{Size: int(size), NCells: mem.NCells, Weights: anydiff.NewVar(vw.Vector)}
	cf := &m.Config
	cf.TokenBits = tok.N
	cf.TokenActive = tok.W
	cf.PosBits = pos.N
	cf.PosActive = pos.W
	for _, md := range pos.Modules {
		cf.PosModules = append(cf.PosModules, GridModule{Resolution: md.Resolution, Seed: md.Seed})
	}
	cf.Columns = pool.NColumns
	cf.RDRWidth = rs.RDRWidth
	cf.Cells = mem.NCells
	cf.InitStd = float64(std)
	cf.Seed = int64(seed)
	m.FunTimes = make(map[string]*timer.Time)
	return m, nil
}

// WeightsFilename returns default current weights file name,
// from the model name, run name and a counter (e.g. the number of
// tokens trained on).
func WeightsFilename(m *Model, ctr int, runName string) string {
	return fmt.Sprintf("%s_%s_%06d.wts.gz", m.Nm, runName, ctr)
}

// SaveWeights saves the model to the given filename,
// using gzip compression if the filename ends in .gz.
func (m *Model) SaveWeights(filename string) error {
	fmt.Printf("Saving Weights to: %s\n", filename)
	fp, err := os.Create(filename)
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		err = m.WriteWeights(gzr)
		if cerr := gzr.Close(); err == nil {
			err = cerr
		}
	} else {
		bw := bufio.NewWriter(fp)
		err = m.WriteWeights(bw)
		if ferr := bw.Flush(); err == nil {
			err = ferr
		}
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Println(err)
	}
	return err
}

// WriteWeights writes the serialized model to w.
func (m *Model) WriteWeights(w io.Writer) error {
	d, err := serializer.SerializeWithType(m)
	if err != nil {
		log.Println(err)
		return err
	}
	_, err = w.Write(d)
	return err
}

// OpenWeights opens a model from the given filename,
// using gzip decompression if the filename ends in .gz.
func OpenWeights(filename string) (*Model, error) {
	fp, err := os.Open(filename)
	if err != nil {
		log.Println(err)
		return nil, err
	}
	defer fp.Close()
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			log.Println(err)
			return nil, err
		}
		defer gzr.Close()
		return ReadWeights(gzr)
	}
	return ReadWeights(bufio.NewReader(fp))
}

// ReadWeights reads a serialized model from r.
func ReadWeights(r io.Reader) (*Model, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		log.Println(err)
		return nil, err
	}
	obj, err := serializer.DeserializeWithType(d)
	if err != nil {
		log.Println(err)
		return nil, err
	}
	m, ok := obj.(*Model)
	if !ok {
		return nil, fmt.Errorf("weights: unexpected type %T", obj)
	}
	return m, nil
}
