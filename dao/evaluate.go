// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dao

import (
	"fmt"

	"github.com/emer/etable/v2/etable"
	"github.com/emer/etable/v2/etensor"
	"github.com/goki/mat32"
)

// ConfigEvalLog configures dt to hold one row per evaluated step.
func ConfigEvalLog(dt *etable.Table) {
	dt.SetMetaData("name", "EvalLog")
	dt.SetMetaData("desc", "Record of next-token prediction per step")
	dt.SetMetaData("read-only", "true")

	sch := etable.Schema{
		{"Step", etensor.INT64, nil, nil},
		{"Token", etensor.INT64, nil, nil},
		{"Target", etensor.INT64, nil, nil},
		{"Pred", etensor.INT64, nil, nil},
		{"Correct", etensor.FLOAT64, nil, nil},
		{"OvlpAvg", etensor.FLOAT64, nil, nil},
		{"OvlpMax", etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, 0)
}

// Evaluate returns the top-1 next-token accuracy of the model over ids,
// in percent. The recurrent state is reset first, token i is read at
// position (i, i), and the prediction after it is scored against token
// i+1. The pooler does not learn. If dt is non-nil it must have been
// configured with ConfigEvalLog, and receives one row per step.
func Evaluate(m *Model, ids []int, dt *etable.Table, verbose bool) (float64, error) {
	m.Mem.ResetStates()
	nsteps := len(ids) - 1
	if nsteps < 1 {
		return 0, nil
	}
	if dt != nil {
		dt.SetNumRows(nsteps)
	}
	ncor := 0
	for i := 0; i < nsteps; i++ {
		pos := mat32.Vec2{X: float32(i), Y: float32(i)}
		if _, err := m.Process(ids[i], pos); err != nil {
			return 0, err
		}
		lg, err := m.Vocab.Logits(m.Mem.PredictiveState())
		if err != nil {
			return 0, err
		}
		pred := Argmax(lg)
		cor := 0.0
		if pred == ids[i+1] {
			cor = 1
			ncor++
		}
		if dt == nil {
			continue
		}
		st := &m.Pooler.OverlapStats
		dt.SetCellFloat("Step", i, float64(i))
		dt.SetCellFloat("Token", i, float64(ids[i]))
		dt.SetCellFloat("Target", i, float64(ids[i+1]))
		dt.SetCellFloat("Pred", i, float64(pred))
		dt.SetCellFloat("Correct", i, cor)
		dt.SetCellFloat("OvlpAvg", i, float64(st.Avg))
		dt.SetCellFloat("OvlpMax", i, float64(st.Max))
	}
	pct := 100 * float64(ncor) / float64(nsteps)
	if verbose {
		fmt.Printf("Eval: %d tokens\tCorrect: %d / %d\tAccuracy: %.2f%%\n", len(ids), ncor, nsteps, pct)
	}
	return pct, nil
}
