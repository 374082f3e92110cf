// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package attn

import (
	"errors"
	"strconv"
)

var modesNames = [...]string{"BinaryMode", "ContinuousMode", "ModesN"}

func (i Modes) String() string {
	if i < 0 || int(i) >= len(modesNames) {
		return "Modes(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return modesNames[i]
}

// FromString sets the mode from its name.
func (i *Modes) FromString(s string) error {
	for j, nm := range modesNames {
		if s == nm {
			*i = Modes(j)
			return nil
		}
	}
	return errors.New("String: " + s + " is not a valid option for type: Modes")
}
