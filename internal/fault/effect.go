/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package fault

import "fmt"

// Effect classifies a faulted run against the golden run.
type Effect int

const (
	// EffectNone: the run is indistinguishable from the golden run.
	EffectNone Effect = iota
	// EffectDetected: at least one countermeasure fired.
	EffectDetected
	// EffectSuccess: the oracle holds where the golden run's did not.
	EffectSuccess
	// EffectSilent: state or outcome changed, undetected, oracle unchanged.
	EffectSilent
)

var effectNames = [...]string{
	EffectNone:     "no-effect",
	EffectDetected: "detected",
	EffectSuccess:  "attack-success",
	EffectSilent:   "silent-corruption",
}

func (e Effect) String() string {
	if e >= 0 && int(e) < len(effectNames) {
		return effectNames[e]
	}
	return fmt.Sprintf("effect(%d)", int(e))
}

func ParseEffect(s string) (Effect, error) {
	for i, n := range effectNames {
		if n == s {
			return Effect(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEffect, s)
}

// Effects lists every effect in a stable order.
func Effects() []Effect {
	return []Effect{EffectNone, EffectDetected, EffectSuccess, EffectSilent}
}

func classify(golden, run Observation) Effect {
	switch {
	case run.Countermeasures > 0:
		return EffectDetected
	case run.Oracle && !golden.Oracle:
		return EffectSuccess
	case run.Outcome != golden.Outcome,
		run.PTC != golden.PTC,
		run.Authenticated != golden.Authenticated:
		return EffectSilent
	}
	return EffectNone
}
