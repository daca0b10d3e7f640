/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package fault

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/kentakayama/verifypin-harness/internal/verifypin"
)

// Scenario fixes the buffers and the attempt budget a campaign attacks.
type Scenario struct {
	Name      string
	Reference []byte
	Candidate []byte
	// SpentAttempts is subtracted from MaxTries before the run.
	SpentAttempts int8
}

const (
	ScenarioWrongPIN  = "wrong-pin"
	ScenarioRightPIN  = "right-pin"
	ScenarioExhausted = "exhausted"
)

// Presets returns the built-in scenarios for pinSize-byte PINs.
func Presets(pinSize int) map[string]Scenario {
	ref := verifypin.PINFromWord(verifypin.ReferencePINWord, pinSize)
	cand := verifypin.PINFromWord(verifypin.CandidatePINWord, pinSize)
	return map[string]Scenario{
		ScenarioWrongPIN:  {Name: ScenarioWrongPIN, Reference: ref, Candidate: cand},
		ScenarioRightPIN:  {Name: ScenarioRightPIN, Reference: ref, Candidate: bytes.Clone(ref)},
		ScenarioExhausted: {Name: ScenarioExhausted, Reference: ref, Candidate: cand, SpentAttempts: verifypin.MaxTries},
	}
}

// PresetNames lists the preset scenario names, sorted.
func PresetNames() []string {
	names := make([]string, 0, 3)
	for n := range Presets(verifypin.DefaultPINSize) {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupScenario returns the named preset.
func LookupScenario(name string, pinSize int) (Scenario, error) {
	sc, ok := Presets(pinSize)[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return sc, nil
}
