/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

import (
	"bytes"
	"fmt"
)

// Phase is a state of the verification state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAttemptsAvailable
	PhaseAttemptsExhausted
	PhaseComparing
	PhaseMatch
	PhaseMismatch
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAttemptsAvailable:
		return "attempts-available"
	case PhaseAttemptsExhausted:
		return "attempts-exhausted"
	case PhaseComparing:
		return "comparing"
	case PhaseMatch:
		return "match"
	case PhaseMismatch:
		return "mismatch"
	case PhaseDone:
		return "done"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Params fixes the buffers and the countermeasure mirror of a run.
type Params struct {
	PINSize   int
	Reference []byte
	Candidate []byte

	// Sink and SentinelAddr receive every countermeasure count.
	Sink         WordWriter
	SentinelAddr uint32
}

// State is everything one verification context owns. Only Verify mutates
// it; oracles and the publisher read it.
type State struct {
	Reference     []byte
	Candidate     []byte
	PTC           int8
	Authenticated Bool
	Sentinel      *Sentinel

	// Steps is the step counter value at the end of the last Verify.
	Steps int
	// Phases lists the states the last Verify went through.
	Phases []Phase
}

// Initialize validates p and returns a state reset to defaults: three
// attempts, not authenticated, countermeasure cleared.
func Initialize(p Params) (*State, error) {
	if p.PINSize <= 0 || p.PINSize > MaxPINSize {
		return nil, fmt.Errorf("%w: %d", ErrPINSize, p.PINSize)
	}
	if len(p.Reference) != p.PINSize || len(p.Candidate) != p.PINSize {
		return nil, fmt.Errorf("%w: reference %d, candidate %d, PIN size %d",
			ErrLengthMismatch, len(p.Reference), len(p.Candidate), p.PINSize)
	}

	s := &State{
		Reference:     bytes.Clone(p.Reference),
		Candidate:     bytes.Clone(p.Candidate),
		PTC:           MaxTries,
		Authenticated: BoolFalse,
		Sentinel:      NewSentinel(p.Sink, p.SentinelAddr),
	}
	s.Sentinel.Reset()
	return s, nil
}

// Done reports whether the last Verify reached its terminal state.
func (s *State) Done() bool {
	return len(s.Phases) > 0 && s.Phases[len(s.Phases)-1] == PhaseDone
}

func (s *State) enter(p Phase) {
	s.Phases = append(s.Phases, p)
}
