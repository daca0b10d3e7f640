/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

import "fmt"

// Checkpoint identifies a point in Verify where the step counter must hold
// a statically known value.
type Checkpoint struct {
	Name     string
	Expected int
}

func (c Checkpoint) String() string {
	return fmt.Sprintf("%s@%d", c.Name, c.Expected)
}

// Fixed step values. Byte and tail checkpoints depend on the PIN size.
const (
	StepAttemptCheck     = 1
	StepAttemptDecrement = 2
	StepLoopEntry        = 3
	StepFirstByte        = 4
)

func StepByte(i int) int                 { return StepFirstByte + i }
func StepLoopExit(pinSize int) int       { return 4 + pinSize }
func StepBranch(pinSize int) int         { return 5 + pinSize }
func StepSuccessBranch(pinSize int) int  { return 6 + pinSize }
func StepSuccessConfirm(pinSize int) int { return 7 + pinSize }
func StepAttemptReset(pinSize int) int   { return 8 + pinSize }

// Checkpoints lists, in execution order, every checkpoint of a successful
// verification over pinSize-byte buffers. A failing verification stops
// after the branch checkpoint; an exhausted one reaches none.
func Checkpoints(pinSize int) []Checkpoint {
	cps := []Checkpoint{
		{"attempt-check", StepAttemptCheck},
		{"attempt-decrement", StepAttemptDecrement},
		{"loop-entry", StepLoopEntry},
	}
	for i := 0; i < pinSize; i++ {
		cps = append(cps, Checkpoint{fmt.Sprintf("byte-%d", i), StepByte(i)})
	}
	return append(cps,
		Checkpoint{"loop-exit", StepLoopExit(pinSize)},
		Checkpoint{"branch", StepBranch(pinSize)},
		Checkpoint{"success-branch", StepSuccessBranch(pinSize)},
		Checkpoint{"success-confirm", StepSuccessConfirm(pinSize)},
		Checkpoint{"attempt-reset", StepAttemptReset(pinSize)},
	)
}

// FinalStep is the step counter value a fault-free verification ends with.
func FinalStep(pinSize int, o Outcome, exhausted bool) int {
	switch {
	case exhausted:
		return 0
	case o == OutcomeMatch:
		return StepAttemptReset(pinSize)
	default:
		return StepBranch(pinSize)
	}
}
