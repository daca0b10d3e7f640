/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

import "fmt"

const (
	// DefaultPINSize is the byte length of both credential buffers.
	DefaultPINSize = 4
	// MaxTries is the value the attempt counter is reset to.
	MaxTries int8 = 3
	// MaxPINSize bounds PINSize to what an unsigned byte loop index can cover.
	MaxPINSize = 255
)

// Bool is the harness boolean. Its two valid values are far apart in
// Hamming distance so that a single bit flip on either never yields the other.
type Bool byte

const (
	BoolTrue  Bool = 0xAA
	BoolFalse Bool = 0x55
)

func (b Bool) String() string {
	switch b {
	case BoolTrue:
		return "true"
	case BoolFalse:
		return "false"
	default:
		return fmt.Sprintf("invalid(%#02x)", byte(b))
	}
}

// PINFromWord expands w little-endian into a size-byte buffer. Bytes past
// the fourth are zero.
func PINFromWord(w uint32, size int) []byte {
	pin := make([]byte, size)
	for i := 0; i < size && i < 4; i++ {
		pin[i] = byte(w >> (8 * i))
	}
	return pin
}

// Default PIN words of the reference scenario: card 0x05030201, user 0x04030201.
const (
	ReferencePINWord uint32 = 0x05030201
	CandidatePINWord uint32 = 0x04030201
)
