/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package mmio

import (
	"runtime"
	"sync/atomic"
)

// PCLocator reports the program counter of the code that asked for a
// location, truncated to a word.
type PCLocator struct{}

func (PCLocator) Location() uint32 {
	var pcs [1]uintptr
	// skip runtime.Callers and Location itself
	if runtime.Callers(2, pcs[:]) == 0 {
		return 0
	}
	return uint32(pcs[0])
}

// SequenceLocator hands out 1, 2, 3, ... and is meant for tests that need
// distinct but predictable markers.
type SequenceLocator struct {
	n atomic.Uint32
}

func (s *SequenceLocator) Location() uint32 {
	return s.n.Add(1)
}
