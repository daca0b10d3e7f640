/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package mmio

import (
	"sync"
)

// Memory is a word-addressable data memory. It stands in for the target's
// DMEM so publication can be observed without hardware. Each word is
// written atomically with respect to readers. Only the last value of each
// word is kept.
type Memory struct {
	mu    sync.RWMutex
	words map[uint32]uint32
}

func NewMemory() *Memory {
	return &Memory{words: make(map[uint32]uint32)}
}

func (m *Memory) WriteWord(addr uint32, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words[addr] = value
}

// ReadWord returns the word at addr and whether it was ever written.
func (m *Memory) ReadWord(addr uint32) (uint32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.words[addr]
	return v, ok
}
