/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

// WordWriter stores one 32-bit word at a fixed address. Each write is
// visible to an external reader in full or not at all.
type WordWriter interface {
	WriteWord(addr uint32, value uint32)
}

// Sentinel accumulates evidence of skipped or altered control flow.
// Every Trigger is counted and mirrored to an externally read word, so the
// side effect cannot be discarded as dead code.
type Sentinel struct {
	count uint32
	sink  WordWriter
	addr  uint32
}

// NewSentinel returns a cleared sentinel that mirrors its count to addr on
// sink. A nil sink keeps the count in memory only.
func NewSentinel(sink WordWriter, addr uint32) *Sentinel {
	return &Sentinel{sink: sink, addr: addr}
}

// Trigger records one countermeasure activation.
func (s *Sentinel) Trigger() {
	s.count++
	if s.sink != nil {
		s.sink.WriteWord(s.addr, s.count)
	}
}

// Count returns how many times Trigger ran since the last Reset.
func (s *Sentinel) Count() uint32 {
	return s.count
}

func (s *Sentinel) Triggered() bool {
	return s.count != 0
}

func (s *Sentinel) Reset() {
	s.count = 0
	if s.sink != nil {
		s.sink.WriteWord(s.addr, 0)
	}
}
