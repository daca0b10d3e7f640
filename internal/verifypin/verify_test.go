/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	refPIN   = []byte{1, 2, 3, 5}
	wrongPIN = []byte{1, 2, 3, 4}
)

type wordLog struct {
	writes [][2]uint32
}

func (w *wordLog) WriteWord(addr, value uint32) {
	w.writes = append(w.writes, [2]uint32{addr, value})
}

type fixedLocator uint32

func (l fixedLocator) Location() uint32 { return uint32(l) }

// injectAt fires at exactly the listed points.
type injectAt map[Point]bool

func (f injectAt) Fault(p Point) bool { return f[p] }

func newState(t *testing.T, ref, cand []byte) *State {
	t.Helper()
	s, err := Initialize(Params{PINSize: len(ref), Reference: ref, Candidate: cand})
	require.NoError(t, err)
	return s
}

func TestInitialize_Defaults(t *testing.T) {
	sink := &wordLog{}
	s, err := Initialize(Params{PINSize: 4, Reference: refPIN, Candidate: wrongPIN, Sink: sink, SentinelAddr: 0x208})
	require.NoError(t, err)

	assert.Equal(t, MaxTries, s.PTC)
	assert.Equal(t, BoolFalse, s.Authenticated)
	assert.False(t, s.Sentinel.Triggered())
	assert.Equal(t, [][2]uint32{{0x208, 0}}, sink.writes)

	// buffers are owned by the state
	s.Reference[0] = 0xff
	assert.Equal(t, byte(1), refPIN[0])
}

func TestInitialize_RejectsBadLengths(t *testing.T) {
	_, err := Initialize(Params{PINSize: 4, Reference: refPIN, Candidate: []byte{1, 2, 3}})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Initialize(Params{PINSize: 0})
	assert.ErrorIs(t, err, ErrPINSize)

	_, err = Initialize(Params{PINSize: MaxPINSize + 1})
	assert.ErrorIs(t, err, ErrPINSize)
}

func TestVerify_Match(t *testing.T) {
	s := newState(t, refPIN, refPIN)

	got := Verify(s, NoFault{})

	assert.Equal(t, BoolTrue, got)
	assert.Equal(t, OutcomeMatch, Classify(got))
	assert.Equal(t, BoolTrue, s.Authenticated)
	assert.Equal(t, MaxTries, s.PTC)
	assert.Zero(t, s.Sentinel.Count())
	assert.Equal(t, FinalStep(4, OutcomeMatch, false), s.Steps)
	assert.Equal(t, []Phase{PhaseIdle, PhaseAttemptsAvailable, PhaseComparing, PhaseMatch, PhaseDone}, s.Phases)
}

func TestVerify_MismatchInOneByte(t *testing.T) {
	s := newState(t, refPIN, wrongPIN)

	got := Verify(s, nil)

	assert.Equal(t, BoolFalse, got)
	assert.Equal(t, OutcomeNoMatch, Classify(got))
	assert.Equal(t, BoolFalse, s.Authenticated)
	assert.Equal(t, int8(2), s.PTC)
	assert.Zero(t, s.Sentinel.Count())
	assert.Equal(t, FinalStep(4, OutcomeNoMatch, false), s.Steps)
	assert.Equal(t, []Phase{PhaseIdle, PhaseAttemptsAvailable, PhaseComparing, PhaseMismatch, PhaseDone}, s.Phases)
}

func TestVerify_ExhaustsAttempts(t *testing.T) {
	s := newState(t, refPIN, wrongPIN)

	for want := int8(2); want >= 0; want-- {
		require.Equal(t, BoolFalse, Verify(s, nil))
		require.Equal(t, want, s.PTC)
	}

	got := Verify(s, nil)
	assert.Equal(t, BoolFalse, got)
	assert.Equal(t, int8(0), s.PTC)
	assert.Equal(t, 0, s.Steps)
	assert.NotContains(t, s.Phases, PhaseComparing)
	assert.Equal(t, []Phase{PhaseIdle, PhaseAttemptsExhausted, PhaseDone}, s.Phases)
	assert.Equal(t, refPIN, s.Reference)
	assert.Equal(t, wrongPIN, s.Candidate)
	assert.Zero(t, s.Sentinel.Count())
}

func TestVerify_MatchRestoresAttempts(t *testing.T) {
	s := newState(t, refPIN, wrongPIN)
	Verify(s, nil)
	Verify(s, nil)
	require.Equal(t, int8(1), s.PTC)

	copy(s.Candidate, refPIN)
	assert.Equal(t, BoolTrue, Verify(s, nil))
	assert.Equal(t, MaxTries, s.PTC)
}

func TestVerify_EveryCheckpointReached(t *testing.T) {
	s := newState(t, refPIN, refPIN)

	var steps []int
	Verify(s, injectFunc(func(p Point) bool {
		if p.Site == SiteStepCheck {
			steps = append(steps, p.Index)
		}
		return false
	}))

	want := make([]int, 0)
	for _, cp := range Checkpoints(4) {
		want = append(want, cp.Expected)
	}
	assert.Equal(t, want, steps)
}

type injectFunc func(Point) bool

func (f injectFunc) Fault(p Point) bool { return f(p) }

func TestVerify_DeviationTriggersSentinel(t *testing.T) {
	cases := map[string]Point{
		"skipped step increment": {SiteStepIncrement, StepAttemptCheck},
		"inverted step check":    {SiteStepCheck, StepLoopEntry},
		"skipped loop body":      {SiteLoopBody, 2},
		"inverted loop check":    {SiteLoopCheck, 0},
		"inverted status check":  {SiteStatusConfirm, 0},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			s := newState(t, refPIN, refPIN)
			Verify(s, injectAt{p: true})

			assert.True(t, s.Sentinel.Triggered())
			assert.False(t, OracleAuth(s))
			assert.False(t, OraclePTC(s))
		})
	}
}

func TestVerify_OracleVetoesRawSuccess(t *testing.T) {
	s := newState(t, refPIN, refPIN)
	Verify(s, injectAt{{SiteStepCheck, StepAttemptReset(4)}: true})

	// the raw conditions still say success
	require.Equal(t, BoolTrue, s.Authenticated)
	require.Equal(t, MaxTries, s.PTC)

	assert.Equal(t, uint32(1), s.Sentinel.Count())
	assert.False(t, OracleAuth(s))
	assert.False(t, OraclePTC(s))
}

func TestVerify_UndetectedSingleFaults(t *testing.T) {
	// Inverting the last byte comparison flips a wrong PIN into a match
	// without any checkpoint noticing.
	s := newState(t, refPIN, wrongPIN)
	got := Verify(s, injectAt{{SiteByteCompare, 3}: true})
	assert.Equal(t, BoolTrue, got)
	assert.True(t, OracleAuth(s))

	s = newState(t, refPIN, wrongPIN)
	got = Verify(s, injectAt{{SiteDiffSet, 3}: true})
	assert.Equal(t, BoolTrue, got)
	assert.True(t, OracleAuth(s))
}

func TestVerify_SentinelMirroredToSink(t *testing.T) {
	sink := &wordLog{}
	s, err := Initialize(Params{PINSize: 4, Reference: refPIN, Candidate: refPIN, Sink: sink, SentinelAddr: 0x208})
	require.NoError(t, err)

	Verify(s, injectAt{{SiteLoopCheck, 0}: true})

	require.Len(t, sink.writes, 2)
	assert.Equal(t, [2]uint32{0x208, 1}, sink.writes[1])
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeMatch, Classify(BoolTrue))
	assert.Equal(t, OutcomeNoMatch, Classify(BoolFalse))
	assert.Equal(t, OutcomeUndetermined, Classify(0))
	assert.Equal(t, OutcomeUndetermined, Classify(0xAB))
}

func TestParseSite(t *testing.T) {
	for s := SiteAttemptCheck; s <= SiteAuthSet; s++ {
		got, err := ParseSite(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseSite("nowhere")
	assert.ErrorIs(t, err, ErrUnknownSite)
}
