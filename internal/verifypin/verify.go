/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

// run carries one Verify invocation. Every statement a fault could skip and
// every branch a fault could invert goes through skip or branch.
type run struct {
	s   *State
	inj Injector
}

func (r *run) skip(site Site, index int) bool {
	return r.inj.Fault(Point{Site: site, Index: index})
}

func (r *run) branch(site Site, index int, cond bool) bool {
	if r.inj.Fault(Point{Site: site, Index: index}) {
		return !cond
	}
	return cond
}

// checkpoint advances the step counter and fires the sentinel when the
// counter is not at the value this checkpoint expects.
func (r *run) checkpoint(expected int) {
	if !r.skip(SiteStepIncrement, expected) {
		r.s.Steps++
	}
	if r.branch(SiteStepCheck, expected, r.s.Steps != expected) {
		r.s.Sentinel.Trigger()
	}
}

// Verify runs one verification attempt of s.Candidate against s.Reference.
//
// The attempt counter is decremented before the comparison and restored on
// a confirmed match, so skipping the success path cannot leave a try
// unspent. The comparison visits every byte. Branches deciding success are
// tested twice with operands swapped. A nil inj runs without faults.
//
// Verify never fails: detected deviations are recorded in s.Sentinel.
func Verify(s *State, inj Injector) Bool {
	if inj == nil {
		inj = NoFault{}
	}
	r := &run{s: s, inj: inj}
	n := len(s.Reference)

	s.Steps = 0
	s.Phases = s.Phases[:0]
	s.enter(PhaseIdle)
	defer s.enter(PhaseDone)

	s.Authenticated = BoolFalse

	if !r.branch(SiteAttemptCheck, 0, s.PTC > 0) {
		s.enter(PhaseAttemptsExhausted)
		return BoolFalse
	}
	s.enter(PhaseAttemptsAvailable)
	r.checkpoint(StepAttemptCheck)

	if !r.skip(SiteAttemptDecrement, 0) {
		s.PTC--
	}
	r.checkpoint(StepAttemptDecrement)

	status := BoolFalse
	diff := BoolFalse

	s.enter(PhaseComparing)
	r.checkpoint(StepLoopEntry)

	visited := 0
	Visit(s.Candidate, s.Reference, func(i int, equal bool) {
		if r.skip(SiteLoopBody, i) {
			return
		}
		if r.branch(SiteByteCompare, i, !equal) && !r.skip(SiteDiffSet, i) {
			diff = BoolTrue
		}
		r.checkpoint(StepByte(i))
		visited++
	})

	r.checkpoint(StepLoopExit(n))
	if r.branch(SiteLoopCheck, 0, visited != n) {
		s.Sentinel.Trigger()
	}

	if r.branch(SiteDiffTest, 0, diff == BoolFalse) {
		if r.branch(SiteDiffConfirm, 0, BoolFalse == diff) {
			status = BoolTrue
		} else {
			s.Sentinel.Trigger()
		}
	}
	r.checkpoint(StepBranch(n))

	if r.branch(SiteStatusTest, 0, status == BoolTrue) {
		r.checkpoint(StepSuccessBranch(n))
		if r.branch(SiteStatusConfirm, 0, BoolTrue == status) {
			r.checkpoint(StepSuccessConfirm(n))
			if !r.skip(SiteAttemptReset, 0) {
				s.PTC = MaxTries
			}
			r.checkpoint(StepAttemptReset(n))
			if !r.skip(SiteAuthSet, 0) {
				s.Authenticated = BoolTrue
			}
			s.enter(PhaseMatch)
			return BoolTrue
		}
		s.Sentinel.Trigger()
	}

	s.enter(PhaseMismatch)
	return BoolFalse
}
