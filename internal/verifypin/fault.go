/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

import "fmt"

// Site is a location in Verify where a fault can act.
type Site int

const (
	SiteAttemptCheck     Site = iota + 1 // branch: attempts remaining
	SiteAttemptDecrement                 // skip: attempt counter decrement
	SiteStepIncrement                    // skip: step counter increment, indexed by expected step
	SiteStepCheck                        // branch: step counter != expected, indexed by expected step
	SiteLoopBody                         // skip: whole comparison iteration, indexed by byte
	SiteByteCompare                      // branch: bytes differ, indexed by byte
	SiteDiffSet                          // skip: diff = true, indexed by byte
	SiteLoopCheck                        // branch: visited positions != PIN size
	SiteDiffTest                         // branch: diff == false
	SiteDiffConfirm                      // branch: false == diff
	SiteStatusTest                       // branch: status == true
	SiteStatusConfirm                    // branch: true == status
	SiteAttemptReset                     // skip: attempt counter reset
	SiteAuthSet                          // skip: authenticated flag set
)

var siteNames = map[Site]string{
	SiteAttemptCheck:     "attempt-check",
	SiteAttemptDecrement: "attempt-decrement",
	SiteStepIncrement:    "step-increment",
	SiteStepCheck:        "step-check",
	SiteLoopBody:         "loop-body",
	SiteByteCompare:      "byte-compare",
	SiteDiffSet:          "diff-set",
	SiteLoopCheck:        "loop-check",
	SiteDiffTest:         "diff-test",
	SiteDiffConfirm:      "diff-confirm",
	SiteStatusTest:       "status-test",
	SiteStatusConfirm:    "status-confirm",
	SiteAttemptReset:     "attempt-reset",
	SiteAuthSet:          "auth-set",
}

func (s Site) String() string {
	if n, ok := siteNames[s]; ok {
		return n
	}
	return fmt.Sprintf("site(%d)", int(s))
}

// ParseSite returns the site with the given name.
func ParseSite(name string) (Site, error) {
	for s, n := range siteNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSite, name)
}

// FaultKind says what a fault does at a site.
type FaultKind int

const (
	// KindSkip drops the guarded statement.
	KindSkip FaultKind = iota + 1
	// KindInvert takes the other arm of a conditional branch.
	KindInvert
)

func (k FaultKind) String() string {
	if k == KindInvert {
		return "invert"
	}
	return "skip"
}

func (s Site) Kind() FaultKind {
	switch s {
	case SiteAttemptDecrement, SiteStepIncrement, SiteLoopBody, SiteDiffSet, SiteAttemptReset, SiteAuthSet:
		return KindSkip
	default:
		return KindInvert
	}
}

// Point is one executed fault site. Index disambiguates sites visited more
// than once per run (byte position or expected step); it is 0 otherwise.
type Point struct {
	Site  Site `cbor:"1,keyasint"`
	Index int  `cbor:"2,keyasint"`
}

func (p Point) String() string {
	return fmt.Sprintf("%s/%s[%d]", p.Site.Kind(), p.Site, p.Index)
}

// Injector decides, each time Verify reaches a fault site, whether a fault
// acts there. It is how an instrumented simulator drives the state machine.
type Injector interface {
	Fault(p Point) bool
}

// NoFault is the nominal, unglitched execution.
type NoFault struct{}

func (NoFault) Fault(Point) bool { return false }
