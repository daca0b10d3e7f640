/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

// Outcome is the discrete result of one verification attempt.
type Outcome int

const (
	OutcomeUndetermined Outcome = iota
	OutcomeMatch
	OutcomeNoMatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatch:
		return "match"
	case OutcomeNoMatch:
		return "no-match"
	}
	return "undetermined"
}

// Code maps o to the word written to the result cell. The mapping is fixed
// per build, see codes_*.go.
func (o Outcome) Code() uint32 {
	switch o {
	case OutcomeMatch:
		return CodeMatch
	case OutcomeNoMatch:
		return CodeNoMatch
	}
	return CodeUndetermined
}

// OutcomeFromCode is the inverse of Outcome.Code.
func OutcomeFromCode(code uint32) Outcome {
	switch code {
	case CodeMatch:
		return OutcomeMatch
	case CodeNoMatch:
		return OutcomeNoMatch
	}
	return OutcomeUndetermined
}

// Classify turns the value returned by Verify into an outcome. Anything
// other than the two valid Bool encodings is undetermined.
func Classify(b Bool) Outcome {
	switch b {
	case BoolTrue:
		return OutcomeMatch
	case BoolFalse:
		return OutcomeNoMatch
	}
	return OutcomeUndetermined
}

// Locator returns a marker of where execution is when it is called.
type Locator interface {
	Location() uint32
}

// Record is the published pair as written to the two result cells.
type Record struct {
	Code     uint32
	Location uint32
}

func (r Record) Outcome() Outcome {
	return OutcomeFromCode(r.Code)
}

// Publisher writes the outcome code and then the location marker to two
// consecutive words. One Publisher serves exactly one run.
type Publisher struct {
	sink         WordWriter
	locator      Locator
	resultAddr   uint32
	locationAddr uint32
	published    bool
}

func NewPublisher(sink WordWriter, locator Locator, resultAddr, locationAddr uint32) *Publisher {
	return &Publisher{
		sink:         sink,
		locator:      locator,
		resultAddr:   resultAddr,
		locationAddr: locationAddr,
	}
}

// Publish writes the record for a state that has reached Done.
func (p *Publisher) Publish(s *State, o Outcome) (Record, error) {
	if p.published {
		return Record{}, ErrAlreadyPublished
	}
	if !s.Done() {
		return Record{}, ErrNotDone
	}
	p.published = true

	rec := Record{Code: o.Code()}
	p.sink.WriteWord(p.resultAddr, rec.Code)
	rec.Location = p.locator.Location()
	p.sink.WriteWord(p.locationAddr, rec.Location)
	return rec, nil
}
