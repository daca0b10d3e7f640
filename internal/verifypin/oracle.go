/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

import "fmt"

// OraclePolicy selects which post-condition is exposed to the tester.
type OraclePolicy int

const (
	// PolicyAuth judges the authenticated flag.
	PolicyAuth OraclePolicy = iota + 1
	// PolicyPTC judges whether the attempt counter is at its maximum.
	PolicyPTC
)

func (p OraclePolicy) String() string {
	switch p {
	case PolicyAuth:
		return "auth"
	case PolicyPTC:
		return "ptc"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

func ParseOraclePolicy(s string) (OraclePolicy, error) {
	switch s {
	case "auth":
		return PolicyAuth, nil
	case "ptc":
		return PolicyPTC, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// OracleAuth holds when no countermeasure fired and the authenticated flag
// carries exactly BoolTrue.
func OracleAuth(s *State) bool {
	return !s.Sentinel.Triggered() && s.Authenticated == BoolTrue
}

// OraclePTC holds when no countermeasure fired and no attempt is spent.
func OraclePTC(s *State) bool {
	return !s.Sentinel.Triggered() && s.PTC >= MaxTries
}

// Oracle is the predicate chosen once per build. It only reads state.
type Oracle struct {
	policy OraclePolicy
	check  func(*State) bool
}

func NewOracle(policy OraclePolicy) (Oracle, error) {
	switch policy {
	case PolicyAuth:
		return Oracle{policy: policy, check: OracleAuth}, nil
	case PolicyPTC:
		return Oracle{policy: policy, check: OraclePTC}, nil
	}
	return Oracle{}, fmt.Errorf("%w: %v", ErrUnknownPolicy, policy)
}

func (o Oracle) Policy() OraclePolicy {
	return o.policy
}

// Check evaluates the oracle over committed state.
func (o Oracle) Check(s *State) bool {
	return o.check(s)
}
