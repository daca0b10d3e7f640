/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package report

import (
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/kentakayama/verifypin-harness/internal/fault"
	"github.com/kentakayama/verifypin-harness/internal/verifypin"
)

// Report is the portable summary of a fault campaign.
type Report struct {
	Scenario   string              `cbor:"1,keyasint"`
	Policy     string              `cbor:"2,keyasint"`
	Order      int                 `cbor:"3,keyasint"`
	GoldenCode uint32              `cbor:"4,keyasint"`
	Points     int                 `cbor:"5,keyasint"`
	Summary    map[string]int      `cbor:"6,keyasint"`
	Successes  [][]verifypin.Point `cbor:"7,keyasint,omitempty"`
	Silent     [][]verifypin.Point `cbor:"8,keyasint,omitempty"`
	IssuedAt   int64               `cbor:"9,keyasint"`
}

// FromResult builds the report of a finished campaign.
func FromResult(res *fault.Result, issuedAt time.Time) Report {
	r := Report{
		Scenario:   res.Scenario,
		Policy:     res.Policy.String(),
		Order:      res.Order,
		GoldenCode: res.Golden.Record.Code,
		Points:     len(res.Points),
		Summary:    make(map[string]int),
		IssuedAt:   issuedAt.Unix(),
	}
	for effect, n := range res.Summary() {
		r.Summary[effect.String()] = n
	}
	for _, run := range res.Filter(fault.EffectSuccess) {
		r.Successes = append(r.Successes, run.Faults)
	}
	for _, run := range res.Filter(fault.EffectSilent) {
		r.Silent = append(r.Silent, run.Faults)
	}
	return r
}

func (r Report) MarshalCBOR() ([]byte, error) {
	type plain Report
	return encMode.Marshal(plain(r))
}

// canonical encoding so equal reports sign identical payloads
var encMode, _ = cbor.CoreDetEncOptions().EncMode()
