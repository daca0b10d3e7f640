/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import "time"

// Campaign is one exhaustive fault campaign with its per-effect tallies.
type Campaign struct {
	ID            int64
	Scenario      string
	OraclePolicy  string
	FaultOrder    int
	PINSize       int
	GoldenOutcome string
	Total         int
	Detected      int
	Succeeded     int
	Silent        int
	NoEffect      int
	Report        []byte // COSE_Sign1 signed report, nil until attached
	CreatedAt     time.Time
}
