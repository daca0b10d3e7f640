/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import "time"

// FaultRun is one faulted execution inside a campaign.
type FaultRun struct {
	ID              int64
	CampaignID      int64
	Faults          []byte // CBOR array of fault points
	Applied         int
	Outcome         string
	ResultCode      uint32
	Countermeasures uint32
	Steps           int
	PTC             int
	Authenticated   byte
	Oracle          bool
	Effect          string
	CreatedAt       time.Time
}
