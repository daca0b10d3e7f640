/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import "time"

// PublishedRecord is the history entry of one publication to the result cells.
type PublishedRecord struct {
	ID              int64
	ResultCode      uint32
	Location        uint32
	Outcome         string
	OraclePolicy    string
	Oracle          bool
	Countermeasures uint32
	PTC             int
	CreatedAt       time.Time
}
