//go:build !simplified_codes

/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

// Result codes of the full harness: 2 match, 1 no match, 3 undetermined.
// The undetermined code is also the value the cell is expected to hold
// when verification never reached publication.
const (
	CodeMatch        uint32 = 2
	CodeNoMatch      uint32 = 1
	CodeUndetermined uint32 = 3
)
