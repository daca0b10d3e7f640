//go:build simplified_codes

/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

// Result codes of the simplified harness: 0 match, 1 no match, 2 undetermined.
const (
	CodeMatch        uint32 = 0
	CodeNoMatch      uint32 = 1
	CodeUndetermined uint32 = 2
)
