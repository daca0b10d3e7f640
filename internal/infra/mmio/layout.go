/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package mmio

// Data memory cells the target publishes to. An external tester reads
// them after the run.
const (
	DMEMBase uint32 = 0x10000000

	ResultAddr         uint32 = 0x10000200
	LocationAddr       uint32 = 0x10000204
	CountermeasureAddr uint32 = 0x10000208

	WordSize uint32 = 4
)
