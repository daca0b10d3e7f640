/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package resources

import (
	"embed"
)

// Features holds the behaviour scenarios of the verification routine.
//
//go:embed features/*.feature
var Features embed.FS
