/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package fault

import "errors"

var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrUnknownEffect   = errors.New("unknown effect")
	ErrOrder           = errors.New("fault order must be 1 or 2")
)
