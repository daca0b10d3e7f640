/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package harness

import "errors"

var (
	ErrNotInitialized = errors.New("harness database not initialized")
	ErrCampaign       = errors.New("campaign failed")
)
