//go:build oracle_ptc

/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package config

import "github.com/kentakayama/verifypin-harness/internal/verifypin"

const DefaultOraclePolicy = verifypin.PolicyPTC
