/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

import "errors"

var (
	ErrPINSize          = errors.New("invalid PIN size")
	ErrLengthMismatch   = errors.New("reference and candidate PIN lengths differ")
	ErrAlreadyPublished = errors.New("record already published for this run")
	ErrNotDone          = errors.New("verification has not reached Done")
	ErrUnknownPolicy    = errors.New("unknown oracle policy")
	ErrUnknownSite      = errors.New("unknown fault site")
)
