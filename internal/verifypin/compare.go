/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package verifypin

// Visit walks every position of a and b exactly once, in order, reporting
// whether the bytes at that position are equal. It never stops early.
// Callers guarantee len(a) == len(b).
func Visit(a, b []byte, fn func(i int, equal bool)) {
	for i := 0; i < len(a); i++ {
		fn(i, a[i] == b[i])
	}
}

// Compare reports whether a and b hold the same bytes. Every position is
// read regardless of where the first difference lies.
func Compare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	diff := false
	Visit(a, b, func(_ int, equal bool) {
		diff = diff || !equal
	})
	return !diff
}

// CompareEarlyExit is the unhardened comparison: it returns at the first
// differing position, leaking that position through its running time.
// It is kept as the baseline the campaign and tests contrast against.
func CompareEarlyExit(a, b []byte, visit func(i int)) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if visit != nil {
			visit(i)
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
