/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package util

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewSet(1, 2, 2)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(3))

	s.Add(3)
	assert.True(t, s.Has(3))
	assert.Equal(t, 3, s.Len())
}

func TestRenderCBOR(t *testing.T) {
	raw, err := cbor.Marshal(map[int]any{
		1: "wrong-pin",
		2: []byte{0xde, 0xad},
		3: []any{1, "two"},
	})
	require.NoError(t, err)

	got, err := RenderCBOR(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1": "wrong-pin", "2": "h'dead'", "3": [1, "two"]}`, got)
}

func TestRenderCBOR_Tag(t *testing.T) {
	raw, err := cbor.Marshal(cbor.Tag{Number: 18, Content: []any{1}})
	require.NoError(t, err)

	got, err := RenderCBOR(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_cborTag": 18, "content": [1]}`, got)
}

func TestRenderCBOR_Invalid(t *testing.T) {
	_, err := RenderCBOR([]byte{0xff})
	assert.Error(t, err)
}
