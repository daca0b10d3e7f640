/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package util

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// RenderCBOR decodes raw CBOR and renders it as indented JSON for humans.
// Byte strings print in diagnostic notation h'..', integer map keys print
// as their decimal form.
func RenderCBOR(raw []byte) (string, error) {
	var decoded any
	if err := cbor.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode CBOR: %w", err)
	}
	pretty, err := json.MarshalIndent(jsonable(decoded), "", "  ")
	if err != nil {
		return "", err
	}
	return string(pretty), nil
}

func jsonable(value any) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = jsonable(elem)
		}
		return out
	case map[any]any:
		// encoding/json emits map keys sorted
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[keyString(k)] = jsonable(elem)
		}
		return out
	case []byte:
		return fmt.Sprintf("h'%x'", v)
	case cbor.Tag:
		return map[string]any{
			"_cborTag": v.Number,
			"content":  jsonable(v.Content),
		}
	}
	return value
}

func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case []byte:
		return fmt.Sprintf("h'%x'", k)
	}
	return fmt.Sprint(key)
}
