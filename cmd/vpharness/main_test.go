/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kentakayama/verifypin-harness/internal/config"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()))
	return out.String()
}

func TestCLI_RunCampaignShow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvDBPath, filepath.Join(dir, "vpharness.db"))

	out := execute(t, "run", "--attempts", "4")
	assert.Contains(t, out, "attempt 1: result=")
	assert.Contains(t, out, "attempt 4: result=")
	assert.Contains(t, out, "ptc=0")

	reportPath := filepath.Join(dir, "report.cose")
	out = execute(t, "campaign", "--scenario", "wrong-pin", "--out", reportPath)
	assert.Contains(t, out, "points=32")
	assert.Contains(t, out, "attack succeeds with")

	out = execute(t, "show", reportPath)
	assert.Contains(t, out, `"1": "wrong-pin"`)

	out = execute(t, "history", "--limit", "10")
	assert.Contains(t, out, "record #4")
	assert.Contains(t, out, "campaign #1")

	out = execute(t, "runs", "1", "--effect", "attack-success")
	assert.Equal(t, 2, strings.Count(out, "attack-success"))
	assert.Contains(t, out, "outcome=match")

	out = execute(t, "runs", "1")
	assert.Equal(t, 32, strings.Count(out, "run #"))
}

func TestCLI_RunsRejectsBadInput(t *testing.T) {
	t.Setenv(config.EnvDBPath, filepath.Join(t.TempDir(), "vpharness.db"))

	for _, args := range [][]string{
		{"runs", "x"},
		{"runs", "7"},
		{"runs", "1", "--effect", "crash"},
	} {
		root := newRootCommand()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs(args)
		assert.Error(t, root.ExecuteContext(context.Background()), "%v", args)
	}
}

func TestCLI_CampaignSubmitNeedsCollector(t *testing.T) {
	t.Setenv(config.EnvDBPath, filepath.Join(t.TempDir(), "vpharness.db"))
	t.Setenv(config.EnvCollectorURL, "")

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"campaign", "--submit"})
	assert.Error(t, root.ExecuteContext(context.Background()))
}
