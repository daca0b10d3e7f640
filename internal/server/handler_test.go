/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kentakayama/verifypin-harness/internal/config"
	"github.com/kentakayama/verifypin-harness/internal/harness"
	"github.com/kentakayama/verifypin-harness/internal/report"
	"github.com/kentakayama/verifypin-harness/internal/verifypin"
)

func newTestHandler(t *testing.T) (*handler, *harness.Harness) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	cfg := config.DefaultHarness()
	cfg.DBPath = ":memory:"
	cfg.Logger = logger

	hs, err := harness.NewHarness(cfg)
	require.NoError(t, err)
	require.NoError(t, hs.Init(context.Background()))
	t.Cleanup(func() { hs.Close() })

	h, err := newHandler(hs, logger)
	require.NoError(t, err)
	return h, hs
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHandler_RecordBeforeRun(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodGet, "/record").Code)
	assert.Equal(t, http.StatusNoContent, do(h, http.MethodGet, "/oracle").Code)
}

func TestHandler_RunThenObserve(t *testing.T) {
	h, hs := newTestHandler(t)

	resp := do(h, http.MethodPost, "/run")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, contentTypeCBOR, resp.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", resp.Header().Get("Cache-Control"))

	var run runBody
	require.NoError(t, cbor.Unmarshal(resp.Body.Bytes(), &run))
	assert.Equal(t, verifypin.CodeNoMatch, run.Record.Code)
	assert.Equal(t, "no-match", run.Record.Outcome)
	assert.Equal(t, int8(2), run.PTC)
	assert.False(t, run.Oracle)

	resp = do(h, http.MethodGet, "/record")
	require.Equal(t, http.StatusOK, resp.Code)
	var rec recordBody
	require.NoError(t, cbor.Unmarshal(resp.Body.Bytes(), &rec))
	assert.Equal(t, run.Record.Code, rec.Code)
	assert.Equal(t, run.Record.Location, rec.Location)

	resp = do(h, http.MethodGet, "/oracle")
	require.Equal(t, http.StatusOK, resp.Code)
	var ob oracleBody
	require.NoError(t, cbor.Unmarshal(resp.Body.Bytes(), &ob))
	assert.Equal(t, hs.Policy().String(), ob.Policy)
	assert.False(t, ob.Holds)
}

func TestHandler_AttemptsAndHistory(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, want := range []int8{2, 1, 0} {
		resp := do(h, http.MethodPost, "/attempt")
		require.Equal(t, http.StatusOK, resp.Code)
		var run runBody
		require.NoError(t, cbor.Unmarshal(resp.Body.Bytes(), &run))
		assert.Equal(t, want, run.PTC)
	}

	resp := do(h, http.MethodGet, "/history?limit=2")
	require.Equal(t, http.StatusOK, resp.Code)
	var entries []historyEntry
	require.NoError(t, cbor.Unmarshal(resp.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].PTC)
	assert.Equal(t, 1, entries[1].PTC)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/history?limit=-1").Code)
}

func TestHandler_Campaign(t *testing.T) {
	h, hs := newTestHandler(t)

	resp := do(h, http.MethodPost, "/campaign?scenario=wrong-pin&order=1")
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, contentTypeCOSE, resp.Header().Get("Content-Type"))
	assert.NotEmpty(t, resp.Header().Get("Location"))

	r, err := report.Verify(hs.PublicKey(), resp.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "wrong-pin", r.Scenario)
	assert.Equal(t, 2, r.Summary["attack-success"])

	stored := do(h, http.MethodGet, resp.Header().Get("Location"))
	require.Equal(t, http.StatusOK, stored.Code)
	assert.Equal(t, resp.Body.Bytes(), stored.Body.Bytes())
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/campaign/999").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/campaign/abc").Code)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/campaign?scenario=nope").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/campaign?order=5").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/campaign?order=x").Code)
}

func TestHandler_Routing(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/tam").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/run").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, "/record").Code)
}

func TestHandler_CampaignRuns(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := do(h, http.MethodPost, "/campaign?scenario=wrong-pin&order=1")
	require.Equal(t, http.StatusCreated, resp.Code)
	runsURL := resp.Header().Get("Location") + "/runs"

	all := do(h, http.MethodGet, runsURL)
	require.Equal(t, http.StatusOK, all.Code)
	assert.Equal(t, contentTypeCBOR, all.Header().Get("Content-Type"))
	var runs []runEntry
	require.NoError(t, cbor.Unmarshal(all.Body.Bytes(), &runs))
	assert.Len(t, runs, 32)

	succ := do(h, http.MethodGet, runsURL+"?effect=attack-success")
	require.Equal(t, http.StatusOK, succ.Code)
	runs = nil
	require.NoError(t, cbor.Unmarshal(succ.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, "attack-success", run.Effect)
		assert.True(t, run.Oracle)

		var points []verifypin.Point
		require.NoError(t, cbor.Unmarshal(run.Faults, &points))
		assert.Len(t, points, 1)
	}

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, runsURL+"?effect=crash").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/campaign/999/runs").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/campaign/x/runs").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, runsURL).Code)
}
