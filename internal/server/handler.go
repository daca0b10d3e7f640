/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/kentakayama/verifypin-harness/internal/domain"
	"github.com/kentakayama/verifypin-harness/internal/fault"
	"github.com/kentakayama/verifypin-harness/internal/harness"
)

const (
	contentTypeCBOR = "application/cbor"
	contentTypeCOSE = `application/cose; cose-type="cose-sign1"`

	campaignPrefix = "/campaign/"
	runsSuffix     = "/runs"

	defaultHistoryLimit = 20
	maxHistoryLimit     = 1000
)

type handler struct {
	harness *harness.Harness
	logger  *log.Logger
}

type responseSpec struct {
	status      int
	body        []byte
	contentType string
}

// recordBody is the published pair as an external tester reads it.
type recordBody struct {
	Code     uint32 `cbor:"1,keyasint"`
	Location uint32 `cbor:"2,keyasint"`
	Outcome  string `cbor:"3,keyasint,omitempty"`
}

type runBody struct {
	Record          recordBody `cbor:"1,keyasint"`
	Oracle          bool       `cbor:"2,keyasint"`
	PTC             int8       `cbor:"3,keyasint"`
	Countermeasures uint32     `cbor:"4,keyasint"`
}

type oracleBody struct {
	Policy string `cbor:"1,keyasint"`
	Holds  bool   `cbor:"2,keyasint"`
}

type historyEntry struct {
	Code            uint32 `cbor:"1,keyasint"`
	Location        uint32 `cbor:"2,keyasint"`
	Outcome         string `cbor:"3,keyasint"`
	Oracle          bool   `cbor:"4,keyasint"`
	PTC             int    `cbor:"5,keyasint"`
	Countermeasures uint32 `cbor:"6,keyasint"`
	At              int64  `cbor:"7,keyasint"`
}

// runEntry is one stored faulted run; Faults is the CBOR list of points
// as it was recorded.
type runEntry struct {
	Faults          cbor.RawMessage `cbor:"1,keyasint"`
	Applied         int             `cbor:"2,keyasint"`
	Outcome         string          `cbor:"3,keyasint"`
	Code            uint32          `cbor:"4,keyasint"`
	Countermeasures uint32          `cbor:"5,keyasint"`
	Steps           int             `cbor:"6,keyasint"`
	PTC             int             `cbor:"7,keyasint"`
	Oracle          bool            `cbor:"8,keyasint"`
	Effect          string          `cbor:"9,keyasint"`
}

func newHandler(hs *harness.Harness, logger *log.Logger) (*handler, error) {
	if hs == nil {
		return nil, errors.New("nil harness")
	}
	return &handler{
		harness: hs,
		logger:  logger,
	}, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var method string
	var fn func(http.ResponseWriter, *http.Request)

	switch r.URL.Path {
	case "/run":
		method, fn = http.MethodPost, h.run
	case "/attempt":
		method, fn = http.MethodPost, h.attempt
	case "/campaign":
		method, fn = http.MethodPost, h.campaign
	case "/record":
		method, fn = http.MethodGet, h.record
	case "/oracle":
		method, fn = http.MethodGet, h.oracle
	case "/history":
		method, fn = http.MethodGet, h.history
	default:
		if !strings.HasPrefix(r.URL.Path, campaignPrefix) {
			http.NotFound(w, r)
			return
		}
		method, fn = http.MethodGet, h.storedCampaign
		if strings.HasSuffix(r.URL.Path, runsSuffix) {
			fn = h.campaignRuns
		}
	}

	if r.Method != method {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	fn(w, r)
}

func (h *handler) run(w http.ResponseWriter, r *http.Request) {
	res, err := h.harness.RunOnce(r.Context())
	h.writeRun(w, res, err)
}

func (h *handler) attempt(w http.ResponseWriter, r *http.Request) {
	res, err := h.harness.Attempt(r.Context())
	h.writeRun(w, res, err)
}

func (h *handler) writeRun(w http.ResponseWriter, res *harness.RunResult, err error) {
	if err != nil {
		h.logger.Printf("run failed: %v", err)
		h.writeResponse(w, responseSpec{status: http.StatusInternalServerError})
		return
	}
	h.writeCBOR(w, http.StatusOK, runBody{
		Record: recordBody{
			Code:     res.Record.Code,
			Location: res.Record.Location,
			Outcome:  res.Outcome.String(),
		},
		Oracle:          res.Oracle,
		PTC:             res.PTC,
		Countermeasures: res.Countermeasures,
	})
}

func (h *handler) record(w http.ResponseWriter, r *http.Request) {
	rec, err := h.harness.Record()
	if errors.Is(err, domain.ErrNotYetPublished) {
		h.writeResponse(w, responseSpec{status: http.StatusNoContent})
		return
	}
	if err != nil {
		h.logger.Printf("failed reading record: %v", err)
		h.writeResponse(w, responseSpec{status: http.StatusInternalServerError})
		return
	}
	// the code alone cannot say which build mapping produced it
	h.writeCBOR(w, http.StatusOK, recordBody{Code: rec.Code, Location: rec.Location})
}

func (h *handler) oracle(w http.ResponseWriter, r *http.Request) {
	holds, err := h.harness.Oracle()
	if errors.Is(err, domain.ErrNotYetPublished) {
		h.writeResponse(w, responseSpec{status: http.StatusNoContent})
		return
	}
	if err != nil {
		h.logger.Printf("failed evaluating oracle: %v", err)
		h.writeResponse(w, responseSpec{status: http.StatusInternalServerError})
		return
	}
	h.writeCBOR(w, http.StatusOK, oracleBody{Policy: h.harness.Policy().String(), Holds: holds})
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.harness.History(r.Context(), limit)
	if err != nil {
		h.logger.Printf("failed listing history: %v", err)
		h.writeResponse(w, responseSpec{status: http.StatusInternalServerError})
		return
	}
	out := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		out = append(out, historyEntry{
			Code:            rec.ResultCode,
			Location:        rec.Location,
			Outcome:         rec.Outcome,
			Oracle:          rec.Oracle,
			PTC:             rec.PTC,
			Countermeasures: rec.Countermeasures,
			At:              rec.CreatedAt.Unix(),
		})
	}
	h.writeCBOR(w, http.StatusOK, out)
}

func (h *handler) campaign(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scenario := q.Get("scenario")
	if scenario == "" {
		scenario = fault.ScenarioWrongPIN
	}
	order := 1
	if v := q.Get("order"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid order", http.StatusBadRequest)
			return
		}
		order = n
	}

	out, err := h.harness.RunCampaign(r.Context(), scenario, order)
	if errors.Is(err, fault.ErrUnknownScenario) || errors.Is(err, fault.ErrOrder) {
		h.logger.Printf("rejected campaign request: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Printf("campaign failed: %v", err)
		h.writeResponse(w, responseSpec{status: http.StatusInternalServerError})
		return
	}

	w.Header().Set("Location", campaignPrefix+strconv.FormatInt(out.ID, 10))
	h.writeResponse(w, responseSpec{
		status:      http.StatusCreated,
		body:        out.Signed,
		contentType: contentTypeCOSE,
	})
}

// campaignID parses the id out of /campaign/{id}[/runs].
func campaignID(path string) (int64, bool) {
	v := strings.TrimSuffix(strings.TrimPrefix(path, campaignPrefix), runsSuffix)
	id, err := strconv.ParseInt(v, 10, 64)
	return id, err == nil && id > 0
}

// storedCampaign returns the signed report of an earlier campaign.
func (h *handler) storedCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	c, err := h.harness.Campaign(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Printf("failed loading campaign %d: %v", id, err)
		h.writeResponse(w, responseSpec{status: http.StatusInternalServerError})
		return
	}
	if len(c.Report) == 0 {
		h.writeResponse(w, responseSpec{status: http.StatusNoContent})
		return
	}
	h.writeResponse(w, responseSpec{
		status:      http.StatusOK,
		body:        c.Report,
		contentType: contentTypeCOSE,
	})
}

// campaignRuns lists the stored runs of a campaign, filtered by the
// effect query parameter when present.
func (h *handler) campaignRuns(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	runs, err := h.harness.FaultRuns(r.Context(), id, r.URL.Query().Get("effect"))
	if errors.Is(err, fault.ErrUnknownEffect) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Printf("failed listing runs of campaign %d: %v", id, err)
		h.writeResponse(w, responseSpec{status: http.StatusInternalServerError})
		return
	}

	out := make([]runEntry, 0, len(runs))
	for _, run := range runs {
		out = append(out, runEntry{
			Faults:          run.Faults,
			Applied:         run.Applied,
			Outcome:         run.Outcome,
			Code:            run.ResultCode,
			Countermeasures: run.Countermeasures,
			Steps:           run.Steps,
			PTC:             run.PTC,
			Oracle:          run.Oracle,
			Effect:          run.Effect,
		})
	}
	h.writeCBOR(w, http.StatusOK, out)
}

func (h *handler) writeCBOR(w http.ResponseWriter, status int, v any) {
	body, err := cbor.Marshal(v)
	if err != nil {
		h.logger.Printf("failed encoding response: %v", err)
		h.writeResponse(w, responseSpec{status: http.StatusInternalServerError})
		return
	}
	h.writeResponse(w, responseSpec{
		status:      status,
		body:        body,
		contentType: contentTypeCBOR,
	})
}

func (h *handler) writeResponse(w http.ResponseWriter, spec responseSpec) {
	w.Header().Set("Server", "vpharness")

	if len(spec.body) > 0 {
		for k, v := range defaultHeaders {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", spec.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(spec.body)))
		w.WriteHeader(spec.status)
		if _, err := w.Write(spec.body); err != nil {
			h.logger.Printf("failed writing response body: %v", err)
		}
		return
	}

	w.WriteHeader(spec.status)
}

var defaultHeaders = map[string]string{
	"Cache-Control":           "no-store",
	"X-Content-Type-Options":  "nosniff",
	"Content-Security-Policy": "default-src 'none'",
	"Referrer-Policy":         "no-referrer",
}
