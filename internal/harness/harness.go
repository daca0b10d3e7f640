/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package harness

import (
	"context"
	"crypto/ecdsa"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kentakayama/verifypin-harness/internal/config"
	"github.com/kentakayama/verifypin-harness/internal/domain"
	"github.com/kentakayama/verifypin-harness/internal/domain/model"
	"github.com/kentakayama/verifypin-harness/internal/domain/service"
	"github.com/kentakayama/verifypin-harness/internal/infra/mmio"
	"github.com/kentakayama/verifypin-harness/internal/infra/sqlite"
	"github.com/kentakayama/verifypin-harness/internal/report"
	"github.com/kentakayama/verifypin-harness/internal/verifypin"
)

// Harness owns one verification context, the memory it publishes to and
// the history of everything it ran. Runs never interleave.
type Harness struct {
	cfg     config.HarnessConfig
	logger  *log.Logger
	oracle  verifypin.Oracle
	memory  *mmio.Memory
	locator verifypin.Locator
	signer  *report.Signer
	pub     *ecdsa.PublicKey

	db        *sql.DB
	records   service.PublishedRecordRepository
	campaigns service.CampaignRepository
	runs      service.FaultRunRepository

	mu    sync.Mutex
	state *verifypin.State
}

// RunResult is what one verification attempt produced.
type RunResult struct {
	Record          verifypin.Record
	Outcome         verifypin.Outcome
	Oracle          bool
	PTC             int8
	Countermeasures uint32
}

func NewHarness(cfg config.HarnessConfig) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	oracle, err := verifypin.NewOracle(cfg.OraclePolicy)
	if err != nil {
		return nil, err
	}

	key, err := config.LoadSigningKey(cfg.SigningKeyPath)
	if err != nil {
		return nil, err
	}
	signer, err := report.NewSigner(key)
	if err != nil {
		return nil, err
	}

	return &Harness{
		cfg:     cfg,
		logger:  logger,
		oracle:  oracle,
		memory:  mmio.NewMemory(),
		locator: mmio.PCLocator{},
		signer:  signer,
		pub:     &key.PublicKey,
	}, nil
}

// Init opens the configured database.
func (h *Harness) Init(ctx context.Context) error {
	return h.InitWithPath(ctx, h.cfg.DBPath)
}

func (h *Harness) InitWithPath(ctx context.Context, dbPath string) error {
	db, err := sqlite.InitDB(ctx, dbPath)
	if err != nil {
		return err
	}
	h.db = db
	h.records = sqlite.NewPublishedRecordRepository(db)
	h.campaigns = sqlite.NewCampaignRepository(db)
	h.runs = sqlite.NewFaultRunRepository(db)
	return nil
}

func (h *Harness) Close() error {
	return sqlite.CloseDB(h.db)
}

func (h *Harness) Policy() verifypin.OraclePolicy {
	return h.oracle.Policy()
}

// PublicKey verifies the reports this harness signs.
func (h *Harness) PublicKey() *ecdsa.PublicKey {
	return h.pub
}

// Memory is the data memory the harness publishes into.
func (h *Harness) Memory() *mmio.Memory {
	return h.memory
}

// RunOnce initializes a fresh context and performs one attempt on it.
func (h *Harness) RunOnce(ctx context.Context) (*RunResult, error) {
	return h.attempt(ctx, true)
}

// Attempt performs one more attempt on the current context, initializing
// it first if nothing ran yet. Attempts spend the shared attempt counter.
func (h *Harness) Attempt(ctx context.Context) (*RunResult, error) {
	return h.attempt(ctx, false)
}

func (h *Harness) attempt(ctx context.Context, fresh bool) (*RunResult, error) {
	if h.db == nil {
		return nil, ErrNotInitialized
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if fresh || h.state == nil {
		st, err := verifypin.Initialize(h.cfg.Params(h.memory))
		if err != nil {
			return nil, err
		}
		h.state = st
	}

	outcome := verifypin.Classify(verifypin.Verify(h.state, verifypin.NoFault{}))
	pub := verifypin.NewPublisher(h.memory, h.locator, h.cfg.ResultAddr, h.cfg.LocationAddr)
	rec, err := pub.Publish(h.state, outcome)
	if err != nil {
		return nil, err
	}

	res := &RunResult{
		Record:          rec,
		Outcome:         outcome,
		Oracle:          h.oracle.Check(h.state),
		PTC:             h.state.PTC,
		Countermeasures: h.state.Sentinel.Count(),
	}

	if _, err := h.records.Create(ctx, &model.PublishedRecord{
		ResultCode:      rec.Code,
		Location:        rec.Location,
		Outcome:         outcome.String(),
		OraclePolicy:    h.oracle.Policy().String(),
		Oracle:          res.Oracle,
		Countermeasures: res.Countermeasures,
		PTC:             int(res.PTC),
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
	}); err != nil {
		return nil, fmt.Errorf("store published record: %w", err)
	}

	h.logger.Printf("published {result: %d (%s), location: %#x} oracle[%s]=%t ptc=%d countermeasures=%d",
		rec.Code, outcome, rec.Location, h.oracle.Policy(), res.Oracle, res.PTC, res.Countermeasures)
	return res, nil
}

// Record reads the published pair back from memory, the way an external
// tester would. It never pairs the words of two different runs.
func (h *Harness) Record() (verifypin.Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	code, ok := h.memory.ReadWord(h.cfg.ResultAddr)
	if !ok {
		return verifypin.Record{}, domain.ErrNotYetPublished
	}
	loc, ok := h.memory.ReadWord(h.cfg.LocationAddr)
	if !ok {
		return verifypin.Record{}, domain.ErrNotYetPublished
	}
	return verifypin.Record{Code: code, Location: loc}, nil
}

// Oracle evaluates the build's oracle over the last completed attempt.
func (h *Harness) Oracle() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == nil || !h.state.Done() {
		return false, domain.ErrNotYetPublished
	}
	return h.oracle.Check(h.state), nil
}

// History returns up to limit publications, newest first.
func (h *Harness) History(ctx context.Context, limit int) ([]*model.PublishedRecord, error) {
	if h.db == nil {
		return nil, ErrNotInitialized
	}
	return h.records.ListRecent(ctx, limit)
}
