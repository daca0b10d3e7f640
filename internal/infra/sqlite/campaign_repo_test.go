/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package sqlite

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/kentakayama/verifypin-harness/internal/domain/model"
)

func newTestCampaign(now time.Time) *model.Campaign {
	return &model.Campaign{
		Scenario:      "wrong-pin",
		OraclePolicy:  "auth",
		FaultOrder:    1,
		PINSize:       4,
		GoldenOutcome: "no-match",
		Total:         32,
		Detected:      25,
		Succeeded:     2,
		Silent:        2,
		NoEffect:      3,
		CreatedAt:     now,
	}
}

func TestSQLite_Campaign_CreateFindAttach(t *testing.T) {
	ctx := context.Background()

	db, err := InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	defer CloseDB(db)

	repo := NewCampaignRepository(db)

	now := time.Now().UTC().Truncate(time.Second)
	c := newTestCampaign(now)
	id, err := repo.Create(ctx, c)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if id <= 0 {
		t.Fatalf("unexpected id %d", id)
	}

	got, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got == nil {
		t.Fatalf("FindByID returned nil")
	}
	if got.Scenario != c.Scenario || got.OraclePolicy != c.OraclePolicy || got.FaultOrder != c.FaultOrder {
		t.Fatalf("campaign mismatch: got %+v want %+v", got, c)
	}
	if got.Total != 32 || got.Detected != 25 || got.Succeeded != 2 || got.Silent != 2 || got.NoEffect != 3 {
		t.Fatalf("tallies mismatch: got %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt mismatch: got %v want %v", got.CreatedAt, now)
	}
	if got.Report != nil {
		t.Fatalf("expected no report yet, got %x", got.Report)
	}

	report := []byte{0xd2, 0x84, 0x43}
	if err := repo.AttachReport(ctx, id, report); err != nil {
		t.Fatalf("AttachReport error: %v", err)
	}
	got, err = repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if !bytes.Equal(got.Report, report) {
		t.Fatalf("Report mismatch: got %x want %x", got.Report, report)
	}
}

func TestSQLite_Campaign_NotFound(t *testing.T) {
	ctx := context.Background()

	db, err := InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	defer CloseDB(db)

	repo := NewCampaignRepository(db)

	got, err := repo.FindByID(ctx, 42)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}

	if err := repo.AttachReport(ctx, 42, []byte{0x01}); err == nil {
		t.Fatalf("expected error attaching to a missing campaign")
	}
}

func TestSQLite_Campaign_Delete(t *testing.T) {
	ctx := context.Background()

	db, err := InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	defer CloseDB(db)

	repo := NewCampaignRepository(db)
	runs := NewFaultRunRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	keep, err := repo.Create(ctx, newTestCampaign(now))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	drop, err := repo.Create(ctx, newTestCampaign(now))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	for _, id := range []int64{keep, drop} {
		batch := []*model.FaultRun{{Faults: []byte{0x80}, Outcome: "no-match", Effect: "no-effect", CreatedAt: now}}
		if err := runs.CreateBatch(ctx, id, batch); err != nil {
			t.Fatalf("CreateBatch error: %v", err)
		}
	}

	if err := repo.Delete(ctx, drop); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if got, err := repo.FindByID(ctx, drop); err != nil || got != nil {
		t.Fatalf("expected deleted campaign to be gone, got %+v, %v", got, err)
	}
	if left, err := runs.ListByCampaign(ctx, drop); err != nil || len(left) != 0 {
		t.Fatalf("expected no runs for deleted campaign, got %d, %v", len(left), err)
	}
	if left, err := runs.ListByCampaign(ctx, keep); err != nil || len(left) != 1 {
		t.Fatalf("expected other campaign untouched, got %d, %v", len(left), err)
	}
}

func TestSQLite_Campaign_ListRecent(t *testing.T) {
	ctx := context.Background()

	db, err := InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	defer CloseDB(db)

	repo := NewCampaignRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := repo.Create(ctx, newTestCampaign(now))
		if err != nil {
			t.Fatalf("Create error: %v", err)
		}
		ids = append(ids, id)
	}

	list, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 campaigns, got %d", len(list))
	}
	if list[0].ID != ids[2] || list[1].ID != ids[1] {
		t.Fatalf("unexpected order: %d, %d", list[0].ID, list[1].ID)
	}
}
