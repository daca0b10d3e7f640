/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/kentakayama/verifypin-harness/internal/domain/model"
)

func TestSQLite_PublishedRecord_CreateAndLatest(t *testing.T) {
	ctx := context.Background()

	db, err := InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	defer CloseDB(db)

	repo := NewPublishedRecordRepository(db)

	latest, err := repo.FindLatest(ctx)
	if err != nil {
		t.Fatalf("FindLatest error: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected no record, got %+v", latest)
	}

	now := time.Now().UTC().Truncate(time.Second)
	first := &model.PublishedRecord{ResultCode: 1, Location: 0x80001234, Outcome: "no-match", OraclePolicy: "auth", PTC: 2, CreatedAt: now}
	second := &model.PublishedRecord{ResultCode: 2, Location: 0x80001234, Outcome: "match", OraclePolicy: "auth", Oracle: true, PTC: 3, CreatedAt: now}
	for _, r := range []*model.PublishedRecord{first, second} {
		if _, err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	latest, err = repo.FindLatest(ctx)
	if err != nil {
		t.Fatalf("FindLatest error: %v", err)
	}
	if latest.ResultCode != 2 || latest.Outcome != "match" || !latest.Oracle || latest.PTC != 3 {
		t.Fatalf("latest mismatch: %+v", latest)
	}
	if latest.Location != 0x80001234 {
		t.Fatalf("Location mismatch: %#x", latest.Location)
	}

	all, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent error: %v", err)
	}
	if len(all) != 2 || all[1].ResultCode != 1 {
		t.Fatalf("unexpected history: %+v", all)
	}
}
