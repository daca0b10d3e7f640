/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kentakayama/verifypin-harness/internal/domain/model"
)

// PublishedRecordRepository keeps the history of the result cells.
type PublishedRecordRepository struct {
	db *sql.DB
}

func NewPublishedRecordRepository(db *sql.DB) *PublishedRecordRepository {
	return &PublishedRecordRepository{db: db}
}

// Create inserts a new record and returns the inserted id.
func (r *PublishedRecordRepository) Create(ctx context.Context, rec *model.PublishedRecord) (int64, error) {
	const q = `
		INSERT INTO published_records (result_code, location, outcome, oracle_policy, oracle,
			countermeasures, ptc, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, q, rec.ResultCode, rec.Location, rec.Outcome, rec.OraclePolicy, rec.Oracle,
		rec.Countermeasures, rec.PTC, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert published record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindLatest returns the most recent record, or nil when nothing was published.
func (r *PublishedRecordRepository) FindLatest(ctx context.Context) (*model.PublishedRecord, error) {
	recs, err := r.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// ListRecent returns up to limit records, newest first.
func (r *PublishedRecordRepository) ListRecent(ctx context.Context, limit int) ([]*model.PublishedRecord, error) {
	const q = `
		SELECT id, result_code, location, outcome, oracle_policy, oracle, countermeasures, ptc, created_at
		FROM published_records
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query published records: %w", err)
	}
	defer rows.Close()

	var out []*model.PublishedRecord
	for rows.Next() {
		var rec model.PublishedRecord
		if err := rows.Scan(&rec.ID, &rec.ResultCode, &rec.Location, &rec.Outcome, &rec.OraclePolicy, &rec.Oracle,
			&rec.Countermeasures, &rec.PTC, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan published record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
