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

// FaultRunRepository handles fault run persistence.
type FaultRunRepository struct {
	db *sql.DB
}

func NewFaultRunRepository(db *sql.DB) *FaultRunRepository {
	return &FaultRunRepository{db: db}
}

// CreateBatch inserts all runs of a campaign in one transaction and fills
// in their IDs.
func (r *FaultRunRepository) CreateBatch(ctx context.Context, campaignID int64, runs []*model.FaultRun) error {
	const q = `
		INSERT INTO fault_runs (campaign_id, faults, applied, outcome, result_code, countermeasures,
			steps, ptc, authenticated, oracle, effect, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fault run batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare fault run insert: %w", err)
	}
	defer stmt.Close()

	for _, run := range runs {
		run.CampaignID = campaignID
		res, err := stmt.ExecContext(ctx, campaignID, run.Faults, run.Applied, run.Outcome, run.ResultCode,
			run.Countermeasures, run.Steps, run.PTC, run.Authenticated, run.Oracle, run.Effect, run.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert fault run: %w", err)
		}
		if run.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fault run batch: %w", err)
	}
	return nil
}

// ListByCampaign returns the runs of a campaign in insertion order.
func (r *FaultRunRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]*model.FaultRun, error) {
	const q = `
		SELECT id, campaign_id, faults, applied, outcome, result_code, countermeasures,
			steps, ptc, authenticated, oracle, effect, created_at
		FROM fault_runs
		WHERE campaign_id = ?
		ORDER BY id
	`
	return r.query(ctx, q, campaignID)
}

// ListByEffect returns the runs of a campaign that had the given effect.
func (r *FaultRunRepository) ListByEffect(ctx context.Context, campaignID int64, effect string) ([]*model.FaultRun, error) {
	const q = `
		SELECT id, campaign_id, faults, applied, outcome, result_code, countermeasures,
			steps, ptc, authenticated, oracle, effect, created_at
		FROM fault_runs
		WHERE campaign_id = ? AND effect = ?
		ORDER BY id
	`
	return r.query(ctx, q, campaignID, effect)
}

func (r *FaultRunRepository) query(ctx context.Context, q string, args ...any) ([]*model.FaultRun, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query fault runs: %w", err)
	}
	defer rows.Close()

	var out []*model.FaultRun
	for rows.Next() {
		var f model.FaultRun
		if err := rows.Scan(&f.ID, &f.CampaignID, &f.Faults, &f.Applied, &f.Outcome, &f.ResultCode,
			&f.Countermeasures, &f.Steps, &f.PTC, &f.Authenticated, &f.Oracle, &f.Effect, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fault run: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
