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

// CampaignRepository handles campaign persistence.
type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `id, scenario, oracle_policy, fault_order, pin_size, golden_outcome,
		total, detected, succeeded, silent, no_effect, report, created_at`

// Create inserts a new campaign and returns the inserted id.
func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) (int64, error) {
	const q = `
		INSERT INTO campaigns (scenario, oracle_policy, fault_order, pin_size, golden_outcome,
			total, detected, succeeded, silent, no_effect, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, q, c.Scenario, c.OraclePolicy, c.FaultOrder, c.PINSize, c.GoldenOutcome,
		c.Total, c.Detected, c.Succeeded, c.Silent, c.NoEffect, c.Report, c.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert campaign: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByID returns a campaign by its ID, or nil when there is none.
func (r *CampaignRepository) FindByID(ctx context.Context, id int64) (*model.Campaign, error) {
	q := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = ? LIMIT 1`
	c, err := scanCampaign(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	return c, nil
}

// ListRecent returns up to limit campaigns, newest first.
func (r *CampaignRepository) ListRecent(ctx context.Context, limit int) ([]*model.Campaign, error) {
	q := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	var out []*model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AttachReport stores the signed report of a campaign.
func (r *CampaignRepository) AttachReport(ctx context.Context, id int64, report []byte) error {
	const q = `
		UPDATE campaigns
		SET report = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, q, report, id)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update campaign %d: no such campaign", id)
	}
	return nil
}

// Delete removes a campaign together with its runs.
func (r *CampaignRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin campaign delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fault_runs WHERE campaign_id = ?`, id); err != nil {
		return fmt.Errorf("delete fault runs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	if err := row.Scan(&c.ID, &c.Scenario, &c.OraclePolicy, &c.FaultOrder, &c.PINSize, &c.GoldenOutcome,
		&c.Total, &c.Detected, &c.Succeeded, &c.Silent, &c.NoEffect, &c.Report, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
