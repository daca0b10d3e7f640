/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package service

import (
	"context"

	"github.com/kentakayama/verifypin-harness/internal/domain/model"
)

// CampaignRepository defines the interface for campaign persistence.
type CampaignRepository interface {
	Create(ctx context.Context, c *model.Campaign) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Campaign, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Campaign, error)
	AttachReport(ctx context.Context, id int64, report []byte) error
	Delete(ctx context.Context, id int64) error
}

// FaultRunRepository defines the interface for fault run persistence.
type FaultRunRepository interface {
	CreateBatch(ctx context.Context, campaignID int64, runs []*model.FaultRun) error
	ListByCampaign(ctx context.Context, campaignID int64) ([]*model.FaultRun, error)
	ListByEffect(ctx context.Context, campaignID int64, effect string) ([]*model.FaultRun, error)
}

// PublishedRecordRepository defines the interface for publication history.
type PublishedRecordRepository interface {
	Create(ctx context.Context, r *model.PublishedRecord) (int64, error)
	FindLatest(ctx context.Context) (*model.PublishedRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*model.PublishedRecord, error)
}
