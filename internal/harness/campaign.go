/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/kentakayama/verifypin-harness/internal/domain"
	"github.com/kentakayama/verifypin-harness/internal/domain/model"
	"github.com/kentakayama/verifypin-harness/internal/fault"
	"github.com/kentakayama/verifypin-harness/internal/report"
)

// ScenarioConfigured attacks the buffers of the harness configuration
// instead of a preset.
const ScenarioConfigured = "configured"

// CampaignOutcome is a finished, stored and signed campaign.
type CampaignOutcome struct {
	ID     int64
	Result *fault.Result
	Report report.Report
	Signed []byte
}

// Scenario resolves a scenario name against the presets and the
// configured buffers.
func (h *Harness) Scenario(name string) (fault.Scenario, error) {
	if name == ScenarioConfigured {
		return fault.Scenario{
			Name:      ScenarioConfigured,
			Reference: h.cfg.ReferencePIN,
			Candidate: h.cfg.CandidatePIN,
		}, nil
	}
	return fault.LookupScenario(name, h.cfg.PINSize)
}

// RunCampaign runs an exhaustive campaign of the given order, stores it
// with every run and attaches the signed report.
func (h *Harness) RunCampaign(ctx context.Context, scenario string, order int) (*CampaignOutcome, error) {
	if h.db == nil {
		return nil, ErrNotInitialized
	}
	sc, err := h.Scenario(scenario)
	if err != nil {
		return nil, err
	}

	res, err := fault.Campaign{
		Scenario: sc,
		Oracle:   h.oracle,
		Order:    order,
		Workers:  h.cfg.Workers,
		Logger:   h.logger,
	}.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCampaign, err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	summary := res.Summary()
	id, err := h.campaigns.Create(ctx, &model.Campaign{
		Scenario:      res.Scenario,
		OraclePolicy:  res.Policy.String(),
		FaultOrder:    res.Order,
		PINSize:       len(sc.Reference),
		GoldenOutcome: res.Golden.Outcome.String(),
		Total:         len(res.Runs),
		Detected:      summary[fault.EffectDetected],
		Succeeded:     summary[fault.EffectSuccess],
		Silent:        summary[fault.EffectSilent],
		NoEffect:      summary[fault.EffectNone],
		CreatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("store campaign: %w", err)
	}

	runs := make([]*model.FaultRun, 0, len(res.Runs))
	for _, obs := range res.Runs {
		faults, err := cbor.Marshal(obs.Faults)
		if err != nil {
			return nil, fmt.Errorf("encode faults %v: %w", obs.Faults, err)
		}
		runs = append(runs, &model.FaultRun{
			Faults:          faults,
			Applied:         obs.Applied,
			Outcome:         obs.Outcome.String(),
			ResultCode:      obs.Record.Code,
			Countermeasures: obs.Countermeasures,
			Steps:           obs.Steps,
			PTC:             int(obs.PTC),
			Authenticated:   byte(obs.Authenticated),
			Oracle:          obs.Oracle,
			Effect:          obs.Effect.String(),
			CreatedAt:       now,
		})
	}
	if err := h.runs.CreateBatch(ctx, id, runs); err != nil {
		err = fmt.Errorf("store fault runs: %w", err)
		if derr := h.campaigns.Delete(ctx, id); derr != nil {
			err = errors.Join(err, fmt.Errorf("drop campaign %d: %w", id, derr))
		}
		return nil, err
	}

	rep := report.FromResult(res, now)
	signed, err := h.signer.Sign(rep)
	if err != nil {
		return nil, err
	}
	if err := h.campaigns.AttachReport(ctx, id, signed); err != nil {
		return nil, fmt.Errorf("attach report: %w", err)
	}

	h.logger.Printf("campaign #%d %s order %d: %d runs, %d detected, %d succeeded, %d silent",
		id, res.Scenario, res.Order, len(res.Runs),
		summary[fault.EffectDetected], summary[fault.EffectSuccess], summary[fault.EffectSilent])

	return &CampaignOutcome{ID: id, Result: res, Report: rep, Signed: signed}, nil
}

// Campaign returns a stored campaign.
func (h *Harness) Campaign(ctx context.Context, id int64) (*model.Campaign, error) {
	if h.db == nil {
		return nil, ErrNotInitialized
	}
	c, err := h.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// FaultRuns returns the stored runs of a campaign, optionally only those
// classified as effect. An unknown campaign is domain.ErrNotFound.
func (h *Harness) FaultRuns(ctx context.Context, id int64, effect string) ([]*model.FaultRun, error) {
	if effect != "" {
		if _, err := fault.ParseEffect(effect); err != nil {
			return nil, err
		}
	}
	if _, err := h.Campaign(ctx, id); err != nil {
		return nil, err
	}
	if effect == "" {
		return h.runs.ListByCampaign(ctx, id)
	}
	return h.runs.ListByEffect(ctx, id, effect)
}

// Campaigns returns up to limit stored campaigns, newest first.
func (h *Harness) Campaigns(ctx context.Context, limit int) ([]*model.Campaign, error) {
	if h.db == nil {
		return nil, ErrNotInitialized
	}
	return h.campaigns.ListRecent(ctx, limit)
}
