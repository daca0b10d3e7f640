/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package fault

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/kentakayama/verifypin-harness/internal/infra/mmio"
	"github.com/kentakayama/verifypin-harness/internal/verifypin"
)

// Observation is what an external tester sees after one run.
type Observation struct {
	Faults  []verifypin.Point
	Applied int

	Outcome         verifypin.Outcome
	Record          verifypin.Record
	Countermeasures uint32
	Steps           int
	PTC             int8
	Authenticated   verifypin.Bool
	Oracle          bool
	Effect          Effect
}

// Execute performs one isolated run of sc: initialize, verify under inj,
// publish into a private memory, evaluate the oracle.
func Execute(sc Scenario, oracle verifypin.Oracle, inj verifypin.Injector) (Observation, error) {
	mem := mmio.NewMemory()
	st, err := verifypin.Initialize(verifypin.Params{
		PINSize:      len(sc.Reference),
		Reference:    sc.Reference,
		Candidate:    sc.Candidate,
		Sink:         mem,
		SentinelAddr: mmio.CountermeasureAddr,
	})
	if err != nil {
		return Observation{}, fmt.Errorf("initialize %s: %w", sc.Name, err)
	}
	st.PTC = verifypin.MaxTries - sc.SpentAttempts

	outcome := verifypin.Classify(verifypin.Verify(st, inj))
	pub := verifypin.NewPublisher(mem, mmio.PCLocator{}, mmio.ResultAddr, mmio.LocationAddr)
	rec, err := pub.Publish(st, outcome)
	if err != nil {
		return Observation{}, fmt.Errorf("publish %s: %w", sc.Name, err)
	}

	return Observation{
		Outcome:         outcome,
		Record:          rec,
		Countermeasures: st.Sentinel.Count(),
		Steps:           st.Steps,
		PTC:             st.PTC,
		Authenticated:   st.Authenticated,
		Oracle:          oracle.Check(st),
	}, nil
}

// Campaign exhaustively injects every combination of Order faults over the
// points a fault-free run of Scenario reaches.
type Campaign struct {
	Scenario Scenario
	Oracle   verifypin.Oracle
	Order    int
	Workers  int
	Logger   *log.Logger
}

// Result is the outcome of a campaign. Runs is ordered like the
// combinations of Points it was built from.
type Result struct {
	Scenario string
	Policy   verifypin.OraclePolicy
	Order    int
	Golden   Observation
	Points   []verifypin.Point
	Runs     []Observation
}

// Summary counts runs per effect. Every effect has an entry.
func (r *Result) Summary() map[Effect]int {
	out := make(map[Effect]int, len(Effects()))
	for _, e := range Effects() {
		out[e] = 0
	}
	for _, run := range r.Runs {
		out[run.Effect]++
	}
	return out
}

// Filter returns the runs with effect e.
func (r *Result) Filter(e Effect) []Observation {
	var out []Observation
	for _, run := range r.Runs {
		if run.Effect == e {
			out = append(out, run)
		}
	}
	return out
}

func (c Campaign) Run(ctx context.Context) (*Result, error) {
	if c.Order != 1 && c.Order != 2 {
		return nil, fmt.Errorf("%w: %d", ErrOrder, c.Order)
	}
	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := c.Workers
	if workers <= 0 {
		workers = 1
	}

	rec := &Recorder{}
	golden, err := Execute(c.Scenario, c.Oracle, rec)
	if err != nil {
		return nil, err
	}
	points := rec.Points()
	combos := Combinations(points, c.Order)
	logger.Printf("campaign %s: golden outcome %s, %d fault points, %d runs of order %d",
		c.Scenario.Name, golden.Outcome, len(points), len(combos), c.Order)

	runs := make([]Observation, len(combos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, combo := range combos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			inj := NewTargeted(combo...)
			obs, err := Execute(c.Scenario, c.Oracle, inj)
			if err != nil {
				return err
			}
			obs.Faults = combo
			obs.Applied = inj.Applied()
			obs.Effect = classify(golden, obs)
			runs[i] = obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Scenario: c.Scenario.Name,
		Policy:   c.Oracle.Policy(),
		Order:    c.Order,
		Golden:   golden,
		Points:   points,
		Runs:     runs,
	}
	for _, obs := range res.Filter(EffectSuccess) {
		logger.Printf("campaign %s: attack succeeds with %v", c.Scenario.Name, obs.Faults)
	}
	return res, nil
}

// Combinations returns every set of order distinct points, preserving the
// order points were reached in.
func Combinations(points []verifypin.Point, order int) [][]verifypin.Point {
	var out [][]verifypin.Point
	switch order {
	case 1:
		for _, p := range points {
			out = append(out, []verifypin.Point{p})
		}
	case 2:
		for i := range points {
			for j := i + 1; j < len(points); j++ {
				out = append(out, []verifypin.Point{points[i], points[j]})
			}
		}
	}
	return out
}
