/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/kentakayama/verifypin-harness/internal/config"
	"github.com/kentakayama/verifypin-harness/internal/fault"
	"github.com/kentakayama/verifypin-harness/internal/harness"
	"github.com/kentakayama/verifypin-harness/internal/infra/collector"
	"github.com/kentakayama/verifypin-harness/internal/report"
	"github.com/kentakayama/verifypin-harness/internal/server"
	"github.com/kentakayama/verifypin-harness/internal/util"
	"github.com/kentakayama/verifypin-harness/internal/verifypin"
)

const shutdownTimeout = 10 * time.Second

func openHarness(ctx context.Context) (*harness.Harness, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	h, err := harness.NewHarness(cfg)
	if err != nil {
		return nil, err
	}
	if err := h.Init(ctx); err != nil {
		return nil, errors.Join(err, h.Close())
	}
	return h, nil
}

func newRunCommand() *cobra.Command {
	var attempts int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Initialize, verify and publish, once or over several attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if attempts <= 0 {
				return fmt.Errorf("--attempts must be > 0")
			}
			h, err := openHarness(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			for i := 1; i <= attempts; i++ {
				var res *harness.RunResult
				if i == 1 {
					res, err = h.RunOnce(cmd.Context())
				} else {
					res, err = h.Attempt(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "attempt %d: result=%d (%s) location=%#08x ptc=%d countermeasures=%d oracle[%s]=%t\n",
					i, res.Record.Code, res.Outcome, res.Record.Location, res.PTC, res.Countermeasures, h.Policy(), res.Oracle)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&attempts, "attempts", 1, "number of attempts sharing one attempt counter")
	return cmd
}

func newCampaignCommand() *cobra.Command {
	var (
		scenario string
		order    int
		outPath  string
		submit   bool
	)
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Run an exhaustive fault campaign and emit a signed report",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHarness(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			res, err := h.RunCampaign(cmd.Context(), scenario, order)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "campaign #%d: scenario=%s order=%d oracle=%s golden=%s points=%d runs=%d\n",
				res.ID, res.Report.Scenario, res.Report.Order, res.Report.Policy,
				res.Result.Golden.Outcome, res.Report.Points, len(res.Result.Runs))
			for _, e := range fault.Effects() {
				fmt.Fprintf(out, "  %-18s %d\n", e, res.Report.Summary[e.String()])
			}
			for _, faults := range res.Report.Successes {
				fmt.Fprintf(out, "  attack succeeds with %v\n", faults)
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, res.Signed, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(out, "signed report written to %s\n", outPath)
			}

			if submit {
				client, err := collector.NewClient(config.LoadCollectorFromEnv())
				if err != nil {
					return err
				}
				if client == nil {
					return fmt.Errorf("--submit needs %s", config.EnvCollectorURL)
				}
				loc, err := client.Submit(cmd.Context(), res.Signed)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "report submitted: %s\n", loc)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scenario, "scenario", fault.ScenarioWrongPIN,
		fmt.Sprintf("scenario to attack: %v or %q", fault.PresetNames(), harness.ScenarioConfigured))
	cmd.Flags().IntVar(&order, "order", 1, "number of simultaneous faults (1 or 2)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "file to write the COSE_Sign1 report to")
	cmd.Flags().BoolVar(&submit, "submit", false, "upload the signed report to the configured collector")
	return cmd
}

func newHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored publications and campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHarness(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			records, err := h.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Fprintf(out, "record #%d %s result=%d (%s) location=%#08x ptc=%d oracle[%s]=%t\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), r.ResultCode, r.Outcome, r.Location, r.PTC, r.OraclePolicy, r.Oracle)
			}

			campaigns, err := h.Campaigns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, c := range campaigns {
				fmt.Fprintf(out, "campaign #%d %s %s order=%d runs=%d detected=%d succeeded=%d silent=%d\n",
					c.ID, c.CreatedAt.Format(time.RFC3339), c.Scenario, c.FaultOrder, c.Total, c.Detected, c.Succeeded, c.Silent)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries per kind")
	return cmd
}

func newRunsCommand() *cobra.Command {
	var effect string
	cmd := &cobra.Command{
		Use:   "runs <campaign-id>",
		Short: "List the stored faulted runs of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid campaign id %q", args[0])
			}
			h, err := openHarness(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			runs, err := h.FaultRuns(cmd.Context(), id, effect)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range runs {
				var points []verifypin.Point
				if err := cbor.Unmarshal(r.Faults, &points); err != nil {
					return fmt.Errorf("run #%d: decode faults: %w", r.ID, err)
				}
				fmt.Fprintf(out, "run #%d %-18s %v applied=%d outcome=%s result=%d ptc=%d countermeasures=%d\n",
					r.ID, r.Effect, points, r.Applied, r.Outcome, r.ResultCode, r.PTC, r.Countermeasures)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&effect, "effect", "", "only runs with this effect (no-effect, detected, attack-success, silent-corruption)")
	return cmd
}

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the harness to an external tester over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerFromEnv()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			srv, err := server.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return errors.Join(srv.Shutdown(ctx), <-errCh)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+config.DefaultAddr+")")
	return cmd
}

func newShowCommand() *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "show <report>",
		Short: "Print a signed campaign report, verifying it when a key is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			payload, err := report.Payload(raw)
			if err != nil {
				return err
			}
			if keyPath != "" {
				key, err := config.LoadSigningKey(keyPath)
				if err != nil {
					return err
				}
				if _, err := report.Verify(&key.PublicKey, raw); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signature: verified")
			}

			text, err := util.RenderCBOR(payload)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "PEM signing key whose public half verifies the report")
	return cmd
}
