/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Shutdown signal received: %s", sig)
		cancel()
	}()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Fatalf("vpharness: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "vpharness",
		Short:         "Fault-injection harness for a hardened PIN verification",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCommand(),
		newCampaignCommand(),
		newHistoryCommand(),
		newRunsCommand(),
		newServeCommand(),
		newShowCommand(),
	)
	return root
}
