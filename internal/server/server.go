/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/kentakayama/verifypin-harness/internal/config"
	"github.com/kentakayama/verifypin-harness/internal/harness"
)

// Server wires the HTTP listener to a harness.
type Server struct {
	cfg     config.ServerConfig
	harness *harness.Harness
	handler *handler
	http    *http.Server
	logger  *log.Logger
}

// New constructs a Server using the provided configuration.
func New(ctx context.Context, cfg config.ServerConfig) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	hcfg := cfg.Harness
	if hcfg.Logger == nil {
		hcfg.Logger = logger
	}

	hs, err := harness.NewHarness(hcfg)
	if err != nil {
		return nil, err
	}
	if err = hs.Init(ctx); err != nil {
		return nil, err
	}

	h, err := newHandler(hs, logger)
	if err != nil {
		return nil, errors.Join(err, hs.Close())
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		cfg:     cfg,
		harness: hs,
		handler: h,
		http:    httpSrv,
		logger:  logger,
	}, nil
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("Run verifyPIN harness on %s (oracle %s).", s.http.Addr, s.harness.Policy())

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully takes down the HTTP server and closes the history.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	return errors.Join(err, s.harness.Close())
}
