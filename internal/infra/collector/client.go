/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package collector

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/kentakayama/verifypin-harness/internal/config"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultUserAgent   = "vpharness/collector-client"
	reportContentType  = "application/cose; cose-type=\"cose-sign1\""
	reportsPath        = "/reports"
	maxErrorBodyLength = 1 << 20
)

// Client archives signed campaign reports at a remote collector.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
}

// NewClient returns nil, nil when no collector is configured.
func NewClient(cfg config.CollectorConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, nil
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse collector URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{}
	if base.Scheme == "https" {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: cfg.InsecureTLS}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Submit uploads one signed report and returns where the collector filed it.
func (c *Client) Submit(ctx context.Context, signed []byte) (string, error) {
	if len(signed) == 0 {
		return "", fmt.Errorf("refusing to submit empty report")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target, err := c.baseURL.Parse(reportsPath)
	if err != nil {
		return "", fmt.Errorf("build reports URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(signed))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", reportContentType)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		return "", fmt.Errorf("unexpected collector status %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	location := resp.Header.Get("Location")
	c.logger.Printf("report of %d bytes archived at collector %s (location %q)", len(signed), c.baseURL.Host, location)
	return location, nil
}
