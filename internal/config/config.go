/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package config

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kentakayama/verifypin-harness/internal/infra/mmio"
	"github.com/kentakayama/verifypin-harness/internal/verifypin"
)

const (
	EnvPINSize        = "VPH_PIN_SIZE"
	EnvReferencePIN   = "VPH_REFERENCE_PIN"
	EnvCandidatePIN   = "VPH_CANDIDATE_PIN"
	EnvDBPath         = "VPH_DB_PATH"
	EnvSigningKeyPath = "VPH_SIGNING_KEY_PATH"
	EnvWorkers        = "VPH_WORKERS"
	EnvAddr           = "VPH_ADDR"
	EnvCollectorURL   = "VPH_COLLECTOR_URL"
	EnvCollectorTLS   = "VPH_COLLECTOR_INSECURE_TLS"

	DefaultDBPath  = "vpharness.db"
	DefaultAddr    = "127.0.0.1:8080"
	DefaultWorkers = 4
)

// HarnessConfig captures everything fixed for the lifetime of a harness.
// OraclePolicy defaults to the build-selected DefaultOraclePolicy and is
// not read from the environment.
type HarnessConfig struct {
	PINSize      int
	ReferencePIN []byte
	CandidatePIN []byte
	OraclePolicy verifypin.OraclePolicy

	ResultAddr         uint32
	LocationAddr       uint32
	CountermeasureAddr uint32

	DBPath         string
	SigningKeyPath string
	Workers        int
	Logger         *log.Logger
}

// ServerConfig captures the tunables required to start the observation server.
type ServerConfig struct {
	Addr    string
	Harness HarnessConfig
	Logger  *log.Logger
}

// CollectorConfig points at a remote service that archives signed reports.
type CollectorConfig struct {
	BaseURL     string
	InsecureTLS bool
	Timeout     time.Duration
	Logger      *log.Logger
}

// DefaultHarness returns the reference scenario: card PIN 0x05030201 and
// user PIN 0x04030201, which differ in the last byte.
func DefaultHarness() HarnessConfig {
	return HarnessConfig{
		PINSize:            verifypin.DefaultPINSize,
		ReferencePIN:       verifypin.PINFromWord(verifypin.ReferencePINWord, verifypin.DefaultPINSize),
		CandidatePIN:       verifypin.PINFromWord(verifypin.CandidatePINWord, verifypin.DefaultPINSize),
		OraclePolicy:       DefaultOraclePolicy,
		ResultAddr:         mmio.ResultAddr,
		LocationAddr:       mmio.LocationAddr,
		CountermeasureAddr: mmio.CountermeasureAddr,
		DBPath:             DefaultDBPath,
		Workers:            DefaultWorkers,
	}
}

// LoadFromEnv overlays environment variables on DefaultHarness and validates.
func LoadFromEnv() (HarnessConfig, error) {
	cfg := DefaultHarness()
	var err error
	if cfg.PINSize, err = intEnvOrDefault(EnvPINSize, cfg.PINSize); err != nil {
		return HarnessConfig{}, err
	}
	if cfg.PINSize <= 0 || cfg.PINSize > verifypin.MaxPINSize {
		return HarnessConfig{}, fmt.Errorf("invalid %s: must be in range 1..%d", EnvPINSize, verifypin.MaxPINSize)
	}
	if cfg.Workers, err = intEnvOrDefault(EnvWorkers, cfg.Workers); err != nil {
		return HarnessConfig{}, err
	}
	cfg.DBPath = envOrDefault(EnvDBPath, cfg.DBPath)
	cfg.SigningKeyPath = strings.TrimSpace(os.Getenv(EnvSigningKeyPath))

	// default PINs follow the configured size
	cfg.ReferencePIN = verifypin.PINFromWord(verifypin.ReferencePINWord, cfg.PINSize)
	cfg.CandidatePIN = verifypin.PINFromWord(verifypin.CandidatePINWord, cfg.PINSize)

	if cfg.ReferencePIN, err = hexEnvOrDefault(EnvReferencePIN, cfg.ReferencePIN); err != nil {
		return HarnessConfig{}, err
	}
	if cfg.CandidatePIN, err = hexEnvOrDefault(EnvCandidatePIN, cfg.CandidatePIN); err != nil {
		return HarnessConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return HarnessConfig{}, err
	}
	return cfg, nil
}

// LoadServerFromEnv returns the server settings around LoadFromEnv.
func LoadServerFromEnv() (ServerConfig, error) {
	h, err := LoadFromEnv()
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		Addr:    envOrDefault(EnvAddr, DefaultAddr),
		Harness: h,
	}, nil
}

// LoadCollectorFromEnv returns the collector settings; BaseURL is empty
// when no collector is configured.
func LoadCollectorFromEnv() CollectorConfig {
	return CollectorConfig{
		BaseURL:     strings.TrimSpace(os.Getenv(EnvCollectorURL)),
		InsecureTLS: boolEnvOrDefault(EnvCollectorTLS, false),
	}
}

// Validate checks that the configuration is coherent. A PIN length that
// disagrees with PINSize is reported here, before any verification.
func (c HarnessConfig) Validate() error {
	if c.PINSize <= 0 || c.PINSize > verifypin.MaxPINSize {
		return fmt.Errorf("invalid %s: must be in range 1..%d", EnvPINSize, verifypin.MaxPINSize)
	}
	if len(c.ReferencePIN) != c.PINSize {
		return fmt.Errorf("invalid %s: %d bytes, PIN size is %d", EnvReferencePIN, len(c.ReferencePIN), c.PINSize)
	}
	if len(c.CandidatePIN) != c.PINSize {
		return fmt.Errorf("invalid %s: %d bytes, PIN size is %d", EnvCandidatePIN, len(c.CandidatePIN), c.PINSize)
	}
	if _, err := verifypin.NewOracle(c.OraclePolicy); err != nil {
		return fmt.Errorf("invalid oracle policy: %w", err)
	}
	for _, addr := range []uint32{c.ResultAddr, c.LocationAddr, c.CountermeasureAddr} {
		if addr%mmio.WordSize != 0 {
			return fmt.Errorf("invalid address %#x: not word aligned", addr)
		}
	}
	if c.LocationAddr != c.ResultAddr+mmio.WordSize {
		return fmt.Errorf("invalid location address %#x: must follow result address %#x", c.LocationAddr, c.ResultAddr)
	}
	if c.CountermeasureAddr == c.ResultAddr || c.CountermeasureAddr == c.LocationAddr {
		return fmt.Errorf("invalid countermeasure address %#x: overlaps the published record", c.CountermeasureAddr)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("invalid %s: must be > 0", EnvWorkers)
	}
	if c.DBPath == "" {
		return fmt.Errorf("invalid %s: must not be empty", EnvDBPath)
	}
	return nil
}

// Params returns the core parameters for one run writing to sink.
func (c HarnessConfig) Params(sink verifypin.WordWriter) verifypin.Params {
	return verifypin.Params{
		PINSize:      c.PINSize,
		Reference:    bytes.Clone(c.ReferencePIN),
		Candidate:    bytes.Clone(c.CandidatePIN),
		Sink:         sink,
		SentinelAddr: c.CountermeasureAddr,
	}
}

// LoadSigningKey loads the ECDSA P-256 key that signs campaign reports.
// Without a configured path an ephemeral key is generated.
func LoadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	if path == "" {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("ephemeral key generation failed: %w", err)
		}
		return key, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading signing key %q: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("signing key %q: no PEM block found", path)
	}

	var key *ecdsa.PrivateKey
	switch block.Type {
	case "EC PRIVATE KEY":
		key, err = x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("signing key %q: %w", path, err)
		}
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("signing key %q: %w", path, err)
		}
		var ok bool
		if key, ok = parsed.(*ecdsa.PrivateKey); !ok {
			return nil, fmt.Errorf("signing key %q: must be ECDSA P-256", path)
		}
	default:
		return nil, fmt.Errorf("signing key %q: unsupported PEM type %q", path, block.Type)
	}
	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("signing key %q: must be ECDSA P-256, got %s", path, key.Curve.Params().Name)
	}
	return key, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnvOrDefault(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnvOrDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func hexEnvOrDefault(key string, fallback []byte) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
