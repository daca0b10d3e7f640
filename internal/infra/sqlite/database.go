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

	_ "github.com/mattn/go-sqlite3"
)

// InitDB initializes the SQLite database and creates necessary tables.
func InitDB(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// An in-memory database lives per connection; one connection keeps
	// every caller on the same one.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(2)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %s: %w", p, err)
		}
	}

	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// createSchema creates all necessary database tables.
func createSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	PRAGMA foreign_keys = ON;

	-- Fault campaigns with their per-effect tallies
	CREATE TABLE IF NOT EXISTS campaigns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scenario TEXT NOT NULL,
		oracle_policy TEXT NOT NULL,
		fault_order INTEGER NOT NULL,
		pin_size INTEGER NOT NULL,
		golden_outcome TEXT NOT NULL,
		total INTEGER NOT NULL DEFAULT 0,
		detected INTEGER NOT NULL DEFAULT 0,
		succeeded INTEGER NOT NULL DEFAULT 0,
		silent INTEGER NOT NULL DEFAULT 0,
		no_effect INTEGER NOT NULL DEFAULT 0,
		report BLOB,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_campaigns_scenario ON campaigns(scenario);

	-- Individual faulted runs
	CREATE TABLE IF NOT EXISTS fault_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		campaign_id INTEGER NOT NULL,
		faults BLOB NOT NULL,
		applied INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		result_code INTEGER NOT NULL,
		countermeasures INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		ptc INTEGER NOT NULL,
		authenticated INTEGER NOT NULL,
		oracle BOOLEAN NOT NULL,
		effect TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (campaign_id) REFERENCES campaigns(id) ON DELETE CASCADE
	);

	-- Expecting queries filtering by campaign and effect
	CREATE INDEX IF NOT EXISTS idx_fault_runs_campaign_effect ON fault_runs(campaign_id, effect);

	-- Every publication to the result cells
	CREATE TABLE IF NOT EXISTS published_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		result_code INTEGER NOT NULL,
		location INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		oracle_policy TEXT NOT NULL,
		oracle BOOLEAN NOT NULL,
		countermeasures INTEGER NOT NULL,
		ptc INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CloseDB closes the database connection.
func CloseDB(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
