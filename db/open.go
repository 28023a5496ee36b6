// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Open opens a pool for driverName ("postgres" or "sqlite") and waits up to
// 15 seconds for the database to answer a ping.
func Open(driverName, url string) (*sql.DB, error) {
	conn, err := sql.Open(driverName, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}

	if driverName == "sqlite" {
		// A single writer keeps SQLite (and :memory: databases) consistent.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(time.Hour)
	}

	deadline := time.Now().Add(15 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := conn.PingContext(ctx)
		cancel()
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			_ = conn.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	return conn, nil
}
