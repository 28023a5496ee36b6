// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens SQL backing stores and creates their schema.

# Opening

Open wraps sql.Open with pool settings and a ping retry loop:

	conn, err := db.Open("postgres", cfg.DatabaseURL)

The driver must be registered by the caller (main imports lib/pq and
modernc.org/sqlite). SQLite pools are limited to one connection.

# Schema Creation

CreateSchema initializes the record table:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - kv_record: one row per backing store record (record_key, record_value
    as JSON text, updated_at)

The application keeps four records: polls, polls_in_progress, polls_max_id,
poll_user_votes.
*/
package db
