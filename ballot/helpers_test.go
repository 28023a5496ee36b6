// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"testing"

	"github.com/danielhkuo/secret-ballot/db"
	"github.com/danielhkuo/secret-ballot/kvstore"
	_ "modernc.org/sqlite"
)

func newSQLiteStore(t *testing.T) kvstore.Store {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	kv := kvstore.NewSQLStore(conn, kvstore.DialectSQLite)
	t.Cleanup(func() { kv.Close() })
	return kv
}
