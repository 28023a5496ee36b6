// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects placeholder syntax for SQLStore queries.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQLStore keeps records in the kv_record table (see db.CreateSchema).
// The store owns db and closes it on Close.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// bind rewrites $n placeholders for drivers that only understand ?
func (s *SQLStore) bind(query string) string {
	if s.dialect != DialectSQLite {
		return query
	}
	out := make([]byte, 0, len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			out = append(out, '?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

func (s *SQLStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.bind(`
		SELECT record_value FROM kv_record WHERE record_key = $1
	`), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if err := decode(key, []byte(raw), dst); err != nil {
		return false, err
	}
	return true, nil
}

const upsertRecord = `
	INSERT INTO kv_record (record_key, record_value, updated_at)
	VALUES ($1, $2, CURRENT_TIMESTAMP)
	ON CONFLICT (record_key) DO UPDATE
	SET record_value = excluded.record_value,
	    updated_at = excluded.updated_at
`

// Update runs in a transaction. On postgres a transaction-scoped advisory
// lock on the key serializes writers, including the first write of a key
// that has no row yet. SQLite pools hold one connection, so transactions
// already run one at a time.
func (s *SQLStore) Update(ctx context.Context, key string, dst any, fn func(found bool) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update of %q: %w", key, err)
	}
	defer tx.Rollback()

	if s.dialect == DialectPostgres {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("failed to lock %q: %w", key, err)
		}
	}

	zero(dst)
	var raw string
	found := true
	err = tx.QueryRowContext(ctx, s.bind(`
		SELECT record_value FROM kv_record WHERE record_key = $1
	`), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		found = false
	} else if err != nil {
		return fmt.Errorf("failed to read %q: %w", key, err)
	}
	if found {
		if err := decode(key, []byte(raw), dst); err != nil {
			return err
		}
	}

	if err := fn(found); err != nil {
		return err
	}

	out, err := encode(key, dst)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.bind(upsertRecord), key, string(out)); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update of %q: %w", key, err)
	}
	return nil
}

// Delete removes every key in one statement.
func (s *SQLStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, key := range keys {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = key
	}
	query := `DELETE FROM kv_record WHERE record_key IN (` + strings.Join(placeholders, ", ") + `)`
	if _, err := s.db.ExecContext(ctx, s.bind(query), args...); err != nil {
		return fmt.Errorf("failed to delete %q: %w", keys, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
