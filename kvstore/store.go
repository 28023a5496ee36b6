// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package kvstore persists JSON records by key in memory, in a SQL database
// or in Redis. Update and Delete are atomic for every process sharing the
// same database or Redis server.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

// Store is the backing store port. Values are JSON documents addressed by key.
//
// Get decodes the stored value into dst and reports whether the key existed.
// A missing key is not an error.
//
// Update is an atomic read-modify-write of one key, across every process
// sharing the store. dst is zeroed, filled from the stored value when found,
// then fn mutates it in place and the result is written back. If fn returns
// an error nothing is written and that error is returned unchanged. fn may
// run more than once and must not call the store.
//
// Delete removes all keys at once; either every key is gone or none is.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Update(ctx context.Context, key string, dst any, fn func(found bool) error) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

func encode(key string, value any) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return b, nil
}

func decode(key string, raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return nil
}

// zero resets the value dst points to, so a decode never merges into
// leftovers from an earlier attempt.
func zero(dst any) {
	v := reflect.ValueOf(dst)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v.Elem().SetZero()
	}
}
