// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"context"
	"sync"
)

// Memory keeps encoded records in a map. Values are stored as JSON so callers
// never share memory with the store.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.records[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := decode(key, raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Update holds the write lock while fn runs.
func (m *Memory) Update(_ context.Context, key string, dst any, fn func(found bool) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	zero(dst)
	raw, found := m.records[key]
	if found {
		if err := decode(key, raw, dst); err != nil {
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
	m.records[key] = out
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.records, key)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	return nil
}
