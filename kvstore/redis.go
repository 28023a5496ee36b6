// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "secret-ballot:"
	maxUpdateRetries = 100
)

type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the server at url (redis://...) and pings it.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}

	c := redis.NewClient(opts)

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	return &RedisStore{client: c}, nil
}

func (rs *RedisStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := rs.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error reading %q from redis: %w", key, err)
	}
	if err := decode(key, raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Update uses optimistic locking: the key is WATCHed and the write runs in
// MULTI/EXEC, retried when another client changed the key in between.
func (rs *RedisStore) Update(ctx context.Context, key string, dst any, fn func(found bool) error) error {
	k := redisKeyPrefix + key

	txf := func(tx *redis.Tx) error {
		zero(dst)
		raw, err := tx.Get(ctx, k).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			found = false
		} else if err != nil {
			return fmt.Errorf("error reading %q from redis: %w", key, err)
		}
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
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, out, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := rs.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("error updating %q in redis: gave up after %d conflicting writes", key, maxUpdateRetries)
}

// Delete removes all keys with a single DEL, which redis applies atomically.
func (rs *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = redisKeyPrefix + key
	}
	if err := rs.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("error deleting %q from redis: %w", keys, err)
	}
	return nil
}

func (rs *RedisStore) Close() error {
	if err := rs.client.Close(); err != nil {
		return fmt.Errorf("error closing redis client: %w", err)
	}
	return nil
}
