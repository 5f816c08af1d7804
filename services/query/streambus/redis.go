// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package streambus

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs Client with a real Redis Streams connection.
type RedisClient struct {
	rdb redis.Cmdable
}

// NewRedisClient wraps an existing redis.Cmdable (a *redis.Client or
// *redis.ClusterClient) as a Client.
func NewRedisClient(rdb redis.Cmdable) *RedisClient {
	return &RedisClient{rdb: rdb}
}

// Get implements Client.
func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("streambus: get %s: %w", key, err)
	}
	return b, nil
}

// XRead implements Client. Block: 0 blocks forever, relying entirely on
// ctx cancellation (client disconnect, request timeout, server shutdown)
// to return.
func (c *RedisClient) XRead(ctx context.Context, key, cursor string) ([]Entry, error) {
	reply, err := c.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{key, cursor},
		Block:   0,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("streambus: xread %s: %w", key, err)
	}
	if len(reply) == 0 {
		return nil, nil
	}

	entries := make([]Entry, len(reply[0].Messages))
	for i, msg := range reply[0].Messages {
		fields := make(map[string]string, len(msg.Values))
		for k, v := range msg.Values {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("streambus: xread %s: field %q has type %T, want string", key, k, v)
			}
			fields[k] = s
		}
		entries[i] = Entry{ID: msg.ID, Fields: fields}
	}
	return entries, nil
}

// XLen implements Client.
func (c *RedisClient) XLen(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.XLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("streambus: xlen %s: %w", key, err)
	}
	return n, nil
}
