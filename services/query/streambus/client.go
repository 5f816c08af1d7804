// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

// Package streambus abstracts the remote append-only store the result
// broker reads process headers and worker output from. The vocabulary
// (get/xread/xlen) is deliberately the Redis Streams command set, since
// that is the transport the real system runs on; a Client is anything
// that can stand in for it.
package streambus

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("streambus: key not found")

// Entry is one appended stream record: an opaque, monotonically
// increasing ID and a flat field map. Workers write either a result tile
// under an arbitrary field name, or a single error message under the
// field name "error".
type Entry struct {
	ID     string
	Fields map[string]string
}

// Client is the stream-bus surface the planner's callers and the result
// broker depend on.
type Client interface {
	// Get returns the bytes stored at key, or ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// XRead blocks until at least one entry after cursor is available, or
	// ctx is cancelled. cursor "0" reads from the start of the stream.
	XRead(ctx context.Context, key, cursor string) ([]Entry, error)
	// XLen returns the number of entries currently in the stream at key.
	XLen(ctx context.Context, key string) (int64, error)
}
