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
	"strconv"
	"sync"
)

// MemoryClient is an in-process Client backed by append-only slices,
// guarded by a mutex and a condition variable for blocking XRead. It is
// the test double for broker tests that need real blocking-read
// semantics without a Redis instance.
type MemoryClient struct {
	mu      sync.Mutex
	cond    *sync.Cond
	values  map[string][]byte
	streams map[string][]Entry
	closed  bool
}

// NewMemoryClient constructs an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	m := &MemoryClient{
		values:  make(map[string][]byte),
		streams: make(map[string][]Entry),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Set stores a value for Get, e.g. a process header at "<pid>/header.json".
func (m *MemoryClient) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Append adds an entry to the stream at key and wakes any blocked XRead.
func (m *MemoryClient) Append(key string, fields map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := strconv.Itoa(len(m.streams[key]) + 1)
	m.streams[key] = append(m.streams[key], Entry{ID: id, Fields: fields})
	m.cond.Broadcast()
}

// Close permanently shuts the client down, waking every blocked XRead
// across all keys. Unlike ctx cancellation, which only affects the one
// blocked call that owns it, Close is for tearing down the whole fake at
// the end of a test.
func (m *MemoryClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cond.Broadcast()
}

// Get implements Client.
func (m *MemoryClient) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// XRead implements Client, blocking until at least one entry exists past
// cursor, the client is closed, or ctx is cancelled. A cancelled ctx only
// unblocks this call; it does not affect other callers blocked on other
// requests, matching a real stream-bus client where cancellation is
// per-request.
func (m *MemoryClient) XRead(ctx context.Context, key, cursor string) ([]Entry, error) {
	// sync.Cond has no context-aware wait, so a watcher goroutine wakes
	// this call's Wait() on cancellation without touching shared state.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.cond.Broadcast()
			m.mu.Unlock()
		case <-done:
		}
	}()
	defer close(done)

	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		entries := entriesAfter(m.streams[key], cursor)
		if len(entries) > 0 {
			return entries, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m.closed {
			return nil, context.Canceled
		}
		m.cond.Wait()
	}
}

// XLen implements Client.
func (m *MemoryClient) XLen(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.streams[key])), nil
}

func entriesAfter(stream []Entry, cursor string) []Entry {
	if cursor == "0" || cursor == "" {
		return stream
	}
	for i, e := range stream {
		if e.ID == cursor {
			return stream[i+1:]
		}
	}
	return nil
}
