// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
)

// discoveryDocument is the subset of an OpenID Connect discovery document
// this gate needs: the URL of the provider's current signing key set.
type discoveryDocument struct {
	JWKSURI string `json:"jwks_uri"`
}

// JWKSCache fetches and caches a provider's rotating public key set via
// OpenID Connect discovery. An unknown kid triggers one synchronous
// refresh before being reported as unknown, so a freshly rotated key is
// picked up without waiting for the TTL to lapse.
type JWKSCache struct {
	discoveryURL string
	ttl          time.Duration
	httpClient   *http.Client

	mu        sync.RWMutex
	set       jose.JSONWebKeySet
	fetchedAt time.Time
}

// NewJWKSCache constructs a cache that refreshes from discoveryURL at
// most once per ttl (plus the one-shot unknown-kid refresh above).
func NewJWKSCache(discoveryURL string, ttl time.Duration) *JWKSCache {
	return &JWKSCache{
		discoveryURL: discoveryURL,
		ttl:          ttl,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup returns the key identified by kid, refreshing the cache first
// if it is stale or the kid isn't present.
func (c *JWKSCache) Lookup(ctx context.Context, kid string) (*jose.JSONWebKey, error) {
	if key, ok := c.cached(kid); ok {
		return key, nil
	}
	if err := c.refresh(ctx); err != nil {
		return nil, fmt.Errorf("middleware: refreshing JWKS: %w", err)
	}
	if key, ok := c.cached(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("middleware: key not recognized; id = %s", kid)
}

func (c *JWKSCache) cached(kid string) (*jose.JSONWebKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if time.Since(c.fetchedAt) > c.ttl {
		return nil, false
	}
	keys := c.set.Key(kid)
	if len(keys) == 0 {
		return nil, false
	}
	return &keys[0], true
}

func (c *JWKSCache) refresh(ctx context.Context) error {
	var doc discoveryDocument
	if err := c.getJSON(ctx, c.discoveryURL, &doc); err != nil {
		return fmt.Errorf("fetching discovery document: %w", err)
	}
	if doc.JWKSURI == "" {
		return fmt.Errorf("discovery document missing jwks_uri")
	}

	var set jose.JSONWebKeySet
	if err := c.getJSON(ctx, doc.JWKSURI, &set); err != nil {
		return fmt.Errorf("fetching JWKS: %w", err)
	}

	c.mu.Lock()
	c.set = set
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *JWKSCache) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
