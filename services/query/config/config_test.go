// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 10*time.Minute, cfg.JWKSCacheTTL)
	assert.Equal(t, 100, cfg.TaskSize)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("TASK_SIZE", "250")
	t.Setenv("JWKS_CACHE_TTL", "30s")
	t.Setenv("KEYRING_SECRET", "super-secret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 250, cfg.TaskSize)
	assert.Equal(t, 30*time.Second, cfg.JWKSCacheTTL)
	assert.Equal(t, "super-secret", cfg.KeyringSecret.Value)
	assert.Equal(t, "KEYRING_SECRET=[REDACTED]", cfg.KeyringSecret.Redacted())
}

func TestFromEnv_InvalidTaskSize(t *testing.T) {
	t.Setenv("TASK_SIZE", "not-a-number")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_InvalidDuration(t *testing.T) {
	t.Setenv("RESULT_TOKEN_TTL", "not-a-duration")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestEnvVar_Redacted(t *testing.T) {
	plain := EnvVar{Key: "REDIS_ADDR", Value: "localhost:6379"}
	assert.Equal(t, "REDIS_ADDR=localhost:6379", plain.Redacted())

	secret := EnvVar{Key: "KEYRING_SECRET", Value: "abc123", Sensitive: true}
	assert.Equal(t, "KEYRING_SECRET=[REDACTED]", secret.Redacted())
}
