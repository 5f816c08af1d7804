// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

// Package config loads the query service's runtime settings from the
// environment, with defaults suitable for local development.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

var envVarKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ErrInvalidEnvVarKey is returned when an environment variable key does
// not match POSIX naming conventions.
var ErrInvalidEnvVarKey = fmt.Errorf("invalid environment variable key")

// EnvVar is a typed, validated environment variable with sensitivity
// marking for safe startup logging.
type EnvVar struct {
	Key       string
	Value     string
	Sensitive bool
}

// Validate checks that Key is a legal POSIX environment variable name.
func (e EnvVar) Validate() error {
	if !envVarKeyPattern.MatchString(e.Key) {
		return fmt.Errorf("%w: %q must match pattern [a-zA-Z_][a-zA-Z0-9_]*", ErrInvalidEnvVarKey, e.Key)
	}
	return nil
}

// Redacted returns "KEY=[REDACTED]" for sensitive vars, otherwise
// "KEY=VALUE". Safe to pass to a logger.
func (e EnvVar) Redacted() string {
	if e.Sensitive {
		return fmt.Sprintf("%s=[REDACTED]", e.Key)
	}
	return fmt.Sprintf("%s=%s", e.Key, e.Value)
}

// lookupEnvVar reads key, validates it, and marks it sensitive for
// Redacted() logging.
func lookupEnvVar(key string, sensitive bool) (EnvVar, error) {
	ev := EnvVar{Key: key, Value: os.Getenv(key), Sensitive: sensitive}
	if err := ev.Validate(); err != nil {
		return ev, err
	}
	return ev, nil
}

// Config holds everything cmd/seismic-query needs to wire up the planner,
// auth gate, stream-bus client, and result broker.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	// Env: LISTEN_ADDR. Default: ":8080"
	ListenAddr string

	// RedisAddr is the address of the Redis Streams instance backing the
	// stream-bus client. Empty means run against the in-memory client,
	// which is only suitable for local development.
	// Env: REDIS_ADDR. Default: "" (in-memory)
	RedisAddr string

	// KeyringSecret signs and validates the result gate's per-pid bearer
	// tokens. Env: KEYRING_SECRET.
	KeyringSecret EnvVar

	// OIDCDiscoveryURL is the OpenID Connect discovery document used to
	// find and refresh the caller-auth JWKS. cmd/seismic-query does not
	// mount CallerAuth and does not read this field.
	// Env: OIDC_DISCOVERY_URL.
	OIDCDiscoveryURL string

	// OIDCIssuer and OIDCAudience are the expected "iss"/"aud" claims on
	// caller JWTs. Env: OIDC_ISSUER, OIDC_AUDIENCE.
	OIDCIssuer   string
	OIDCAudience string

	// JWKSCacheTTL is the ttl for NewJWKSCache: how long a fetched JWKS is
	// trusted before the next Lookup refreshes it synchronously.
	// Env: JWKS_CACHE_TTL. Default: 10m
	JWKSCacheTTL time.Duration

	// ResultTokenTTL is a result-gate bearer token lifetime. Keyring does
	// not read it: Sign always issues tokens that expire 5 minutes later.
	// Env: RESULT_TOKEN_TTL. Default: 5m
	ResultTokenTTL time.Duration

	// TaskSize is a partition size for planner.Schedule's taskSize
	// argument. cmd/seismic-query does not call the planner and does not
	// read this field.
	// Env: TASK_SIZE. Default: 100
	TaskSize int
}

// Default returns a Config with the development defaults; every field can
// be overridden by FromEnv.
func Default() *Config {
	return &Config{
		ListenAddr:     ":8080",
		JWKSCacheTTL:   10 * time.Minute,
		ResultTokenTTL: 5 * time.Minute,
		TaskSize:       100,
	}
}

// FromEnv builds a Config starting from Default and overriding with any
// set environment variables. Returns ErrInvalidEnvVarKey only in the
// (practically unreachable) case a hardcoded key fails Validate.
func FromEnv() (*Config, error) {
	cfg := Default()

	listen, err := lookupEnvVar("LISTEN_ADDR", false)
	if err != nil {
		return nil, err
	}
	if listen.Value != "" {
		cfg.ListenAddr = listen.Value
	}

	redisAddr, err := lookupEnvVar("REDIS_ADDR", false)
	if err != nil {
		return nil, err
	}
	cfg.RedisAddr = redisAddr.Value

	cfg.KeyringSecret, err = lookupEnvVar("KEYRING_SECRET", true)
	if err != nil {
		return nil, err
	}

	discoveryURL, err := lookupEnvVar("OIDC_DISCOVERY_URL", false)
	if err != nil {
		return nil, err
	}
	cfg.OIDCDiscoveryURL = discoveryURL.Value

	issuer, err := lookupEnvVar("OIDC_ISSUER", false)
	if err != nil {
		return nil, err
	}
	cfg.OIDCIssuer = issuer.Value

	audience, err := lookupEnvVar("OIDC_AUDIENCE", false)
	if err != nil {
		return nil, err
	}
	cfg.OIDCAudience = audience.Value

	if v := os.Getenv("JWKS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: JWKS_CACHE_TTL: %w", err)
		}
		cfg.JWKSCacheTTL = d
	}

	if v := os.Getenv("RESULT_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: RESULT_TOKEN_TTL: %w", err)
		}
		cfg.ResultTokenTTL = d
	}

	if v := os.Getenv("TASK_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("config: TASK_SIZE must be a positive integer, got %q", v)
		}
		cfg.TaskSize = n
	}

	return cfg, nil
}
