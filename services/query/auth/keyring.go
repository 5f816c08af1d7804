// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

// Package auth implements the result gate's pre-shared-key token scheme:
// a Keyring signs a token binding a result to the pid that produced it,
// so only the caller who submitted the query can fetch its result.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultExpiry = 5 * time.Minute

// ValidationErrorKind distinguishes why Validate rejected a token, so
// callers can map each kind to the right HTTP status.
type ValidationErrorKind int

const (
	// ErrKindMalformed means the token could not be parsed or its
	// signature did not verify.
	ErrKindMalformed ValidationErrorKind = iota
	// ErrKindExpired means the token parsed and verified but its
	// expiry has passed.
	ErrKindExpired
	// ErrKindWrongPID means the token is otherwise valid but was
	// issued for a different pid than the one requested.
	ErrKindWrongPID
)

// ValidationError reports why Validate failed.
type ValidationError struct {
	Kind ValidationErrorKind
	Err  error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Keyring signs and validates per-pid bearer tokens with a single
// pre-shared symmetric key, supplied once at construction.
type Keyring struct {
	key []byte
}

// NewKeyring constructs a Keyring around a pre-shared key.
func NewKeyring(key []byte) *Keyring {
	return &Keyring{key: key}
}

type claims struct {
	PID string `json:"pid"`
	jwt.RegisteredClaims
}

// Sign issues a token for pid with the default 5-minute expiry.
func (k *Keyring) Sign(pid string) (string, error) {
	return k.SignWithTimeout(pid, time.Now().Add(defaultExpiry))
}

// SignWithTimeout issues a token for pid that expires at exp. Exposed
// mainly for tests that need to construct already-expired tokens.
func (k *Keyring) SignWithTimeout(pid string, exp time.Time) (string, error) {
	c := claims{
		PID: pid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(k.key)
}

// Validate runs all three required checks in sequence: signature,
// expiry, and that the token's pid claim matches the requested pid. Each
// failure is reported with a distinct ValidationErrorKind so the caller
// can distinguish "not entitled" (403) from "can't even read it" (401).
func (k *Keyring) Validate(tokenstr string, pid string) error {
	var c claims
	token, err := jwt.ParseWithClaims(tokenstr, &c, func(t *jwt.Token) (any, error) {
		return k.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return &ValidationError{Kind: ErrKindExpired, Err: err}
		}
		return &ValidationError{Kind: ErrKindMalformed, Err: err}
	}
	if !token.Valid {
		return &ValidationError{Kind: ErrKindMalformed, Err: fmt.Errorf("auth: token failed validation")}
	}

	if c.PID != pid {
		return &ValidationError{
			Kind: ErrKindWrongPID,
			Err:  fmt.Errorf("auth: token issued for pid %q, requested %q", c.PID, pid),
		}
	}
	return nil
}
