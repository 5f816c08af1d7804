// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

// Package middleware implements two independent auth gates: a caller gate
// that checks an OIDC-issued bearer JWT, for query submission, and a
// result gate that checks a Keyring-issued bearer token on result
// retrieval.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-jose/go-jose/v4"

	"github.com/AleutianAI/seismic-engine/services/query/auth"
)

const callerClaimsKey = "seismic_caller_claims"

// CallerClaims is the identity extracted from a verified caller JWT.
type CallerClaims struct {
	Subject  string `json:"sub"`
	Issuer   string `json:"iss"`
	Audience string `json:"aud"`
}

// GetCallerClaims retrieves the claims CallerAuth stored in the context.
func GetCallerClaims(c *gin.Context) *CallerClaims {
	if v, ok := c.Get(callerClaimsKey); ok {
		if claims, ok := v.(*CallerClaims); ok {
			return claims
		}
	}
	return nil
}

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}

// CallerAuth verifies the bearer JWT on incoming query submissions
// against a rotating JWKS fetched via OpenID Connect discovery, and
// checks the issuer and audience claims. A missing or malformed header,
// an unrecognized kid, or a signature mismatch all fail with 401 — the
// original implementation's JWT middleware makes no distinction between
// these failure modes, and neither does this one.
func CallerAuth(keys *JWKSCache, issuer, audience string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := verifyCallerJWT(c.Request.Context(), keys, token, issuer, audience)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(callerClaimsKey, claims)
		c.Next()
	}
}

func verifyCallerJWT(
	ctx context.Context,
	keys *JWKSCache,
	tokenstr string,
	issuer string,
	audience string,
) (*CallerClaims, error) {
	sig, err := jose.ParseSigned(tokenstr, []jose.SignatureAlgorithm{jose.RS256})
	if err != nil {
		return nil, err
	}
	if len(sig.Signatures) != 1 {
		return nil, errors.New("middleware: expected exactly one JWS signature")
	}

	kid := sig.Signatures[0].Header.KeyID
	if kid == "" {
		return nil, errors.New("middleware: 'kid' not in JWT header")
	}

	key, err := keys.Lookup(ctx, kid)
	if err != nil {
		return nil, err
	}

	payload, err := sig.Verify(key)
	if err != nil {
		return nil, err
	}

	var claims CallerClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, err
	}

	if claims.Issuer != issuer {
		return nil, errors.New("middleware: invalid issuer")
	}
	if claims.Audience != audience {
		return nil, errors.New("middleware: invalid audience")
	}

	return &claims, nil
}

// ResultAuth guards the result broker's three endpoints: the Keyring
// token issued alongside the pid at submission time must accompany every
// request for that pid's status or payload. Missing or non-Bearer header
// fails with 401; a signature, expiry, or pid mismatch fails with 403.
func ResultAuth(keyring *auth.Keyring) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid := c.Param("pid")

		token, ok := extractBearerToken(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if err := keyring.Validate(token, pid); err != nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Next()
	}
}
