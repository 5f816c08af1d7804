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
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/seismic-engine/services/query/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResultAuth_MissingHeader(t *testing.T) {
	k := auth.NewKeyring([]byte("secret"))
	r := gin.New()
	r.GET("/result/:pid/status", ResultAuth(k), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/result/pid-1/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResultAuth_WrongPID(t *testing.T) {
	k := auth.NewKeyring([]byte("secret"))
	token, err := k.Sign("pid-1")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/result/:pid/status", ResultAuth(k), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/result/pid-2/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestResultAuth_Valid(t *testing.T) {
	k := auth.NewKeyring([]byte("secret"))
	token, err := k.Sign("pid-1")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/result/:pid/status", ResultAuth(k), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/result/pid-1/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWKSCache_UnknownKidRefreshesOnce(t *testing.T) {
	var hits atomic.Int32
	discovery := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if req.URL.Path == "/jwks" {
			_, _ = w.Write([]byte(`{"keys":[]}`))
			return
		}
		hits.Add(1)
		_, _ = w.Write([]byte(`{"jwks_uri":"http://` + req.Host + `/jwks"}`))
	}))
	defer discovery.Close()

	cache := NewJWKSCache(discovery.URL, time.Hour)

	_, err := cache.Lookup(context.Background(), "missing-kid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key not recognized")
	assert.Equal(t, int32(1), hits.Load())
}
