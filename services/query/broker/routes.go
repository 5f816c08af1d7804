// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package broker

import (
	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/seismic-engine/services/query/auth"
	"github.com/AleutianAI/seismic-engine/services/query/middleware"
)

// SetupRoutes mounts the result-broker's /result/:pid family under router.
func SetupRoutes(router *gin.Engine, result *Result, keyring *auth.Keyring) {
	router.GET("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	group := router.Group("/result/:pid")
	group.Use(middleware.ResultAuth(keyring))
	{
		group.GET("/stream", result.Stream)
		group.GET("", result.Get)
		group.GET("/status", result.Status)
	}
}
