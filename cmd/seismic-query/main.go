// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/seismic-engine/pkg/logging"
	"github.com/AleutianAI/seismic-engine/services/query/auth"
	"github.com/AleutianAI/seismic-engine/services/query/broker"
	"github.com/AleutianAI/seismic-engine/services/query/config"
	"github.com/AleutianAI/seismic-engine/services/query/observability"
	"github.com/AleutianAI/seismic-engine/services/query/streambus"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	logger := logging.New(logging.Config{Level: logging.LevelInfo, Service: "seismic-query", JSON: true})
	slog.SetDefault(logger.Slog())

	shutdownTracer, err := initTracer()
	if err != nil {
		logger.Warn("tracing disabled: failed to initialize OTLP exporter", "err", err)
		shutdownTracer = func(context.Context) {}
	}
	defer shutdownTracer(context.Background())

	var storage streambus.Client
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		storage = streambus.NewRedisClient(rdb)
		logger.Info("using redis stream-bus", "addr", cfg.RedisAddr)
	} else {
		storage = streambus.NewMemoryClient()
		logger.Warn("REDIS_ADDR not set; running with in-memory stream-bus (development only)")
	}

	keyringSecret := cfg.KeyringSecret.Value
	if keyringSecret == "" {
		logger.Warn("KEYRING_SECRET not set; generating an ephemeral key, valid only for this process's lifetime")
		keyringSecret = ephemeralSecret()
	}
	keyring := auth.NewKeyring([]byte(keyringSecret))

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	result := &broker.Result{
		Storage: storage,
		Log:     logger.Slog(),
		Metrics: metrics,
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("seismic-query"))
	broker.SetupRoutes(router, result, keyring)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	logger.Info("starting seismic-query", "addr", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("FATAL: server exited: %v", err)
	}
}
