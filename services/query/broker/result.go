// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

// Package broker serves query results to callers over HTTP once the
// planner's tasks have been picked up and processed by workers. It reads
// process headers and result tiles from a streambus.Client and exposes
// them as a streaming, a buffered, and a status endpoint.
package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/seismic-engine/services/query/codec"
	"github.com/AleutianAI/seismic-engine/services/query/observability"
	"github.com/AleutianAI/seismic-engine/services/query/streambus"
)

// Result serves the /result/:pid family of endpoints. Metrics may be nil,
// in which case instrumentation is skipped.
type Result struct {
	Storage streambus.Client
	Log     *slog.Logger
	Metrics *observability.Metrics
}

func headerkey(pid string) string {
	return fmt.Sprintf("%s/header.json", pid)
}

func parseProcessHeader(log *slog.Logger, doc []byte) (*codec.ProcessHeader, error) {
	head, err := (&codec.ProcessHeader{}).Unpack(doc)
	if err != nil {
		log.Warn("bad process header", "body", string(doc))
		return head, fmt.Errorf("unable to parse process header: %w", err)
	}
	return head, nil
}

// collectResult pulls result tiles off the pid stream until head.Ntasks
// tiles have been seen, or a worker reports a failure. The first value
// sent on tiles is always the packed ResultHeader. Closing tiles signals
// the caller that the transfer is complete; it is never closed twice.
func collectResult(
	ctx context.Context,
	log *slog.Logger,
	storage streambus.Client,
	metrics *observability.Metrics,
	pid string,
	head *codec.ProcessHeader,
	tiles chan []byte,
	failure chan error,
) {
	defer close(tiles)

	rh := codec.ResultHeaderFrom(head)
	rhpacked, err := rh.Pack()
	if err != nil {
		failure <- err
		return
	}
	tiles <- rhpacked

	cursor := "0"
	count := 0
	log.Info("collecting result", "pid", pid, "tasks", head.Ntasks)
	for count < head.Ntasks {
		entries, err := storage.XRead(ctx, pid, cursor)
		if err != nil {
			failure <- err
			return
		}

		for _, entry := range entries {
			for key, value := range entry.Fields {
				if key == "error" {
					if metrics != nil {
						metrics.WorkerErrorsTotal.Inc()
					}
					failure <- errors.New(value)
					return
				}
				tiles <- []byte(value)
				count++
				if metrics != nil {
					metrics.TilesDeliveredTotal.Inc()
				}
			}
			cursor = entry.ID
		}
	}
	log.Info("collect result done", "pid", pid, "tiles", count)
}
