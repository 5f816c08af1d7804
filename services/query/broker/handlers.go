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
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/seismic-engine/services/query/streambus"
)

func (r *Result) recordRequest(endpoint, status string) {
	if r.Metrics != nil {
		r.Metrics.RequestsTotal.WithLabelValues(endpoint, status).Inc()
	}
}

// Stream responds with the result as a series of length-prefixed CBOR
// frames, starting with the packed ResultHeader. Each frame is a 10-digit
// decimal length (counting the 10-digit prefix itself) followed by that
// many bytes of payload, so a streaming client never has to guess how
// much of the body belongs to one CBOR value.
func (r *Result) Stream(c *gin.Context) {
	pid := c.Param("pid")
	body, err := r.Storage.Get(c.Request.Context(), headerkey(pid))
	if err != nil {
		r.Log.Warn("unable to get process header", "pid", pid, "err", err)
		r.recordRequest("stream", "not_found")
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	head, err := parseProcessHeader(r.Log, body)
	if err != nil {
		r.Log.Warn("bad process header", "pid", pid, "err", err)
		r.recordRequest("stream", "error")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	tiles := make(chan []byte)
	failure := make(chan error)
	go collectResult(c.Request.Context(), r.Log, r.Storage, r.Metrics, pid, head, tiles, failure)

	if r.Metrics != nil {
		r.Metrics.ActiveStreams.Inc()
		defer r.Metrics.ActiveStreams.Dec()
	}
	started := time.Now()

	w := c.Writer
	header := w.Header()
	header.Set("Transfer-Encoding", "chunked")
	header.Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case output, ok := <-tiles:
			if !ok {
				r.Log.Info("stream finished", "pid", pid)
				w.(http.Flusher).Flush()
				r.recordRequest("stream", "success")
				if r.Metrics != nil {
					r.Metrics.StreamDurationSeconds.WithLabelValues("success").Observe(time.Since(started).Seconds())
				}
				return
			}
			frame := fmt.Sprintf("%010d", 10+len(output))
			w.Write(append([]byte(frame), output...))
			w.(http.Flusher).Flush()

		case err := <-failure:
			r.Log.Warn("stream failed", "pid", pid, "err", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			w.(http.Flusher).Flush()
			r.recordRequest("stream", "error")
			if r.Metrics != nil {
				r.Metrics.StreamDurationSeconds.WithLabelValues("error").Observe(time.Since(started).Seconds())
			}
			return
		}
	}
}

// Get buffers the whole result in memory and returns it as a single
// octet-stream response. Intended for callers that don't want to deal
// with chunked framing and are content to wait for the full payload.
func (r *Result) Get(c *gin.Context) {
	pid := c.Param("pid")
	body, err := r.Storage.Get(c.Request.Context(), headerkey(pid))
	if err != nil {
		r.Log.Warn("unable to get process header", "pid", pid, "err", err)
		r.recordRequest("get", "not_found")
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	head, err := parseProcessHeader(r.Log, body)
	if err != nil {
		r.Log.Warn("bad process header", "pid", pid, "err", err)
		r.recordRequest("get", "error")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	count, err := r.Storage.XLen(c.Request.Context(), pid)
	if err != nil {
		r.Log.Warn("unable to read stream length", "pid", pid, "err", err)
		r.recordRequest("get", "error")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if count < int64(head.Ntasks) {
		r.recordRequest("get", "pending")
		c.AbortWithStatus(http.StatusAccepted)
		return
	}

	tiles := make(chan []byte, 1000)
	failure := make(chan error)
	go collectResult(c.Request.Context(), r.Log, r.Storage, r.Metrics, pid, head, tiles, failure)

	result := make([]byte, 0)
	seen := 0
loop:
	for {
		select {
		case tile, ok := <-tiles:
			if !ok {
				r.Log.Info("assembled result", "pid", pid, "bytes", len(result))
				break loop
			}
			result = append(result, tile...)
			seen++
		case err := <-failure:
			r.Log.Warn("get failed", "pid", pid, "err", err)
			r.recordRequest("get", "error")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
	}

	// seen also counts the leading ResultHeader, which is not a tile.
	if seen-1 < head.Ntasks {
		r.recordRequest("get", "error")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	r.recordRequest("get", "success")
	c.Data(http.StatusOK, "application/octet-stream", result)
}

// Status reports whether a process has finished, is still working, or
// hasn't started yet. A missing header is "pending" rather than a 404:
// the caller's auth token checked out, so the query was accepted, but the
// header-write step of scheduling may simply not have landed yet.
func (r *Result) Status(c *gin.Context) {
	pid := c.Param("pid")
	body, err := r.Storage.Get(c.Request.Context(), headerkey(pid))
	if errors.Is(err, streambus.ErrNotFound) {
		r.recordRequest("status", "pending")
		c.JSON(http.StatusAccepted, gin.H{
			"location": fmt.Sprintf("result/%s/status", pid),
			"status":   "pending",
		})
		return
	}
	if err != nil {
		r.Log.Warn("status lookup failed", "pid", pid, "err", err)
		r.recordRequest("status", "error")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	head, err := parseProcessHeader(r.Log, body)
	if err != nil {
		r.Log.Warn("bad process header", "pid", pid, "err", err)
		r.recordRequest("status", "error")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	count, err := r.Storage.XLen(c.Request.Context(), pid)
	if err != nil {
		r.Log.Warn("status lookup failed", "pid", pid, "err", err)
		r.recordRequest("status", "error")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	done := count == int64(head.Ntasks)
	progress := fmt.Sprintf("%d/%d", count, head.Ntasks)

	if done {
		r.recordRequest("status", "finished")
		c.JSON(http.StatusOK, gin.H{
			"location": fmt.Sprintf("result/%s", pid),
			"status":   "finished",
			"progress": progress,
		})
		return
	}
	r.recordRequest("status", "working")
	c.JSON(http.StatusAccepted, gin.H{
		"location": fmt.Sprintf("result/%s/status", pid),
		"status":   "working",
		"progress": progress,
	})
}
