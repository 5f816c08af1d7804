// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrDecode wraps a schema validation failure raised while unpacking a
// message: a required field missing or holding an impossible value.
type ErrDecode struct {
	Message string
}

func (e *ErrDecode) Error() string {
	return "codec: " + e.Message
}

func decodeErrorf(format string, args ...any) error {
	return &ErrDecode{Message: fmt.Sprintf(format, args...)}
}

// ProcessHeader is the record a submitted query materializes at
// "<pid>/header.json": how many sub-tasks were scheduled, and the shape
// and per-axis manifest index the caller asked for.
type ProcessHeader struct {
	Ntasks int     `cbor:"ntasks"`
	Shape  [3]int  `cbor:"shape"`
	Index  [][]int `cbor:"index"`
}

// Pack encodes the header.
func (h *ProcessHeader) Pack() ([]byte, error) {
	return Marshal(h)
}

// Unpack decodes and validates a ProcessHeader. A document missing any of
// the "ntasks", "shape" or "index" keys is rejected, and so is Ntasks<=0,
// which is never a legal schedule.
func (h *ProcessHeader) Unpack(doc []byte) (*ProcessHeader, error) {
	out := &ProcessHeader{}
	var fields map[string]cbor.RawMessage
	if err := Unmarshal(doc, &fields); err != nil {
		return out, decodeErrorf("process header: %v", err)
	}
	for _, key := range []string{"ntasks", "shape", "index"} {
		if _, ok := fields[key]; !ok {
			return out, decodeErrorf("process header: missing field %q", key)
		}
	}
	if err := Unmarshal(doc, out); err != nil {
		return out, decodeErrorf("process header: %v", err)
	}
	if out.Ntasks <= 0 {
		return out, decodeErrorf("process header: ntasks = %d; want >= 1", out.Ntasks)
	}
	return out, nil
}

// ResultHeader is the first frame of every result stream, derived
// verbatim from the ProcessHeader that scheduled it.
type ResultHeader struct {
	Bundles int     `cbor:"bundles"`
	Shape   [3]int  `cbor:"shape"`
	Index   [][]int `cbor:"index"`
}

// Pack encodes the header.
func (h *ResultHeader) Pack() ([]byte, error) {
	return Marshal(h)
}

// ResultHeaderFrom derives a ResultHeader from the ProcessHeader that
// scheduled the query: bundles is exactly ntasks.
func ResultHeaderFrom(head *ProcessHeader) *ResultHeader {
	return &ResultHeader{
		Bundles: head.Ntasks,
		Shape:   head.Shape,
		Index:   head.Index,
	}
}

// SliceTask is the packed task message a planner emits for one partition
// of a slice query. Manifest travels as opaque JSON bytes; the worker
// re-parses it.
type SliceTask struct {
	Dim      int     `cbor:"dim"`
	Lineno   int     `cbor:"lineno"`
	Shape    [3]int  `cbor:"shape"`
	Manifest []byte  `cbor:"manifest"`
	IDs      [][3]int `cbor:"ids"`
}

// Pack encodes the task.
func (t *SliceTask) Pack() ([]byte, error) {
	return Marshal(t)
}

// SliceFetch is a SliceTask rewritten with the local (fragment-relative)
// line number the worker needs, plus the cube shape it was cut from.
type SliceFetch struct {
	Dim       int      `cbor:"dim"`
	Lineno    int      `cbor:"lineno"`
	Shape     [3]int   `cbor:"shape"`
	ShapeCube [3]int   `cbor:"shape_cube"`
	Manifest  []byte   `cbor:"manifest"`
	IDs       [][3]int `cbor:"ids"`
}

// Pack encodes the fetch.
func (f *SliceFetch) Pack() ([]byte, error) {
	return Marshal(f)
}

// CurtainTask is the packed task message for a curtain query: an
// arbitrary polyline traced across the survey's (x,y) plane.
type CurtainTask struct {
	Dim0s    []int  `cbor:"dim0s"`
	Dim1s    []int  `cbor:"dim1s"`
	Shape    [3]int `cbor:"shape"`
	Manifest []byte `cbor:"manifest"`
}

// Pack encodes the task.
func (t *CurtainTask) Pack() ([]byte, error) {
	return Marshal(t)
}

// CurtainBucket binds one touched fragment to the local (x,y) pairs that
// should be extracted from it.
type CurtainBucket struct {
	ID          [3]int   `cbor:"id"`
	Coordinates [][2]int `cbor:"coordinates"`
}

// CurtainFetch carries the partitioned, bucketed ids plus enough context
// for a worker to locate each fragment and extract its traces.
type CurtainFetch struct {
	Shape    [3]int         `cbor:"shape"`
	Manifest []byte         `cbor:"manifest"`
	IDs      []CurtainBucket `cbor:"ids"`
}

// Pack encodes the fetch.
func (f *CurtainFetch) Pack() ([]byte, error) {
	return Marshal(f)
}
