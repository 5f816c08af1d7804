// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

// Package planner turns an incoming query document into the set of packed
// task messages workers will consume. The scheduling skeleton (decode,
// build a single whole-query Fetch, partition its fragment list into
// task-sized chunks) is shared between query shapes; only the builder
// step is shape-specific.
package planner

import (
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/seismic-engine/services/query/manifest"
)

// document is the caller-facing query request: a discriminated union over
// the supported query shapes, selected by Function.
type document struct {
	Function string          `json:"function"`
	Dim      int             `json:"dim"`
	Lineno   int             `json:"lineno"`
	Shape    [3]int          `json:"shape"`
	Manifest json.RawMessage `json:"manifest"`
	Dim0s    []int           `json:"dim0s"`
	Dim1s    []int           `json:"dim1s"`
}

// Schedule decodes doc and dispatches to the shape-specific builder,
// returning one packed task message per partition. task_size < 1 is an
// invalid-argument error; otherwise the number of partitions is
// ceil(len(ids) / task_size), never fewer than one.
func Schedule(doc []byte, taskSize int) ([][]byte, error) {
	if taskSize < 1 {
		return nil, fmt.Errorf("planner: task_size (= %d) < 1", taskSize)
	}

	var in document
	if err := json.Unmarshal(doc, &in); err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	man, err := manifest.Parse(in.Manifest)
	if err != nil {
		return nil, err
	}

	switch in.Function {
	case "slice":
		return scheduleSlice(&in, man, taskSize)
	case "curtain":
		return scheduleCurtain(&in, man, taskSize)
	default:
		return nil, fmt.Errorf("planner: no handler for function %q", in.Function)
	}
}

// taskCount returns the number of task_size'd tasks needed to process n
// jobs; at least one partition is always emitted, even for an empty
// fragment list, so a query that touches nothing still produces a
// (trivial) schedule rather than silently vanishing.
func taskCount(n, taskSize int) int {
	if n == 0 {
		return 1
	}
	return (n + taskSize - 1) / taskSize
}
