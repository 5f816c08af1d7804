// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

// Package manifest decodes the JSON document a query references by line
// number: the per-axis index of the survey's inline/crossline/time
// numbering and the sample shape of the cube it describes.
package manifest

import (
	"encoding/json"
	"fmt"
)

// Manifest is the planner's view of a survey's addressing scheme.
// Dimensions[dim] lists the caller-facing line numbers along axis dim, in
// the order they map to global sample indices; Shape is the cube's sample
// extent along each axis.
type Manifest struct {
	Dimensions [3][]int `json:"dimensions"`
	Shape      [3]int   `json:"shape"`
}

// Parse decodes a manifest document. The document is opaque JSON handed
// in by the caller and decoded exactly once, at the planner boundary;
// everything downstream of the planner carries it as an undecoded byte
// string for the worker to re-parse.
func Parse(doc []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return &m, nil
}

// PinIndex looks up the position of lineno within Dimensions[dim]. That
// position is the global pin index the geometry kernel slices on. Absence
// is reported via ok=false, which the planner turns into a not-found
// error.
func (m *Manifest) PinIndex(dim int, lineno int) (pin int, ok bool) {
	for i, v := range m.Dimensions[dim] {
		if v == lineno {
			return i, true
		}
	}
	return 0, false
}
