// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

// Package geometry implements the coordinate arithmetic that maps samples
// in a seismic cube to the fragments they are stored in. A cube is
// partitioned into a regular grid of fragments; fragments on the high edge
// of an axis may be partial when the cube shape does not evenly divide the
// fragment shape, and out-of-range samples in that remainder are treated
// as zero on extraction.
package geometry

import "fmt"

// Dim selects one of the three cube axes (inline, crossline, time/depth).
type Dim int

const (
	Dim0 Dim = iota
	Dim1
	Dim2
)

// CubePoint is a global sample coordinate within a survey.
type CubePoint [3]uint64

// CubeShape is the sample extent of a survey along each axis.
type CubeShape [3]uint64

// FragmentPoint is a sample coordinate local to a single fragment.
type FragmentPoint [3]uint64

// FragmentShape is the sample extent of a single fragment along each axis.
type FragmentShape [3]uint64

// FragmentID identifies a fragment's position in the grid of fragments
// that tile a cube, in fragment units (not sample units).
type FragmentID [3]uint64

// String renders a FragmentID as "d0-d1-d2", matching the original
// implementation's fragment-ID textual form used for stream-bus keys.
func (f FragmentID) String() string {
	return fmt.Sprintf("%d-%d-%d", f[0], f[1], f[2])
}

// Less reports whether f sorts before other in lexicographic order over
// (d0, d1, d2). Arrays compare for equality natively in Go but not for
// ordering, so callers that need a total order (the planner's binary search
// over curtain buckets) use this instead of a generated comparator.
func (f FragmentID) Less(other FragmentID) bool {
	for i := 0; i < 3; i++ {
		if f[i] != other[i] {
			return f[i] < other[i]
		}
	}
	return false
}
