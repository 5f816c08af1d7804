// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package planner

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/AleutianAI/seismic-engine/services/query/codec"
	"github.com/AleutianAI/seismic-engine/services/query/geometry"
	"github.com/AleutianAI/seismic-engine/services/query/manifest"
)

func bucketID(b codec.CurtainBucket) geometry.FragmentID {
	return geometry.FragmentID{uint64(b.ID[0]), uint64(b.ID[1]), uint64(b.ID[2])}
}

// lowerBound returns the position of the first bucket whose id is not
// less than target, mirroring std::lower_bound over the lexicographically
// sorted ids list.
func lowerBound(buckets []codec.CurtainBucket, target geometry.FragmentID) int {
	return sort.Search(len(buckets), func(i int) bool {
		return !bucketID(buckets[i]).Less(target)
	})
}

// scheduleCurtain builds the Fetch for an arbitrary polyline traced
// across the survey's (x,y) plane: every fragment touched by the column
// above any (x,y) pair on the line, each bound to the local coordinates
// that should be extracted from it.
func scheduleCurtain(in *document, man *manifest.Manifest, taskSize int) ([][]byte, error) {
	if len(in.Dim0s) != len(in.Dim1s) {
		return nil, fmt.Errorf("planner: curtain dim0s/dim1s length mismatch (%d != %d)", len(in.Dim0s), len(in.Dim1s))
	}

	cube := cubeShapeFromManifest(man)
	frag := toFragmentShape(in.Shape)

	counts := geometry.FragmentCount(cube, frag)
	zfrags := int(counts[2])
	coordCap := int(math.Max(float64(frag[0]), float64(frag[1])) * 1.2)

	var buckets []codec.CurtainBucket

	// Bucket allocation pass: guarantee every touched (x,y) column has its
	// full vertical stack of fragments present, in lexicographic order.
	for i := range in.Dim0s {
		top := geometry.CubePoint{uint64(in.Dim0s[i]), uint64(in.Dim1s[i]), 0}
		fid := geometry.FragID(top, frag)

		idx := lowerBound(buckets, fid)
		if idx == len(buckets) || bucketID(buckets[idx]) != fid {
			fresh := make([]codec.CurtainBucket, zfrags)
			for z := 0; z < zfrags; z++ {
				fresh[z] = codec.CurtainBucket{
					ID:          [3]int{int(fid[0]), int(fid[1]), z},
					Coordinates: make([][2]int, 0, coordCap),
				}
			}
			buckets = slices.Insert(buckets, idx, fresh...)
		}
	}

	// Coordinate insertion pass: append each (x,y) pair's local coordinate
	// into every fragment of its column.
	for i := range in.Dim0s {
		cp := geometry.CubePoint{uint64(in.Dim0s[i]), uint64(in.Dim1s[i]), 0}
		fid := geometry.FragID(cp, frag)
		local := geometry.ToLocal(cp, frag)

		idx := lowerBound(buckets, fid)
		for z := 0; z < zfrags; z++ {
			b := &buckets[idx+z]
			b.Coordinates = append(b.Coordinates, [2]int{int(local[0]), int(local[1])})
		}
	}

	return partitionInto(buckets, taskSize, func(chunk []codec.CurtainBucket) ([]byte, error) {
		fetch := codec.CurtainFetch{
			Shape:    in.Shape,
			Manifest: []byte(in.Manifest),
			IDs:      chunk,
		}
		return fetch.Pack()
	})
}
