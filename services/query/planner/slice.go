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

	"github.com/AleutianAI/seismic-engine/services/query/codec"
	"github.com/AleutianAI/seismic-engine/services/query/geometry"
	"github.com/AleutianAI/seismic-engine/services/query/manifest"
)

func cubeShapeFromManifest(man *manifest.Manifest) geometry.CubeShape {
	return geometry.CubeShape{
		uint64(len(man.Dimensions[0])),
		uint64(len(man.Dimensions[1])),
		uint64(len(man.Dimensions[2])),
	}
}

func toFragmentShape(shape [3]int) geometry.FragmentShape {
	return geometry.FragmentShape{uint64(shape[0]), uint64(shape[1]), uint64(shape[2])}
}

func toIntShape(shape geometry.CubeShape) [3]int {
	return [3]int{int(shape[0]), int(shape[1]), int(shape[2])}
}

// scheduleSlice builds the single Fetch covering every fragment a slice
// query needs, then partitions it into task-sized chunks.
func scheduleSlice(in *document, man *manifest.Manifest, taskSize int) ([][]byte, error) {
	if in.Dim < 0 || in.Dim > 2 {
		return nil, fmt.Errorf("planner: dim (= %d) out of range", in.Dim)
	}

	pin, ok := man.PinIndex(in.Dim, in.Lineno)
	if !ok {
		return nil, fmt.Errorf("planner: line (= %d) not found in index", in.Lineno)
	}

	cube := cubeShapeFromManifest(man)
	frag := toFragmentShape(in.Shape)
	dim := geometry.Dim(in.Dim)

	ids := geometry.Slice(cube, frag, dim, uint64(pin))
	localLineno := int(uint64(pin) % frag[dim])
	shapeCube := toIntShape(cube)

	wireIDs := make([][3]int, len(ids))
	for i, id := range ids {
		wireIDs[i] = [3]int{int(id[0]), int(id[1]), int(id[2])}
	}

	return partitionInto(wireIDs, taskSize, func(chunk [][3]int) ([]byte, error) {
		fetch := codec.SliceFetch{
			Dim:       in.Dim,
			Lineno:    localLineno,
			Shape:     in.Shape,
			ShapeCube: shapeCube,
			Manifest:  []byte(in.Manifest),
			IDs:       chunk,
		}
		return fetch.Pack()
	})
}
