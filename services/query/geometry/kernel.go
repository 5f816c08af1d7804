// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package geometry

// ToLocal converts a global sample coordinate to its position within the
// fragment that contains it.
func ToLocal(p CubePoint, frag FragmentShape) FragmentPoint {
	return FragmentPoint{p[0] % frag[0], p[1] % frag[1], p[2] % frag[2]}
}

// FragID returns the grid position, in fragment units, of the fragment
// that contains the global sample coordinate p.
func FragID(p CubePoint, frag FragmentShape) FragmentID {
	return FragmentID{p[0] / frag[0], p[1] / frag[1], p[2] / frag[2]}
}

// ToGlobal is the inverse of ToLocal/FragID: given a fragment's grid
// position and a local sample coordinate within it, it reconstructs the
// global sample coordinate. ToGlobal(FragID(p, f), ToLocal(p, f), f) == p
// for every p.
func ToGlobal(id FragmentID, local FragmentPoint, frag FragmentShape) CubePoint {
	return CubePoint{
		id[0]*frag[0] + local[0],
		id[1]*frag[1] + local[1],
		id[2]*frag[2] + local[2],
	}
}

// FragmentCount returns, for each axis, how many fragments of shape frag
// are needed to cover a cube of shape cube. The last fragment along an
// axis is partial whenever the axis does not divide evenly; those
// out-of-range samples read back as zero.
func FragmentCount(cube CubeShape, frag FragmentShape) [3]uint64 {
	var n [3]uint64
	for i := 0; i < 3; i++ {
		n[i] = (cube[i] + frag[i] - 1) / frag[i]
	}
	return n
}

// ToOffset returns the row-major linear offset of a global sample
// coordinate within a cube of the given shape.
func ToOffset(p CubePoint, cube CubeShape) uint64 {
	return p[0]*cube[1]*cube[2] + p[1]*cube[2] + p[2]
}

// Slice enumerates the fragments that intersect a slice through the cube:
// the plane where axis dim is pinned to the global sample coordinate pin.
// The result is ordered lexicographically on (FragmentID[0], [1], [2])
// with the pinned axis's component held fixed, which is also the order
// the planner assigns sub-task indices in.
func Slice(cube CubeShape, frag FragmentShape, dim Dim, pin uint64) []FragmentID {
	counts := FragmentCount(cube, frag)
	fixed := pin / frag[dim]

	var ids []FragmentID
	switch dim {
	case Dim0:
		for i1 := uint64(0); i1 < counts[1]; i1++ {
			for i2 := uint64(0); i2 < counts[2]; i2++ {
				ids = append(ids, FragmentID{fixed, i1, i2})
			}
		}
	case Dim1:
		for i0 := uint64(0); i0 < counts[0]; i0++ {
			for i2 := uint64(0); i2 < counts[2]; i2++ {
				ids = append(ids, FragmentID{i0, fixed, i2})
			}
		}
	case Dim2:
		for i0 := uint64(0); i0 < counts[0]; i0++ {
			for i1 := uint64(0); i1 < counts[1]; i1++ {
				ids = append(ids, FragmentID{i0, i1, fixed})
			}
		}
	}
	return ids
}

// SliceLayout describes a strided copy: start InitialSkip elements into a
// buffer, copy ChunkSize contiguous elements, then advance the source
// pointer by Substride and the destination pointer by Superstride and
// repeat, for a total of Iterations chunks.
type SliceLayout struct {
	InitialSkip uint64
	ChunkSize   uint64
	Superstride uint64
	Substride   uint64
	Iterations  uint64
}

// SliceStride returns the layout for extracting, from a single fragment of
// shape frag, the 2-D plane at local index k along axis dim. It is used by
// worker nodes reading a fragment's own row-major sample storage; pure
// extraction only ever steps one buffer, so Superstride carries the source
// stride. Substride equals ChunkSize along dims 0 and 1, and frag[2] along
// dim 2.
func (frag FragmentShape) SliceStride(dim Dim, k uint64) SliceLayout {
	switch dim {
	case Dim0:
		chunk := frag[1] * frag[2]
		return SliceLayout{
			InitialSkip: k * chunk,
			ChunkSize:   chunk,
			Superstride: chunk,
			Substride:   chunk,
			Iterations:  1,
		}
	case Dim1:
		return SliceLayout{
			InitialSkip: k * frag[2],
			ChunkSize:   frag[2],
			Superstride: frag[1] * frag[2],
			Substride:   frag[2],
			Iterations:  frag[0],
		}
	default: // Dim2
		return SliceLayout{
			InitialSkip: k,
			ChunkSize:   1,
			Superstride: frag[2],
			Substride:   frag[2],
			Iterations:  frag[0] * frag[1],
		}
	}
}

// axesExcluding returns the two axes other than dim, in ascending order.
func axesExcluding(dim Dim) (lo, hi int) {
	switch dim {
	case Dim0:
		return 1, 2
	case Dim1:
		return 0, 2
	default:
		return 0, 1
	}
}

// PlacementStride returns the layout for placing the tile extracted from
// the fragment identified by id into its rectangular region of the full
// assembled cube-shaped slice buffer described by cube/frag (where frag is
// the shape of fragments tiling that slice, and cube[dim] == 1 since the
// pinned axis collapses to a single plane). The derivation mirrors
// SliceStride but the destination buffer spans the whole slice, so both a
// source stride (Substride, within the already-packed tile) and a
// destination stride (Superstride, a full row of the slice) are needed.
func PlacementStride(cube CubeShape, frag FragmentShape, dim Dim, id FragmentID) SliceLayout {
	lo, hi := axesExcluding(dim)
	return SliceLayout{
		InitialSkip: id[lo]*frag[lo]*cube[hi] + id[hi]*frag[hi],
		ChunkSize:   frag[hi],
		Superstride: cube[hi],
		Substride:   frag[hi],
		Iterations:  frag[lo],
	}
}
