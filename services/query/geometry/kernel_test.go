// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice_Inline(t *testing.T) {
	cube := CubeShape{9, 15, 23}
	frag := FragmentShape{3, 9, 5}

	ids := Slice(cube, frag, Dim0, 0)

	expected := []FragmentID{
		{0, 0, 0}, {0, 0, 1}, {0, 0, 2}, {0, 0, 3}, {0, 0, 4},
		{0, 1, 0}, {0, 1, 1}, {0, 1, 2}, {0, 1, 3}, {0, 1, 4},
	}
	assert.Equal(t, expected, ids)
}

func TestSlice_Crossline(t *testing.T) {
	cube := CubeShape{9, 15, 23}
	frag := FragmentShape{3, 9, 5}

	ids := Slice(cube, frag, Dim1, 11)

	expected := []FragmentID{
		{0, 1, 0}, {0, 1, 1}, {0, 1, 2}, {0, 1, 3}, {0, 1, 4},
		{1, 1, 0}, {1, 1, 1}, {1, 1, 2}, {1, 1, 3}, {1, 1, 4},
		{2, 1, 0}, {2, 1, 1}, {2, 1, 2}, {2, 1, 3}, {2, 1, 4},
	}
	assert.Equal(t, expected, ids)
}

func TestSlice_Time(t *testing.T) {
	cube := CubeShape{9, 15, 23}
	frag := FragmentShape{3, 9, 5}

	ids := Slice(cube, frag, Dim2, 17)

	expected := []FragmentID{
		{0, 0, 3}, {0, 1, 3},
		{1, 0, 3}, {1, 1, 3},
		{2, 0, 3}, {2, 1, 3},
	}
	assert.Equal(t, expected, ids)
}

func TestToOffset(t *testing.T) {
	cube := CubeShape{9, 15, 23}
	p := CubePoint{7, 3, 11}

	assert.Equal(t, uint64(2495), ToOffset(p, cube))
}

func TestLocalGlobalRoundTrip(t *testing.T) {
	frag := FragmentShape{22, 20, 10}
	p := CubePoint{55, 67, 88}

	local := ToLocal(p, frag)
	id := FragID(p, frag)
	require.Equal(t, FragmentPoint{11, 7, 8}, local)

	assert.Equal(t, p, ToGlobal(id, local, frag))

	// Round trip holds generally, not just for this one fixture.
	for _, q := range []CubePoint{{0, 0, 0}, {219, 199, 99}, {100, 150, 73}} {
		l := ToLocal(q, frag)
		i := FragID(q, frag)
		assert.Equal(t, q, ToGlobal(i, l, frag), "round trip for %v", q)
	}
}

func TestFragmentCount_NonDivisible(t *testing.T) {
	frag := FragmentShape{22, 20, 10}

	// 220/22, 200/20 and 100/10 all divide evenly; exercise the ceiling
	// path with a cube that doesn't.
	n := FragmentCount(CubeShape{221, 200, 100}, frag)
	assert.Equal(t, [3]uint64{11, 10, 10}, n)
}

func TestFragmentShapeSliceStride(t *testing.T) {
	frag := FragmentShape{3, 5, 7}

	t.Run("dim0", func(t *testing.T) {
		layout := frag.SliceStride(Dim0, 1)
		assert.Equal(t, SliceLayout{
			InitialSkip: 35,
			ChunkSize:   35,
			Superstride: 35,
			Substride:   35,
			Iterations:  1,
		}, layout)
	})

	t.Run("dim1", func(t *testing.T) {
		layout := frag.SliceStride(Dim1, 1)
		assert.Equal(t, SliceLayout{
			InitialSkip: 7,
			ChunkSize:   7,
			Superstride: 35,
			Substride:   7,
			Iterations:  3,
		}, layout)
	})

	t.Run("dim2", func(t *testing.T) {
		layout := frag.SliceStride(Dim2, 1)
		assert.Equal(t, SliceLayout{
			InitialSkip: 1,
			ChunkSize:   1,
			Superstride: 7,
			Substride:   7,
			Iterations:  15,
		}, layout)
	})
}

func TestPlacementStride(t *testing.T) {
	t.Run("dim0", func(t *testing.T) {
		cube := CubeShape{1, 5, 14}
		frag := FragmentShape{1, 5, 7}
		layout := PlacementStride(cube, frag, Dim0, FragmentID{0, 0, 0})
		assert.Equal(t, SliceLayout{
			InitialSkip: 0,
			ChunkSize:   7,
			Superstride: 14,
			Substride:   7,
			Iterations:  5,
		}, layout)
	})

	t.Run("dim1", func(t *testing.T) {
		cube := CubeShape{3, 1, 14}
		frag := FragmentShape{3, 1, 7}
		layout := PlacementStride(cube, frag, Dim1, FragmentID{0, 0, 1})
		assert.Equal(t, SliceLayout{
			InitialSkip: 7,
			ChunkSize:   7,
			Superstride: 14,
			Substride:   7,
			Iterations:  3,
		}, layout)
	})

	t.Run("dim2", func(t *testing.T) {
		cube := CubeShape{6, 5, 1}
		frag := FragmentShape{3, 5, 1}
		layout := PlacementStride(cube, frag, Dim2, FragmentID{1, 0, 0})
		assert.Equal(t, SliceLayout{
			InitialSkip: 15,
			ChunkSize:   5,
			Superstride: 5,
			Substride:   5,
			Iterations:  3,
		}, layout)
	})
}

func TestFragmentIDOrdering(t *testing.T) {
	assert.True(t, FragmentID{0, 0, 0}.Less(FragmentID{0, 0, 1}))
	assert.True(t, FragmentID{0, 1, 0}.Less(FragmentID{1, 0, 0}))
	assert.False(t, FragmentID{1, 0, 0}.Less(FragmentID{0, 9, 9}))
	assert.Equal(t, "2-3-4", FragmentID{2, 3, 4}.String())
}
