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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessHeaderRoundTrip(t *testing.T) {
	head := &ProcessHeader{
		Ntasks: 4,
		Shape:  [3]int{1, 5, 14},
		Index:  [][]int{{0, 1, 2}, {3, 4}},
	}

	packed, err := head.Pack()
	require.NoError(t, err)

	got, err := (&ProcessHeader{}).Unpack(packed)
	require.NoError(t, err)
	assert.Equal(t, head, got)
}

func TestProcessHeaderRejectsZeroNtasks(t *testing.T) {
	head := &ProcessHeader{Ntasks: 0, Shape: [3]int{1, 1, 1}}
	packed, err := head.Pack()
	require.NoError(t, err)

	_, err = (&ProcessHeader{}).Unpack(packed)
	require.Error(t, err)
	var decodeErr *ErrDecode
	assert.ErrorAs(t, err, &decodeErr)
}

func TestProcessHeaderRejectsGarbage(t *testing.T) {
	_, err := (&ProcessHeader{}).Unpack([]byte{0xff, 0xff})
	require.Error(t, err)
}

func TestResultHeaderFrom(t *testing.T) {
	head := &ProcessHeader{Ntasks: 3, Shape: [3]int{2, 2, 2}, Index: [][]int{{1}}}
	rh := ResultHeaderFrom(head)
	assert.Equal(t, 3, rh.Bundles)
	assert.Equal(t, head.Shape, rh.Shape)
	assert.Equal(t, head.Index, rh.Index)
}

func TestSliceFetchRoundTrip(t *testing.T) {
	fetch := &SliceFetch{
		Dim:       0,
		Lineno:    2,
		Shape:     [3]int{3, 9, 5},
		ShapeCube: [3]int{9, 15, 23},
		Manifest:  []byte(`{"dimensions":[[1,2,3]]}`),
		IDs:       [][3]int{{0, 0, 0}, {0, 1, 0}},
	}

	packed, err := fetch.Pack()
	require.NoError(t, err)

	var got SliceFetch
	require.NoError(t, Unmarshal(packed, &got))
	assert.Equal(t, *fetch, got)
}

func TestCurtainFetchRoundTrip(t *testing.T) {
	fetch := &CurtainFetch{
		Shape:    [3]int{3, 9, 5},
		Manifest: []byte(`{}`),
		IDs: []CurtainBucket{
			{ID: [3]int{0, 0, 0}, Coordinates: [][2]int{{1, 2}, {3, 4}}},
		},
	}

	packed, err := fetch.Pack()
	require.NoError(t, err)

	var got CurtainFetch
	require.NoError(t, Unmarshal(packed, &got))
	assert.Equal(t, *fetch, got)
}
