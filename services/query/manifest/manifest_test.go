// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `{
	"dimensions": [
		[100, 101, 102],
		[10, 20, 30, 40, 50],
		[4, 8, 12, 16, 20, 24, 28]
	],
	"shape": [3, 5, 7]
}`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, [3]int{3, 5, 7}, m.Shape)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, m.Dimensions[1])
}

func TestPinIndex(t *testing.T) {
	m, err := Parse([]byte(doc))
	require.NoError(t, err)

	pin, ok := m.PinIndex(1, 30)
	assert.True(t, ok)
	assert.Equal(t, 2, pin)

	_, ok = m.PinIndex(1, 999)
	assert.False(t, ok)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("not json"))
	require.Error(t, err)
}
