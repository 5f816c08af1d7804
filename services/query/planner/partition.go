// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package planner

// partitionInto splits ids into ceil(len(ids)/taskSize) chunks of at most
// taskSize elements each (at least one chunk, even for an empty input),
// and calls pack on every chunk to produce the wire message for that
// partition. All fields of the Fetch other than the ids are assumed
// identical across partitions; pack is responsible for repeating them.
func partitionInto[T any](ids []T, taskSize int, pack func([]T) ([]byte, error)) ([][]byte, error) {
	ntasks := taskCount(len(ids), taskSize)

	out := make([][]byte, 0, ntasks)
	for i := 0; i < ntasks; i++ {
		start := i * taskSize
		end := start + taskSize
		if end > len(ids) {
			end = len(ids)
		}
		packed, err := pack(ids[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, packed)
	}
	return out, nil
}
