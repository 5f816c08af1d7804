// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.

package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
)

// ephemeralSecret generates a process-lifetime-only keyring secret for
// local development when KEYRING_SECRET is unset. Every
// restart invalidates every previously issued result token.
func ephemeralSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("FATAL: unable to generate ephemeral keyring secret: %v", err)
	}
	return hex.EncodeToString(b)
}
