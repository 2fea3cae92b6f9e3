// Package uuid provides UUID v7 generation.
// UUID v7 is sortable by timestamp, which keeps the append-only invocation
// log naturally ordered by insertion time.
package uuid

import (
	"crypto/rand"
	"fmt"
	"time"
)

// UUID represents a UUID v7 identifier.
type UUID [16]byte

// NewV7 generates a new UUID v7 (RFC 9562):
// - 48 bits: UNIX timestamp in milliseconds
// - 4 bits: version (0111)
// - 2 bits: variant
// - the rest: random
func NewV7() UUID {
	now := time.Now().UnixMilli()

	var uuid UUID

	// Timestamp (48 bits, ms precision) — bytes 0-5
	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	// Random tail — bytes 6-15. crypto/rand only fails when the OS entropy
	// source is broken, which is not a recoverable condition.
	if _, err := rand.Read(uuid[6:]); err != nil {
		panic(fmt.Sprintf("uuid: crypto/rand unavailable: %v", err))
	}

	// Version 0111 in the high nibble of byte 6.
	uuid[6] = 0x70 | (uuid[6] & 0x0f)
	// Variant 10xxxxxx in byte 8.
	uuid[8] = 0x80 | (uuid[8] & 0x3f)

	return uuid
}

// String returns the UUID in standard form: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		u[0:4],
		u[4:6],
		u[6:8],
		u[8:10],
		u[10:16],
	)
}
