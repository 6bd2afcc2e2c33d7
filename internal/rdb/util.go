package rdb

import (
	"encoding/binary"
	"strconv"
	"time"
)

func parseU32(s string) uint32 {
	v, _ := strconv.ParseUint(s, 10, 32)
	return uint32(v)
}

func parseInt(s string) int {
	v, _ := strconv.ParseInt(s, 10, 64)
	return int(v)
}

func leUint64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
func leUint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// msExpiryOrNil applies the corrected "zero means no expiry, but still
// load the entry" rule uniformly across both expiry-prefix opcodes.
func msExpiryOrNil(ms uint64) *time.Time {
	if ms == 0 {
		return nil
	}
	t := time.UnixMilli(int64(ms)).UTC()
	return &t
}

func secExpiryOrNil(secs uint32) *time.Time {
	if secs == 0 {
		return nil
	}
	t := time.Unix(int64(secs), 0).UTC()
	return &t
}
