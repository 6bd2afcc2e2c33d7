// Package rdb decodes Redis-format RDB snapshot files into an in-memory
// record. It only loads snapshots; writing them is out of scope.
package rdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redislite/redislite/internal/logging"
)

const magic = "REDIS"

// ErrInvalidMagic is returned when the file does not begin with "REDIS".
// The four version bytes that follow are recorded but not validated.
var ErrInvalidMagic = errors.New("rdb: invalid magic header")

// ErrLzfDecompressFailure is returned when an LZF-compressed string
// payload cannot be decompressed.
var ErrLzfDecompressFailure = errors.New("rdb: lzf decompression failed")

const (
	opMetadata   = 0xFA
	opSelectDB   = 0xFE
	opResizeDB   = 0xFB
	opExpireMS   = 0xFC
	opExpireSecs = 0xFD
	opEOF        = 0xFF
)

// Entry is one key's value and optional expiry, as loaded from a snapshot.
type Entry struct {
	Value     []byte
	ExpiresAt *time.Time
}

// Record is the full result of decoding an RDB snapshot.
type Record struct {
	Version             string
	Metadata            map[string]string
	DBHashTableSize     int
	ExpiryHashTableSize int
	SelectedDB          uint32
	Data                map[string]Entry
	OriginalChecksum    uint64
}

func empty() *Record {
	return &Record{
		Metadata: map[string]string{},
		Data:     map[string]Entry{},
	}
}

// Load reads and decodes the RDB snapshot at path. A missing file is not
// an error: it yields an empty record, matching a freshly installed
// server with no prior snapshot. log may be nil.
func Load(path string, log *logging.Logger) (*Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return empty(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(bufio.NewReader(f), log)
}

// Decode reads one RDB snapshot from r. An LZF decompression failure is
// not fatal to the load: per the LzfDecompressFailure handling policy, the
// whole snapshot is discarded and Decode returns an empty record with a
// nil error, letting the server start with zero keys rather than aborting.
// log may be nil. All other decode errors (bad magic, truncated stream,
// malformed length encodings) are returned as errors and are fatal to the
// load.
func Decode(r io.Reader, log *logging.Logger) (*Record, error) {
	rec := empty()

	var header [9]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("rdb: reading header: %w", err)
	}
	if string(header[:5]) != magic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, header[:5])
	}
	rec.Version = string(header[5:9])

	var pendingExpiry *time.Time

	for {
		b, err := readByte(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("rdb: truncated snapshot (missing EOF opcode): %w", err)
			}
			return nil, err
		}

		switch b {
		case opMetadata:
			key, aborted, err := decodeLengthChecked(r, modeString, "metadata key", log)
			if aborted {
				return empty(), nil
			}
			if err != nil {
				return nil, err
			}
			value, aborted, err := decodeLengthChecked(r, modeString, "metadata value", log)
			if aborted {
				return empty(), nil
			}
			if err != nil {
				return nil, err
			}
			rec.Metadata[key] = value

		case opSelectDB:
			selected, aborted, err := decodeLengthChecked(r, modeInteger, "selected db", log)
			if aborted {
				return empty(), nil
			}
			if err != nil {
				return nil, err
			}
			rec.SelectedDB = parseU32(selected)

		case opResizeDB:
			dbSize, aborted, err := decodeLengthChecked(r, modeInteger, "db resize hint", log)
			if aborted {
				return empty(), nil
			}
			if err != nil {
				return nil, err
			}
			expirySize, aborted, err := decodeLengthChecked(r, modeInteger, "expiry resize hint", log)
			if aborted {
				return empty(), nil
			}
			if err != nil {
				return nil, err
			}
			rec.DBHashTableSize = parseInt(dbSize)
			rec.ExpiryHashTableSize = parseInt(expirySize)

		case opExpireMS:
			var buf [8]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, fmt.Errorf("rdb: ms expiry: %w", err)
			}
			pendingExpiry = msExpiryOrNil(leUint64(buf[:]))

		case opExpireSecs:
			var buf [4]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, fmt.Errorf("rdb: sec expiry: %w", err)
			}
			pendingExpiry = secExpiryOrNil(leUint32(buf[:]))

		case opEOF:
			var buf [8]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, fmt.Errorf("rdb: checksum: %w", err)
			}
			rec.OriginalChecksum = leUint64(buf[:])
			return rec, nil

		default:
			// Data entry; b is the value-type tag. Only the string
			// type (0) is required — other type tags are accepted
			// (so the opcode stream stays in sync) but their payload
			// is decoded as a string, matching the one data type this
			// loader is required to support.
			key, aborted, err := decodeLengthChecked(r, modeString, "data key", log)
			if aborted {
				return empty(), nil
			}
			if err != nil {
				return nil, err
			}
			value, aborted, err := decodeLengthChecked(r, modeString, "data value", log)
			if aborted {
				return empty(), nil
			}
			if err != nil {
				return nil, err
			}
			rec.Data[key] = Entry{
				Value:     []byte(value),
				ExpiresAt: pendingExpiry,
			}
			pendingExpiry = nil
		}
	}
}

// decodeLengthChecked wraps decodeLength with the LzfDecompressFailure
// degrade-to-empty policy: a failed LZF decompression anywhere in the
// snapshot aborts the whole load (aborted=true, err=nil) rather than
// failing the process, per the error-handling table. Any other decode
// error is returned normally, annotated with context.
func decodeLengthChecked(r io.Reader, m mode, context string, log *logging.Logger) (value string, aborted bool, err error) {
	value, err = decodeLength(r, m)
	if err == nil {
		return value, false, nil
	}
	if errors.Is(err, ErrLzfDecompressFailure) {
		if log != nil {
			log.Warn("rdb: %s: %v — discarding snapshot, starting with an empty keyspace", context, err)
		}
		return "", true, nil
	}
	return "", false, fmt.Errorf("rdb: %s: %w", context, err)
}
