package rdb

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/zhuyie/golzf"
)

// mode selects how the plain (non-special) length-encoding variants are
// interpreted: as the integer magnitude itself, or as a byte count for a
// following string payload. Both modes share identical handling of the
// "11" special sub-encodings.
type mode int

const (
	modeInteger mode = iota
	modeString
)

// decodeLength reads one length-encoded value from r per the RDB
// length-encoding subcodec (top two bits of the first byte select the
// variant) and returns its textual form.
//
// Corrected relative to the format's historical reference implementation:
// a zero-length plain (00) encoding yields an empty string rather than the
// literal "0", and any zero bytes inside a read string payload are kept
// as-is rather than rewritten to ASCII '0'.
func decodeLength(r io.Reader, m mode) (string, error) {
	b, err := readByte(r)
	if err != nil {
		return "", err
	}

	switch b & 0xC0 {
	case 0x00:
		length := uint64(b & 0x3F)
		return finishPlain(r, m, length)

	case 0x40:
		next, err := readByte(r)
		if err != nil {
			return "", err
		}
		// 14-bit length, little-endian order (low byte first): the
		// remaining 6 bits of the first byte are the low byte, the
		// following byte is the high byte.
		length := uint64(b&0x3F) | uint64(next)<<8
		return finishPlain(r, m, length)

	case 0x80:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return "", err
		}
		length := uint64(binary.LittleEndian.Uint32(buf[:]))
		return finishPlain(r, m, length)

	case 0xC0:
		switch b & 0x3F {
		case 0:
			v, err := readByte(r)
			if err != nil {
				return "", err
			}
			return strconv.FormatInt(int64(int8(v)), 10), nil
		case 1:
			var buf [2]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return "", err
			}
			return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(buf[:]))), 10), nil
		case 2:
			var buf [4]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return "", err
			}
			return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(buf[:]))), 10), nil
		case 3:
			return decodeLZFString(r)
		default:
			return "", fmt.Errorf("rdb: unsupported special length encoding 0b11%06b", b&0x3F)
		}
	}

	// unreachable: the switch above is exhaustive over the top two bits.
	return "", fmt.Errorf("rdb: impossible length byte 0x%02x", b)
}

func finishPlain(r io.Reader, m mode, length uint64) (string, error) {
	if m == modeInteger {
		return strconv.FormatUint(length, 10), nil
	}
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// decodeLZFString reads a compressed-length, then an uncompressed-length,
// then that many compressed bytes, and decompresses them with LZF. Unlike
// a passthrough that merely returns the still-compressed bytes, this
// performs a real decompression.
func decodeLZFString(r io.Reader) (string, error) {
	clenStr, err := decodeLength(r, modeInteger)
	if err != nil {
		return "", err
	}
	ulenStr, err := decodeLength(r, modeInteger)
	if err != nil {
		return "", err
	}
	clen, err := strconv.ParseUint(clenStr, 10, 64)
	if err != nil {
		return "", fmt.Errorf("rdb: bad lzf compressed length: %w", err)
	}
	ulen, err := strconv.ParseUint(ulenStr, 10, 64)
	if err != nil {
		return "", fmt.Errorf("rdb: bad lzf uncompressed length: %w", err)
	}

	compressed := make([]byte, clen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return "", err
	}

	uncompressed := make([]byte, ulen)
	n, err := golzf.Decompress(compressed, uncompressed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLzfDecompressFailure, err)
	}
	return string(uncompressed[:n]), nil
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
